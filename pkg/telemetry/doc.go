// Package telemetry provides OpenTelemetry integration for the generator
// loop and the edit-arbitration dispatcher. It exports, via a Prometheus
// reader:
//   - block evaluation count and duration (§4.4)
//   - ring underrun count (§4.4), recorded only through RecordUnderrun,
//     which nothing in this module calls
//   - edit command count, split by applied/rejected (§4.3, §6.2)
//   - live node and edge counts (§3)
package telemetry
