package telemetry

import (
	"context"

	"github.com/nullwave/audiograph/pkg/observer"
)

// TelemetryObserver implements observer.Observer and records metrics for
// edit-command outcomes (§4.3, §6.2). Tick metrics are recorded directly by
// the generator loop via Provider.RecordTick, since ticks happen far too
// often per second to justify the event/observer indirection.
type TelemetryObserver struct {
	provider *Provider
}

// NewTelemetryObserver creates a new telemetry observer.
func NewTelemetryObserver(provider *Provider) *TelemetryObserver {
	return &TelemetryObserver{provider: provider}
}

// OnEvent records metrics for edit-command outcomes.
func (o *TelemetryObserver) OnEvent(ctx context.Context, event observer.Event) {
	switch event.Type {
	case observer.EventEditApplied:
		o.provider.RecordEditCommand(ctx, event.GraphID, event.Command, true)
	case observer.EventEditRejected:
		o.provider.RecordEditCommand(ctx, event.GraphID, event.Command, false)
	}
}
