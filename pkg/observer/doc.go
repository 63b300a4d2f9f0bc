// Package observer implements the observer pattern for engine monitoring.
//
// Observers can track tick timing, edit-command outcomes, and node
// lifecycle events without coupling to the engine's internals:
//
//	mgr := observer.NewManager()
//	mgr.Register(observer.NewConsoleObserver())
//	mgr.Notify(ctx, observer.Event{Type: observer.EventEditApplied, ...})
//
// Manager.Notify fans an event out to every registered observer on its own
// goroutine and recovers a panicking observer so one bad observer cannot
// affect another or the engine itself.
package observer
