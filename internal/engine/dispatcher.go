package engine

import (
	"context"
	"sort"
)

// Listener is one unit of business logic bound to one or more event
// types. Priorities returns the event types the listener handles and
// the priority for each; higher priorities run earlier. OnEvent may
// resolve and mutate entities, stage writes, populate shared context
// slots, or abort the transaction by returning an error.
type Listener interface {
	Name() string
	Priorities() map[EventType]int
	OnEvent(ctx context.Context, ev *EventContext) error
}

type registration struct {
	priority int
	listener Listener
}

// Manager holds, per event type, the priority-ordered listener chain
// and drives sequential dispatch. Construct it during process
// initialization, register every listener, then treat it as immutable.
type Manager struct {
	listeners map[EventType][]registration
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{listeners: make(map[EventType][]registration)}
}

// Register appends the listener to every event type it declares and
// re-sorts each chain descending by priority. The sort is stable, so
// listeners with equal priority run in registration order.
func (m *Manager) Register(l Listener) {
	for et, priority := range l.Priorities() {
		chain := append(m.listeners[et], registration{priority: priority, listener: l})
		sort.SliceStable(chain, func(i, j int) bool {
			return chain[i].priority > chain[j].priority
		})
		m.listeners[et] = chain
	}
}

// Chain returns the listeners registered for an event type in dispatch
// order.
func (m *Manager) Chain(et EventType) []Listener {
	regs := m.listeners[et]
	out := make([]Listener, len(regs))
	for i, r := range regs {
		out[i] = r.listener
	}
	return out
}

// derivedEvents returns the finer-grained events implied by the
// top-level one, in the order they are dispatched after it.
func derivedEvents(ev *EventContext) []EventType {
	switch ev.EventType {
	case WorkOrderAccepted:
		return []EventType{BatchCreated}
	case AssetsTransferred:
		return []EventType{LogisticsCreated}
	case AssetCreated:
		switch ev.Fields()["asset_type"] {
		case "work_order":
			return []EventType{WorkOrderCreated}
		case "packaging":
			return []EventType{PackagingCreated}
		case "sub_assignment":
			return []EventType{SubAssignmentCreated}
		}
	}
	return nil
}

// Dispatch runs the full listener chain for the context's event type,
// then the chains of any derived events, all against the same context.
// The first listener error stops the dispatch; staged writes are
// discarded by the state store, never rolled back here.
func (m *Manager) Dispatch(ctx context.Context, ev *EventContext) error {
	events := append([]EventType{ev.EventType}, derivedEvents(ev)...)
	for _, et := range events {
		ev.EventType = et
		for _, reg := range m.listeners[et] {
			if err := reg.listener.OnEvent(ctx, ev); err != nil {
				return err
			}
		}
	}
	return nil
}
