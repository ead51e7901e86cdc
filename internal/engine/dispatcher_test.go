package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	name       string
	priorities map[EventType]int
	log        *[]string
	fail       bool
}

func (l *recordingListener) Name() string { return l.name }

func (l *recordingListener) Priorities() map[EventType]int { return l.priorities }

func (l *recordingListener) OnEvent(context.Context, *EventContext) error {
	*l.log = append(*l.log, l.name)
	if l.fail {
		return Validationf("%s failed", l.name)
	}
	return nil
}

func TestDispatchOrdersByPriority(t *testing.T) {
	var log []string
	et := EventType("test/event")

	m := NewManager()
	m.Register(&recordingListener{name: "low", priorities: map[EventType]int{et: -100}, log: &log})
	m.Register(&recordingListener{name: "high", priorities: map[EventType]int{et: 1000}, log: &log})
	m.Register(&recordingListener{name: "mid", priorities: map[EventType]int{et: 0}, log: &log})

	ev := NewEventContext(et, Payload{}, "signer", "sig", nil)
	require.NoError(t, m.Dispatch(context.Background(), ev))
	require.Equal(t, []string{"high", "mid", "low"}, log)
}

func TestDispatchTieBreaksByRegistrationOrder(t *testing.T) {
	et := EventType("test/event")

	// Same registration order must yield the same chain on every run.
	for run := 0; run < 5; run++ {
		var log []string
		m := NewManager()
		m.Register(&recordingListener{name: "first", priorities: map[EventType]int{et: 0}, log: &log})
		m.Register(&recordingListener{name: "second", priorities: map[EventType]int{et: 0}, log: &log})
		m.Register(&recordingListener{name: "third", priorities: map[EventType]int{et: 0}, log: &log})

		ev := NewEventContext(et, Payload{}, "signer", "sig", nil)
		require.NoError(t, m.Dispatch(context.Background(), ev))
		require.Equal(t, []string{"first", "second", "third"}, log)
	}
}

func TestDispatchStopsOnFirstError(t *testing.T) {
	var log []string
	et := EventType("test/event")

	m := NewManager()
	m.Register(&recordingListener{name: "first", priorities: map[EventType]int{et: 100}, log: &log})
	m.Register(&recordingListener{name: "second", priorities: map[EventType]int{et: 0}, log: &log, fail: true})
	m.Register(&recordingListener{name: "third", priorities: map[EventType]int{et: -100}, log: &log})

	ev := NewEventContext(et, Payload{}, "signer", "sig", nil)
	err := m.Dispatch(context.Background(), ev)
	require.Error(t, err)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, []string{"first", "second"}, log, "listeners after the failure must not run")
}

func TestDispatchRunsDerivedChains(t *testing.T) {
	var log []string

	m := NewManager()
	m.Register(&recordingListener{name: "create", priorities: map[EventType]int{AssetCreated: 0}, log: &log})
	m.Register(&recordingListener{name: "work-order", priorities: map[EventType]int{WorkOrderCreated: 0}, log: &log})
	m.Register(&recordingListener{name: "packaging", priorities: map[EventType]int{PackagingCreated: 0}, log: &log})

	payload := Payload{Fields: map[string]any{"asset_type": "work_order"}}
	ev := NewEventContext(AssetCreated, payload, "signer", "sig", nil)
	require.NoError(t, m.Dispatch(context.Background(), ev))

	require.Equal(t, []string{"create", "work-order"}, log)
	require.Equal(t, WorkOrderCreated, ev.EventType, "context tracks the chain being dispatched")
}

func TestChainUnknownEventIsEmpty(t *testing.T) {
	m := NewManager()
	require.Empty(t, m.Chain(EventType("never/registered")))
}
