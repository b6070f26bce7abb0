package tracker

import (
	"sync"
	"time"
)

// EventType indicates which tracker action produced an event.
type EventType string

const (
	EventCombatantAdded   EventType = "COMBATANT_ADDED"
	EventCombatantUpdated EventType = "COMBATANT_UPDATED"
	EventDamaged          EventType = "DAMAGED"
	EventHealed           EventType = "HEALED"
	EventHPSet            EventType = "HP_SET"
	EventTieSet           EventType = "TIE_SET"
	EventTiesRolled       EventType = "TIES_ROLLED"
	EventTiesCleared      EventType = "TIES_CLEARED"
	EventMovedToGraveyard EventType = "MOVED_TO_GRAVEYARD"
	EventRestored         EventType = "RESTORED"
	EventDeletedForever   EventType = "DELETED_FOREVER"
	EventRosterCleared    EventType = "ROSTER_CLEARED"
	EventGraveyardCleared EventType = "GRAVEYARD_CLEARED"
	EventEncounterStarted EventType = "ENCOUNTER_STARTED"
	EventTurnChanged      EventType = "TURN_CHANGED"
	EventSettingsChanged  EventType = "SETTINGS_CHANGED"
	EventStateReplaced    EventType = "STATE_REPLACED"
	EventUndone           EventType = "UNDONE"
)

// Event describes a completed state change.
type Event struct {
	Type        EventType
	TargetIDs   []string
	Amount      int
	Flag        bool // auto-graveyard for EventMovedToGraveyard
	Timestamp   time.Time
	Description string
}

// Listener reacts to incoming events.
type Listener func(Event)

type typedListener struct {
	handle    int
	eventType EventType
	callback  Listener
}

// EventBus is a synchronous publish/subscribe hub with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]typedListener
	nextHandle     int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]typedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], typedListener{
		handle:    handle,
		eventType: eventType,
		callback:  listener,
	})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.callback(event)
	}
}
