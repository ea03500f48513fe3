package core

// EventContext is the payload handed to event listeners.
type EventContext struct {
	// Kind of the state the event refers to, if any.
	State string
	// Fraction in [0,1] for EVENT_CODE_STATE_PROGRESS.
	Progress float64
	// Asset address for EVENT_CODE_ASSET_CHANGED.
	Address string
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// A state's acquisition pipeline advanced one step.
	/* Context usage:
	 * state    = data.State
	 * progress = data.Progress
	 */
	EVENT_CODE_STATE_PROGRESS SystemEventCode = 0x10

	// A state finished loading its assets and ran its enter hook.
	EVENT_CODE_STATE_ENTERED SystemEventCode = 0x11

	// A state released its assets and ran its exit hook.
	EVENT_CODE_STATE_EXITED SystemEventCode = 0x12

	// An asset file was created, modified or removed on disk.
	/* Context usage:
	 * address = data.Address
	 */
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x20

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventSystem is a registry of listeners per event code. It is not safe for
// concurrent use; events are fired from the control goroutine only.
type EventSystem struct {
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

func (es *EventSystem) Shutdown() error {
	// Objects pointed to by listeners are destroyed on their own.
	es.registered = make(map[SystemEventCode][]*registeredEvent)
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. A listener
 * registered twice for the same code is rejected and this returns false.
 * Listeners are compared by identity and must be comparable (pointers).
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code >= MAX_MESSAGE_CODES || onEvent == nil {
		return false
	}
	for _, e := range es.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns false.
 */
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * State lifecycle codes are broadcasts: every listener sees them and the
 * result only reports whether any of them handled it.
 */
func (es *EventSystem) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	// copy so handlers may unregister themselves while firing
	events := append([]*registeredEvent(nil), es.registered[code]...)
	broadcast := isBroadcast(code)
	handled := false
	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			handled = true
			if !broadcast {
				// Message has been handled, do not send to other listeners.
				return true
			}
		}
	}
	return handled
}

func isBroadcast(code SystemEventCode) bool {
	switch code {
	case EVENT_CODE_STATE_PROGRESS, EVENT_CODE_STATE_ENTERED, EVENT_CODE_STATE_EXITED:
		return true
	}
	return false
}

// ListenerCount returns how many listeners are attached to code.
func (es *EventSystem) ListenerCount(code SystemEventCode) int {
	return len(es.registered[code])
}
