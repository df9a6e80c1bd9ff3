package engine

// ListenerID identifies a registered listener so it can be removed later.
// Zero is never issued.
type ListenerID uint64

// EventWithArg is a multi-cast event carrying one argument. The zero value is
// ready to use.
type EventWithArg[T any] struct {
	listeners []listener[T]
	nextID    ListenerID
}

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// AddListener registers callback and returns its id. nil callbacks are ignored
// and get id 0.
func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: e.nextID, fn: callback})
	return e.nextID
}

// RemoveListener drops the listener with the given id. Unknown ids are ignored.
func (e *EventWithArg[T]) RemoveListener(id ListenerID) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls every listener in registration order. Listeners added or
// removed during Invoke take effect on the next call.
func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}
