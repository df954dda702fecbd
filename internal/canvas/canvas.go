// Package canvas holds the live, editable object list of the active page.
//
// A Canvas is not safe for concurrent use. It is owned by a single editing
// session, which serializes access to it.
package canvas

import (
	"errors"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// ErrDisposed is returned when mutating a canvas after Dispose.
var ErrDisposed = errors.New("canvas: disposed")

// EventType identifies a canvas event.
type EventType int

const (
	ObjectAdded EventType = iota + 1
	ObjectModified
	ObjectRemoved
	MouseDown
)

func (e EventType) String() string {
	switch e {
	case ObjectAdded:
		return "object:added"
	case ObjectModified:
		return "object:modified"
	case ObjectRemoved:
		return "object:removed"
	case MouseDown:
		return "mouse:down"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after the change is applied.
type Event struct {
	Type   EventType
	Object *annotation.Object
}

// Listener receives canvas events synchronously.
type Listener func(Event)

// Canvas is an ordered list of objects, bottom to top, with change events.
type Canvas struct {
	objects   []*annotation.Object
	listeners []Listener
	size      geometry.Size
	disposed  bool
}

// New creates an empty canvas with the given overlay size.
func New(size geometry.Size) *Canvas {
	return &Canvas{size: size}
}

// On registers l for every subsequent event.
func (c *Canvas) On(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Size returns the overlay size in unscaled pixels.
func (c *Canvas) Size() geometry.Size {
	return c.size
}

// SetSize resizes the overlay. Objects are not moved.
func (c *Canvas) SetSize(size geometry.Size) {
	c.size = size
}

// PointerDown signals the start of a user gesture.
func (c *Canvas) PointerDown() {
	c.emit(Event{Type: MouseDown})
}

// Add appends objects on top of the stack, emitting one event per object.
func (c *Canvas) Add(objs ...*annotation.Object) error {
	if c.disposed {
		return ErrDisposed
	}
	for _, o := range objs {
		c.objects = append(c.objects, o)
		c.emit(Event{Type: ObjectAdded, Object: o})
	}
	return nil
}

// Get returns the object with the given ID.
func (c *Canvas) Get(id string) (*annotation.Object, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return c.objects[i], true
}

// Modify applies fn to the object with the given ID and emits a modification
// event when fn succeeds. It reports false when no such object exists.
func (c *Canvas) Modify(id string, fn func(*annotation.Object) error) (bool, error) {
	if c.disposed {
		return false, ErrDisposed
	}
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	o := c.objects[i]
	if err := fn(o); err != nil {
		return true, err
	}
	c.emit(Event{Type: ObjectModified, Object: o})
	return true, nil
}

// Remove deletes the object with the given ID and reports whether it existed.
func (c *Canvas) Remove(id string) bool {
	if c.disposed {
		return false
	}
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	o := c.objects[i]
	c.objects = append(c.objects[:i], c.objects[i+1:]...)
	c.emit(Event{Type: ObjectRemoved, Object: o})
	return true
}

// Objects returns every object on the canvas, bottom to top. The slice is a
// copy; the objects are shared.
func (c *Canvas) Objects() []*annotation.Object {
	out := make([]*annotation.Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// UserObjects returns the objects that are not hitboxes.
func (c *Canvas) UserObjects() []*annotation.Object {
	return annotation.WithoutHitboxes(c.objects)
}

// Hitboxes returns the hitboxes currently on the canvas, in order.
func (c *Canvas) Hitboxes() []*annotation.Object {
	var out []*annotation.Object
	for _, o := range c.objects {
		if o.IsHitbox() {
			out = append(out, o)
		}
	}
	return out
}

// Load replaces the whole object list without emitting events. Hitboxes are
// placed below user objects.
func (c *Canvas) Load(user, hitboxes []*annotation.Object) {
	if c.disposed {
		return
	}
	c.objects = make([]*annotation.Object, 0, len(user)+len(hitboxes))
	c.objects = append(c.objects, hitboxes...)
	c.objects = append(c.objects, user...)
}

// Clear removes every object without emitting events.
func (c *Canvas) Clear() {
	c.objects = nil
}

// Len returns the number of objects including hitboxes.
func (c *Canvas) Len() int {
	return len(c.objects)
}

// Dispose releases the canvas. Later mutations fail with ErrDisposed.
func (c *Canvas) Dispose() {
	c.disposed = true
	c.objects = nil
	c.listeners = nil
}

// Disposed reports whether Dispose has been called.
func (c *Canvas) Disposed() bool {
	return c.disposed
}

func (c *Canvas) indexOf(id string) int {
	for i, o := range c.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (c *Canvas) emit(e Event) {
	for _, l := range c.listeners {
		l(e)
	}
}
