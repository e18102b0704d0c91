package coiled

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/oklog/ulid/v2"
)

// Kind tells atoms and selectors apart when walking a graph of Nodes.
type Kind uint8

const (
	KindAtom Kind = iota + 1
	KindSelector
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// Node is the untyped face of a cell, used wherever cells of different value
// types have to live in the same container.
type Node interface {
	// Key is the caller-chosen name. It is only used to identify the cell
	// while debugging, two cells may share a key.
	Key() string
	ID() ulid.ULID
	Kind() Kind
	// Dependencies lists the upstream cells in the order they were first read.
	Dependencies() []Node

	isNode()
}

// Cell is a readable, observable value.
type Cell[T any] interface {
	Node
	Snapshot() T
	Subscribe(l *Listener[T]) *Disconnector
}

// Listener wraps a callback. Subscriptions are keyed by the Listener pointer,
// never by the callback it carries.
type Listener[T any] struct {
	callback func(T) error
}

func NewListener[T any](fn func(T) error) *Listener[T] {
	return &Listener[T]{callback: fn}
}

// ListenerFunc builds a listener from a callback that cannot fail.
func ListenerFunc[T any](fn func(T)) *Listener[T] {
	return NewListener(func(v T) error {
		fn(v)
		return nil
	})
}

// Disconnector removes the one registration it was issued for.
// Calling Disconnect more than once is a no-op.
type Disconnector struct {
	disconnect func()
	done       bool
}

func (d *Disconnector) Disconnect() {
	if d == nil || d.done {
		return
	}
	d.done = true
	if d.disconnect != nil {
		d.disconnect()
	}
}

// Subscribe registers fn on cell and returns its disconnector.
func Subscribe[T any](cell Cell[T], fn func(T) error) *Disconnector {
	return cell.Subscribe(NewListener(fn))
}

type observable[T any] struct {
	key       string
	id        ulid.ULID
	value     T
	listeners mapset.Set[*Listener[T]]
}

func newObservable[T any](key string, value T) observable[T] {
	return observable[T]{
		key:       key,
		id:        ulid.Make(),
		value:     value,
		listeners: mapset.NewThreadUnsafeSet[*Listener[T]](),
	}
}

func (o *observable[T]) Key() string {
	return o.key
}

func (o *observable[T]) ID() ulid.ULID {
	return o.id
}

func (o *observable[T]) Snapshot() T {
	return o.value
}

// Subscribe adds l to the listener set. Adding a listener that is already
// registered does nothing, so one Disconnect fully removes it.
func (o *observable[T]) Subscribe(l *Listener[T]) *Disconnector {
	if l == nil {
		return &Disconnector{}
	}
	o.listeners.Add(l)
	return &Disconnector{
		disconnect: func() {
			o.listeners.Remove(l)
		},
	}
}

// emit walks a copy of the listener set taken when the call starts.
// Listeners removed during the walk are skipped if they have not been called
// yet; listeners added during the walk are first called on the next emit.
// The first failing listener ends the walk.
func (o *observable[T]) emit() error {
	if o.listeners.Cardinality() == 0 {
		return nil
	}
	for _, l := range o.listeners.ToSlice() {
		if l.callback == nil || !o.listeners.Contains(l) {
			continue
		}
		if err := l.callback(o.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

func (o *observable[T]) update(value T) error {
	o.value = value
	return o.emit()
}
