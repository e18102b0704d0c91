// Package bind connects cells to a host that renders them, such as a
// terminal screen or a websocket client.
//
// A Scope stands for one component lifetime. The first time a cell is used
// in a scope, the scope subscribes to it; every notification only tells the
// host to render again, and every render reads fresh snapshots.
package bind

import "github.com/delaneyj/coiled"

// Host is told when something a scope read has changed.
type Host interface {
	Invalidate()
}

// HostFunc adapts a plain function to Host.
type HostFunc func()

func (f HostFunc) Invalidate() {
	f()
}

// Setter forwards to Atom.Update.
type Setter[T any] func(T) error

// Scope tracks the cells one component has read. It is not safe for
// concurrent use.
type Scope struct {
	host    Host
	subs    map[coiled.Node]*coiled.Disconnector
	order   []coiled.Node
	setters map[coiled.Node]any
	closed  bool
}

func NewScope(host Host) *Scope {
	return &Scope{
		host:    host,
		subs:    map[coiled.Node]*coiled.Disconnector{},
		setters: map[coiled.Node]any{},
	}
}

// Subscribed reports how many cells the scope currently listens to.
func (s *Scope) Subscribed() int {
	return len(s.subs)
}

func (s *Scope) Closed() bool {
	return s.closed
}

// Teardown disconnects every subscription the scope made, once.
// Later calls do nothing.
func (s *Scope) Teardown() {
	if s.closed {
		return
	}
	s.closed = true
	for _, n := range s.order {
		s.subs[n].Disconnect()
	}
	s.subs = map[coiled.Node]*coiled.Disconnector{}
	s.order = nil
	s.setters = map[coiled.Node]any{}
}

func (s *Scope) invalidate() {
	if s.host != nil && !s.closed {
		s.host.Invalidate()
	}
}

// UseValue returns the current snapshot of cell and, on first use within a
// live scope, subscribes the scope to it.
func UseValue[T any](s *Scope, cell coiled.Cell[T]) T {
	if s == nil || s.closed {
		return cell.Snapshot()
	}
	if _, ok := s.subs[cell]; !ok {
		s.subs[cell] = cell.Subscribe(coiled.ListenerFunc(func(T) {
			s.invalidate()
		}))
		s.order = append(s.order, cell)
	}
	return cell.Snapshot()
}

// UseState is UseValue plus a setter for the atom. Within a live scope the
// setter handed out is the same value on every call for the same atom. A nil
// or torn-down scope caches nothing, so each call returns a fresh setter that
// still writes the atom.
func UseState[T any](s *Scope, atom *coiled.Atom[T]) (T, Setter[T]) {
	value := UseValue[T](s, atom)
	if s == nil || s.closed {
		return value, atom.Update
	}
	if set, ok := s.setters[atom].(Setter[T]); ok {
		return value, set
	}
	set := Setter[T](atom.Update)
	s.setters[atom] = set
	return value, set
}
