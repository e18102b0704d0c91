package coiled

import "fmt"

// Atom is a cell whose value is replaced from the outside.
type Atom[T any] struct {
	observable[T]
}

var _ Cell[int] = (*Atom[int])(nil)

// NewAtom returns an atom holding initial. key is only a debugging label;
// atoms sharing a key are unrelated.
func NewAtom[T any](key string, initial T) *Atom[T] {
	return &Atom[T]{
		observable: newObservable(key, initial),
	}
}

// Update stores value and notifies every listener, even when value equals
// the current one. The returned error is the first error raised by the
// cascade of listeners and selectors this write set off.
func (a *Atom[T]) Update(value T) error {
	return a.update(value)
}

func (a *Atom[T]) Kind() Kind {
	return KindAtom
}

func (a *Atom[T]) Dependencies() []Node {
	return nil
}

func (a *Atom[T]) String() string {
	return fmt.Sprintf("atom(%s)", a.key)
}

func (a *Atom[T]) isNode() {}
