package coiled

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrNilGenerator = errors.New("coiled: nil generator")

// Generator computes a selector value. Every cell read through Get is
// recorded as a dependency of the selector.
type Generator[T any] func(ctx *Context) (T, error)

// EvaluationError is returned when a selector generator fails, either while
// the selector is built or while it recomputes after an upstream write.
type EvaluationError struct {
	Key string
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("coiled: evaluating selector %q: %v", e.Key, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

type dependent interface {
	track(dep Node) bool
	keep(d *Disconnector)
	recompute() error
}

// Context is the dependency-read capability handed to a generator.
type Context struct {
	owner dependent
}

// Get returns the current snapshot of dep. The first time a selector reads
// dep it subscribes to it, and that subscription is never removed: a
// selector keeps recomputing on every cell it has ever read.
func Get[V any](ctx *Context, dep Cell[V]) V {
	if ctx != nil && ctx.owner != nil && ctx.owner.track(dep) {
		owner := ctx.owner
		owner.keep(dep.Subscribe(NewListener(func(V) error {
			return owner.recompute()
		})))
	}
	return dep.Snapshot()
}

// Selector is a read-only cell derived from other cells.
type Selector[T any] struct {
	observable[T]

	generate       Generator[T]
	ctx            *Context
	registeredDeps mapset.Set[Node]
	deps           []Node
	disconnectors  []*Disconnector
}

var _ Cell[int] = (*Selector[int])(nil)

// NewSelector runs generate once, synchronously, so the returned selector
// always holds a value. If that first run fails no selector is returned and
// the subscriptions it made are dropped.
func NewSelector[T any](key string, generate Generator[T]) (*Selector[T], error) {
	if generate == nil {
		return nil, ErrNilGenerator
	}

	var zero T
	s := &Selector[T]{
		observable:     newObservable(key, zero),
		generate:       generate,
		registeredDeps: mapset.NewThreadUnsafeSet[Node](),
	}
	s.ctx = &Context{owner: s}

	built := false
	defer func() {
		if !built {
			s.release()
		}
	}()

	value, err := s.generate(s.ctx)
	if err != nil {
		return nil, &EvaluationError{Key: key, Err: err}
	}
	s.value = value
	built = true
	return s, nil
}

// MustSelector is like NewSelector but panics if the first evaluation fails.
// It suits package-level selectors whose generators cannot fail.
func MustSelector[T any](key string, generate Generator[T]) *Selector[T] {
	s, err := NewSelector(key, generate)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Selector[T]) Kind() Kind {
	return KindSelector
}

func (s *Selector[T]) Dependencies() []Node {
	deps := make([]Node, len(s.deps))
	copy(deps, s.deps)
	return deps
}

func (s *Selector[T]) String() string {
	return fmt.Sprintf("selector(%s)", s.key)
}

func (s *Selector[T]) isNode() {}

func (s *Selector[T]) track(dep Node) bool {
	if !s.registeredDeps.Add(dep) {
		return false
	}
	s.deps = append(s.deps, dep)
	return true
}

func (s *Selector[T]) keep(d *Disconnector) {
	s.disconnectors = append(s.disconnectors, d)
}

// recompute keeps the previous value when the generator fails.
func (s *Selector[T]) recompute() error {
	value, err := s.generate(s.ctx)
	if err != nil {
		return &EvaluationError{Key: s.key, Err: err}
	}
	return s.update(value)
}

func (s *Selector[T]) release() {
	for _, d := range s.disconnectors {
		d.Disconnect()
	}
	s.disconnectors = nil
	s.registeredDeps.Clear()
	s.deps = nil
}
