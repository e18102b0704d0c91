package demo

import (
	"errors"
	"fmt"

	"github.com/delaneyj/coiled"
	"github.com/delaneyj/coiled/bind"
	"github.com/delaneyj/coiled/metrics"
)

var ErrInvalidStep = errors.New("step must be positive")

// Model is a small counter:
//
//	count   step
//	  |  \    |
//	doubled  parity
//	    \    /
//	   summary
//
// summary only reads doubled while the count is even, but keeps its
// subscription once it has read it.
type Model struct {
	Count   *coiled.Atom[int]
	Step    *coiled.Atom[int]
	Doubled *coiled.Selector[int]
	Parity  *coiled.Selector[string]
	Summary *coiled.Selector[string]
}

// NewModel builds the model. With a non-nil collector every cell is
// instrumented and every generator is timed.
func NewModel(c *metrics.Collector) (*Model, error) {
	m := &Model{
		Count: coiled.NewAtom("count", 0),
		Step:  coiled.NewAtom("step", 1),
	}

	var err error
	m.Doubled, err = coiled.NewSelector("doubled", timed(c, "doubled", func(ctx *coiled.Context) (int, error) {
		return coiled.Get[int](ctx, m.Count) * 2, nil
	}))
	if err != nil {
		return nil, err
	}

	m.Parity, err = coiled.NewSelector("parity", timed(c, "parity", func(ctx *coiled.Context) (string, error) {
		if coiled.Get[int](ctx, m.Count)%2 == 0 {
			return "even", nil
		}
		return "odd", nil
	}))
	if err != nil {
		return nil, err
	}

	m.Summary, err = coiled.NewSelector("summary", timed(c, "summary", func(ctx *coiled.Context) (string, error) {
		parity := coiled.Get[string](ctx, m.Parity)
		if parity == "even" {
			return fmt.Sprintf("even, doubled to %d", coiled.Get[int](ctx, m.Doubled)), nil
		}
		return fmt.Sprintf("odd, step %d", coiled.Get[int](ctx, m.Step)), nil
	}))
	if err != nil {
		return nil, err
	}

	if c != nil {
		metrics.Instrument[int](c, m.Count)
		metrics.Instrument[int](c, m.Step)
		metrics.Instrument[int](c, m.Doubled)
		metrics.Instrument[string](c, m.Parity)
		metrics.Instrument[string](c, m.Summary)
	}
	return m, nil
}

func timed[T any](c *metrics.Collector, key string, gen coiled.Generator[T]) coiled.Generator[T] {
	if c == nil {
		return gen
	}
	return metrics.Timed(c, key, gen)
}

// Nodes lists the cells from the sources down.
func (m *Model) Nodes() []coiled.Node {
	return []coiled.Node{m.Count, m.Step, m.Doubled, m.Parity, m.Summary}
}

func (m *Model) Increment() error {
	return m.Count.Update(m.Count.Snapshot() + m.Step.Snapshot())
}

func (m *Model) Decrement() error {
	return m.Count.Update(m.Count.Snapshot() - m.Step.Snapshot())
}

func (m *Model) SetStep(step int) error {
	if step <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	return m.Step.Update(step)
}

func (m *Model) Reset() error {
	return m.Count.Update(0)
}

type View struct {
	Count   int    `json:"count"`
	Step    int    `json:"step"`
	Doubled int    `json:"doubled"`
	Parity  string `json:"parity"`
	Summary string `json:"summary"`
}

// Render reads the model through scope, subscribing it to every cell shown.
// A nil scope reads without subscribing.
func Render(scope *bind.Scope, m *Model) View {
	count, _ := bind.UseState(scope, m.Count)
	step, _ := bind.UseState(scope, m.Step)
	return View{
		Count:   count,
		Step:    step,
		Doubled: bind.UseValue[int](scope, m.Doubled),
		Parity:  bind.UseValue[string](scope, m.Parity),
		Summary: bind.UseValue[string](scope, m.Summary),
	}
}
