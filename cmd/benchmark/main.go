package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/coiled"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	profile = flag.String("cpuprofile", "", "write a CPU profile to this file")

	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	if err := benchmarkPropagate(false); err != nil {
		log.Fatal(err)
	}
	if err := benchmarkPropagate(true); err != nil {
		log.Fatal(err)
	}
	if err := benchmarkFanOut(true); err != nil {
		log.Fatal(err)
	}
}

func addOne(prev coiled.Cell[int]) coiled.Generator[int] {
	return func(ctx *coiled.Context) (int, error) {
		return coiled.Get(ctx, prev) + 1, nil
	}
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, calc *tachymeter.Metrics) {
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// benchmarkPropagate writes to one atom feeding w chains of h selectors,
// each chain ending in a listener.
func benchmarkPropagate(shouldRender bool) error {
	tbl := newTable("Propagation")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := coiled.NewAtom("src", 1)
			for i := 0; i < w; i++ {
				var last coiled.Cell[int] = src
				for j := 0; j < h; j++ {
					s, err := coiled.NewSelector(fmt.Sprintf("s%d.%d", i, j), addOne(last))
					if err != nil {
						return err
					}
					last = s
				}
				coiled.Subscribe(last, func(int) error {
					return nil
				})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				if err := src.Update(src.Snapshot() + 1); err != nil {
					return err
				}
				tach.AddTime(time.Since(start))
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach.Calc())
		}
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}

// benchmarkFanOut writes to one atom with n plain listeners.
func benchmarkFanOut(shouldRender bool) error {
	tbl := newTable("Fan-out")

	for _, n := range []int{1, 10, 100, 1_000, 10_000} {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		src := coiled.NewAtom("src", 1)
		sum := 0
		for i := 0; i < n; i++ {
			coiled.Subscribe[int](src, func(v int) error {
				sum += v
				return nil
			})
		}

		for i := 0; i < iters; i++ {
			start := time.Now()
			if err := src.Update(i); err != nil {
				return err
			}
			tach.AddTime(time.Since(start))
		}

		appendCalc(tbl, fmt.Sprintf("fan-out: %d listeners", n), tach.Calc())
	}

	if shouldRender {
		tbl.Render()
	}
	return nil
}
