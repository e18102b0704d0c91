package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/delaneyj/coiled"
	"gopkg.in/yaml.v3"
)

type benchmarkTestConfig struct {
	Name           string  `yaml:"name"`           // friendly name for the test, should be unique
	Width          int64   `yaml:"width"`          // width of dependency graph to construct
	TotalLayers    int64   `yaml:"totalLayers"`    // depth of dependency graph to construct
	StaticFraction float64 `yaml:"staticFraction"` // fraction of nodes that always read the same sources
	NSources       int64   `yaml:"nSources"`       // number of sources each node reads from the previous row
	Iterations     int64   `yaml:"iterations"`     // number of test iterations
}

func (cfg benchmarkTestConfig) validate() error {
	switch {
	case cfg.Width < 1:
		return fmt.Errorf("config %q: width must be at least 1", cfg.Name)
	case cfg.TotalLayers < 2:
		return fmt.Errorf("config %q: totalLayers must be at least 2", cfg.Name)
	case cfg.NSources < 1 || cfg.NSources > cfg.Width:
		return fmt.Errorf("config %q: nSources must be between 1 and width", cfg.Name)
	case cfg.StaticFraction < 0 || cfg.StaticFraction > 1:
		return fmt.Errorf("config %q: staticFraction must be within [0, 1]", cfg.Name)
	case cfg.Iterations < 1:
		return fmt.Errorf("config %q: iterations must be at least 1", cfg.Name)
	}
	return nil
}

func (cfg benchmarkTestConfig) title() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%dx%d %d sources", cfg.Width, cfg.TotalLayers, cfg.NSources))
	if cfg.StaticFraction < 1 {
		sb.WriteString(" dynamic")
	}
	return sb.String()
}

func loadConfigs(path string) ([]benchmarkTestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var configs []benchmarkTestConfig
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(configs) == 0 {
		return nil, errors.New("no benchmark configs in " + path)
	}
	return configs, nil
}

type benchmarkGraph struct {
	sources []*coiled.Atom[int]
	layers  [][]*coiled.Selector[int]
	reads   [][]int
}

// staleDeps counts subscriptions a dynamic node kept after it stopped
// reading the cell.
func (g *benchmarkGraph) staleDeps() int {
	stale := 0
	for l, row := range g.layers {
		for i, node := range row {
			stale += len(node.Dependencies()) - g.reads[l][i]
		}
	}
	return stale
}

func makeGraph(cfg benchmarkTestConfig, counter *int64) (*benchmarkGraph, error) {
	g := &benchmarkGraph{
		sources: make([]*coiled.Atom[int], cfg.Width),
	}
	prevRow := make([]coiled.Cell[int], cfg.Width)
	for i := range g.sources {
		g.sources[i] = coiled.NewAtom(fmt.Sprintf("source%d", i), i)
		prevRow[i] = g.sources[i]
	}

	random := rand.New(rand.NewSource(0))
	for l := int64(1); l < cfg.TotalLayers; l++ {
		row, reads, err := makeRow(cfg, l, prevRow, counter, random)
		if err != nil {
			return nil, err
		}
		g.layers = append(g.layers, row)
		g.reads = append(g.reads, reads)
		for i, node := range row {
			prevRow[i] = node
		}
	}
	return g, nil
}

// makeRow builds one layer. reads holds, per node, how many distinct cells
// its last evaluation read.
func makeRow(cfg benchmarkTestConfig, layer int64, sources []coiled.Cell[int], counter *int64, random *rand.Rand) (row []*coiled.Selector[int], reads []int, err error) {
	row = make([]*coiled.Selector[int], len(sources))
	reads = make([]int, len(sources))

	for myDex := range sources {
		mySources := make([]coiled.Cell[int], 0, cfg.NSources)
		for sourceDex := 0; sourceDex < int(cfg.NSources); sourceDex++ {
			mySources = append(mySources, sources[(myDex+sourceDex)%len(sources)])
		}

		key := fmt.Sprintf("layer%d.%d", layer, myDex)
		read := &reads[myDex]
		var gen coiled.Generator[int]
		if random.Float64() < cfg.StaticFraction {
			gen = func(ctx *coiled.Context) (int, error) {
				*counter++
				sum := 0
				for _, source := range mySources {
					sum += coiled.Get(ctx, source)
				}
				*read = len(mySources)
				return sum, nil
			}
		} else {
			first := mySources[0]
			tail := mySources[1:]
			gen = func(ctx *coiled.Context) (int, error) {
				*counter++
				sum := coiled.Get(ctx, first)
				*read = 1
				if len(tail) == 0 {
					return sum, nil
				}
				shouldDrop := sum&0x1 > 0
				dropDex := sum % len(tail)
				if dropDex < 0 {
					dropDex = -dropDex
				}
				for i := 0; i < len(tail); i++ {
					if shouldDrop && i == dropDex {
						continue
					}
					sum += coiled.Get(ctx, tail[i])
					*read++
				}
				return sum, nil
			}
		}

		if row[myDex], err = coiled.NewSelector(key, gen); err != nil {
			return nil, nil, err
		}
	}
	return row, reads, nil
}

// runGraph writes the sources round-robin and returns the sum of the last row.
func runGraph(g *benchmarkGraph, iterations int64) (int, error) {
	for i := 0; i < int(iterations); i++ {
		sourceDex := i % len(g.sources)
		if err := g.sources[sourceDex].Update(i + sourceDex); err != nil {
			return 0, err
		}
	}

	sum := 0
	for _, leaf := range g.layers[len(g.layers)-1] {
		sum += leaf.Snapshot()
	}
	return sum, nil
}
