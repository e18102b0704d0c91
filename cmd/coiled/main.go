package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delaneyj/coiled/graph"
	"github.com/delaneyj/coiled/internal/demo"
	"github.com/delaneyj/coiled/internal/server"
	"github.com/delaneyj/coiled/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const (
	outKey       = "out"
	addrKey      = "addr"
	namespaceKey = "namespace"
)

func main() {
	cmd := &cli.Command{
		Name:  "coiled",
		Usage: "Play with atoms and selectors",
		Commands: []*cli.Command{
			{
				Name:  "graph",
				Usage: "Print the demo model's dependency graph as Graphviz DOT",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  outKey,
						Usage: "Write to this file instead of stdout",
					},
				},
				Action: printGraph,
			},
			{
				Name:   "counter",
				Usage:  "Run the demo counter in the terminal",
				Action: runCounter,
			},
			{
				Name:  "serve",
				Usage: "Serve the demo counter over websockets",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  addrKey,
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:  namespaceKey,
						Usage: "Prometheus metrics namespace",
						Value: "coiled",
					},
				},
				Action: serve,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func printGraph(ctx context.Context, cmd *cli.Command) error {
	model, err := demo.NewModel(nil)
	if err != nil {
		return err
	}
	g := graph.Collect(model.Nodes()...)

	out := cmd.String(outKey)
	if out == "" {
		graph.WriteDot(os.Stdout, g)
		return nil
	}
	if err := os.WriteFile(out, []byte(graph.Dot(g)), 0644); err != nil {
		return err
	}
	log.Printf("Wrote %d cells to %s", len(g.Vertices), out)
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	model, err := demo.NewModel(metrics.New(
		metrics.WithRegistry(reg),
		metrics.WithNamespace(cmd.String(namespaceKey)),
	))
	if err != nil {
		return err
	}

	s := server.New(model, reg)
	go s.Run(ctx)

	srv := &http.Server{
		Addr:              cmd.String(addrKey),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving counter on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("Server stopped")
	return nil
}
