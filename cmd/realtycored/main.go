// Command realtycored serves the CRM core over HTTP. Storage and blob
// backends are selected from the environment; see internal/core for the
// recognized variables.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realtycore/internal/core"
	"realtycore/internal/httpapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(ctx, engine)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	blobs, err := core.OpenBlobStore(ctx)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		log.Fatalf("register metrics: %v", err)
	}

	notifier := core.NewChannelNotifier(256)
	go func() {
		for ev := range notifier.Events() {
			log.Printf("event: %s %s %s ok=%t %s", ev.Entity, ev.Action, ev.RecordID, ev.OK, ev.Message)
		}
	}()

	opts := []core.Option{
		core.WithMetricsRecorder(metrics),
		core.WithNotifier(notifier),
		core.WithBlobStore(blobs),
	}
	if min, max, ok := latencyFromEnv(); ok {
		opts = append(opts, core.WithLatency(min, max))
	}
	svc := core.NewService(store, opts...)

	var state *httpapi.StateStore
	if project, key := os.Getenv("REALTYCORE_STATE_PROJECT_ID"), os.Getenv("REALTYCORE_STATE_API_KEY"); project != "" && key != "" {
		state = httpapi.NewStateStore(project, key)
	}

	api := httpapi.New(svc, state)
	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	root.Mount("/", api.Router())

	addr := os.Getenv("REALTYCORE_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
}

// latencyFromEnv reads REALTYCORE_SIMULATED_LATENCY as a "min-max" duration
// window, e.g. "200ms-400ms". A single duration sets both bounds.
func latencyFromEnv() (time.Duration, time.Duration, bool) {
	raw := os.Getenv("REALTYCORE_SIMULATED_LATENCY")
	if raw == "" {
		return 0, 0, false
	}
	lo, hi, split := strings.Cut(raw, "-")
	min, err := time.ParseDuration(lo)
	if err != nil {
		log.Fatalf("parse REALTYCORE_SIMULATED_LATENCY: %v", err)
	}
	max := min
	if split {
		if max, err = time.ParseDuration(hi); err != nil {
			log.Fatalf("parse REALTYCORE_SIMULATED_LATENCY: %v", err)
		}
	}
	return min, max, true
}
