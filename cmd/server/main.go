package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"vectorrts.dev/internal/persistence/indexdb"
	persistlog "vectorrts.dev/internal/persistence/log"
	"vectorrts.dev/internal/sim/tuning"
	"vectorrts.dev/internal/sim/world"
	"vectorrts.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "match_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite match index")
		noSkirmish = flag.Bool("empty", false, "start an empty sandbox world instead of the skirmish layout")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	w := world.New(world.ConfigFromTuning(*worldID, tune))
	if !*noSkirmish {
		w.SetupSkirmish()
	}

	replay, err := persistlog.OpenReplayLogger(*dataDir, persistlog.ReplayHeader{
		WorldID:      *worldID,
		TickRateHz:   w.TickRateHz(),
		MaxStep:      tune.MaxStepSeconds,
		TuningDigest: tune.Digest,
	})
	if err != nil {
		logger.Fatalf("open replay log: %v", err)
	}
	defer replay.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open match index: %v", err)
		}
		defer idx.Close()
		idx.RecordMatchStart(indexdb.MatchRow{
			WorldID:      *worldID,
			TickRateHz:   w.TickRateHz(),
			TuningDigest: tune.Digest,
			ReplayPath:   replay.Path(),
		})
	}

	w.SetTickLogger(fanoutTickLogger{replay: replay, idx: idx, worldID: *worldID})
	w.SetResultSink(func(r world.MatchResult) {
		logger.Printf("game over: world=%s tick=%d winner=%d", r.WorldID, r.Tick, r.Winner)
		if idx != nil {
			idx.RecordResult(r)
		}
	})

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP vectorrts_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE vectorrts_world_tick gauge\n")
		fmt.Fprintf(rw, "vectorrts_world_tick{world=%q} %d\n", *worldID, m.Tick)

		fmt.Fprintf(rw, "# HELP vectorrts_world_entities Entity counts by kind.\n")
		fmt.Fprintf(rw, "# TYPE vectorrts_world_entities gauge\n")
		fmt.Fprintf(rw, "vectorrts_world_entities{world=%q,kind=%q} %d\n", *worldID, "unit", m.Units)
		fmt.Fprintf(rw, "vectorrts_world_entities{world=%q,kind=%q} %d\n", *worldID, "building", m.Buildings)
		fmt.Fprintf(rw, "vectorrts_world_entities{world=%q,kind=%q} %d\n", *worldID, "resource", m.Resources)

		fmt.Fprintf(rw, "# HELP vectorrts_world_players Connected player count.\n")
		fmt.Fprintf(rw, "# TYPE vectorrts_world_players gauge\n")
		fmt.Fprintf(rw, "vectorrts_world_players{world=%q} %d\n", *worldID, m.Players)

		fmt.Fprintf(rw, "# HELP vectorrts_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE vectorrts_world_step_ms gauge\n")
		fmt.Fprintf(rw, "vectorrts_world_step_ms{world=%q} %.3f\n", *worldID, m.StepMS)

		fmt.Fprintf(rw, "# HELP vectorrts_world_anomalies Defensive corrections made inside ticks.\n")
		fmt.Fprintf(rw, "# TYPE vectorrts_world_anomalies counter\n")
		fmt.Fprintf(rw, "vectorrts_world_anomalies{world=%q,kind=%q} %d\n", *worldID, "nan_reset", m.Anomalies.NaNResets)
		fmt.Fprintf(rw, "vectorrts_world_anomalies{world=%q,kind=%q} %d\n", *worldID, "dt_clamp", m.Anomalies.DtClamps)
		fmt.Fprintf(rw, "vectorrts_world_anomalies{world=%q,kind=%q} %d\n", *worldID, "bad_target", m.Anomalies.BadTargets)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("world=%s tick_rate=%dHz tuning=%s listening on %s", *worldID, w.TickRateHz(), tune.Digest[:12], *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// fanoutTickLogger feeds the replay file (source of truth) and the
// match index (joins only) from one WriteTick.
type fanoutTickLogger struct {
	replay  *persistlog.ReplayLogger
	idx     *indexdb.SQLiteIndex
	worldID string
}

func (f fanoutTickLogger) WriteTick(e world.TickLogEntry) error {
	err := f.replay.WriteTick(e)
	if f.idx != nil {
		for _, j := range e.Joins {
			f.idx.RecordJoin(f.worldID, e.Tick, j)
		}
	}
	return err
}
