package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	persistlog "vectorrts.dev/internal/persistence/log"
	"vectorrts.dev/internal/sim/tuning"
	"vectorrts.dev/internal/sim/world"
)

// Re-runs a recorded match through a fresh world and verifies that the
// per-tick state digests come out identical. Any divergence means the
// sim is no longer deterministic against the recorded tuning.
func main() {
	var (
		replayPath = flag.String("replay", "", "path to a .jsonl.zst replay file")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		empty      = flag.Bool("empty", false, "the recording started from an empty world, not the skirmish layout")
		force      = flag.Bool("force", false, "continue on tuning digest mismatch")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[replay] ", log.LstdFlags)

	if *replayPath == "" && flag.NArg() > 0 {
		*replayPath = flag.Arg(0)
	}
	if *replayPath == "" {
		logger.Fatalf("usage: replay -replay <file.jsonl.zst> [-tuning tuning.yaml]")
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	r, err := persistlog.OpenReplayReader(*replayPath)
	if err != nil {
		logger.Fatalf("open replay: %v", err)
	}
	defer r.Close()

	hdr := r.Header()
	if hdr.TuningDigest != "" && hdr.TuningDigest != tune.Digest {
		if !*force {
			logger.Fatalf("tuning digest mismatch: recorded=%s loaded=%s (use -force to replay anyway)", hdr.TuningDigest, tune.Digest)
		}
		logger.Printf("warning: tuning digest mismatch, digests will likely diverge")
	}

	w := world.New(world.ConfigFromTuning(hdr.WorldID, tune))
	if !*empty {
		w.SetupSkirmish()
	}

	// The server loop derives dt from the ticker interval; replay has to
	// use the same value bit for bit.
	hz := hdr.TickRateHz
	if hz <= 0 {
		hz = w.TickRateHz()
	}
	dt := (time.Second / time.Duration(hz)).Seconds()

	var (
		ticks      int
		mismatches int
		firstBad   uint64
	)
	for {
		entry, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Fatalf("read entry: %v", err)
		}

		joins := make([]world.JoinRequest, 0, len(entry.Joins))
		for _, j := range entry.Joins {
			joins = append(joins, world.JoinRequest{Name: j.Name, Team: j.Team})
		}
		commands := make([]world.CommandEnvelope, 0, len(entry.Commands))
		for _, c := range entry.Commands {
			commands = append(commands, world.CommandEnvelope{PlayerID: c.PlayerID, Commands: c.Commands})
		}

		tick, digest := w.StepOnce(dt, joins, entry.Leaves, commands)
		ticks++
		if tick != entry.Tick {
			logger.Fatalf("tick drift: replay at %d, recording at %d", tick, entry.Tick)
		}
		if digest != entry.Digest {
			if mismatches == 0 {
				firstBad = tick
			}
			mismatches++
		}
	}

	if mismatches > 0 {
		logger.Fatalf("FAIL: %d/%d tick digests diverged, first at tick %d", mismatches, ticks, firstBad)
	}
	logger.Printf("OK: %d ticks verified, world=%s final_tick=%d", ticks, hdr.WorldID, w.CurrentTick())
}
