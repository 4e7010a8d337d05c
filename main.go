package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/agent"
	"monopoly/artifacts"
	"monopoly/config"
	"monopoly/engine"
	"monopoly/experiments"
	"monopoly/experiments/metrics"
	"monopoly/game"
	"monopoly/observer"
	"monopoly/protocol"
	"monopoly/replay"
)

func main() {
	_ = godotenv.Load()

	games := flag.Int("games", 0, "run an experiment batch of this many games")
	check := flag.Int("check", 0, "run a determinism check over this many seeds")
	replayRun := flag.String("replay", "", "verify a stored run id against a fresh replay")
	inspectID := flag.String("inspect", "", "print a stored run's audit summary")
	schemaDir := flag.String("schema", "", "write the protocol JSON schemas into this directory and exit")
	serveAgent := flag.String("serve-agent", "", "serve a baseline agent (greedy or random) over HTTP")
	serveAddr := flag.String("serve-addr", ":9000", "listen address for -serve-agent")
	seed := flag.Uint64("seed", 0, "override the run seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *games > 0 {
		cfg.Games = *games
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Msgf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *schemaDir != "":
		err = protocol.WriteSchemas(*schemaDir)
	case *serveAgent != "":
		err = serveBaseline(ctx, *serveAgent, *serveAddr, cfg)
	case *replayRun != "":
		err = verifyRun(ctx, cfg, *replayRun)
	case *inspectID != "":
		err = inspectRun(ctx, cfg, *inspectID)
	case *check > 0:
		err = experiments.RunDeterminismCheck(ctx, *check, cfg.Seed)
	case *games > 0:
		err = runBatch(ctx, cfg)
	default:
		err = runOnce(ctx, cfg)
	}
	if err != nil {
		log.Fatal().Msgf("%v", err)
	}
}

// runOnce plays a single recorded game with the configured seats.
func runOnce(ctx context.Context, cfg config.Config) error {
	seats, err := config.ParseSeats(cfg.Players)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	names := make([]string, len(seats))
	agents := make([]agent.Agent, len(seats))
	for i, seat := range seats {
		names[i] = seat.Name
		agents[i] = buildAgent(seat, i, cfg.Seed)
	}

	store, err := artifacts.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	recorder, err := artifacts.NewRecorder(ctx, store, artifacts.RunMeta{
		RunID:     runID,
		Seed:      cfg.Seed,
		Players:   names,
		MaxTurns:  cfg.MaxTurns,
		StartedMS: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	casts := engine.MultiBroadcaster{}
	if cfg.WatchAddr != "" {
		hub := observer.NewHub(runID)
		defer hub.Close()
		casts = append(casts, hub)

		mux := http.NewServeMux()
		mux.Handle("/watch", hub)
		srv := &http.Server{Addr: cfg.WatchAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Msgf("observer server: %v", err)
			}
		}()
		defer srv.Close()
		log.Info().Msgf("observers can connect to ws://%s/watch", cfg.WatchAddr)
	}
	if cfg.RedisAddr != "" {
		pub, err := observer.NewPublisher(cfg.RedisAddr, runID)
		if err != nil {
			return err
		}
		defer pub.Close()
		casts = append(casts, pub)
	}

	state := game.New(runID, names, cfg.Seed, game.WithMaxTradeExchanges(cfg.TradeCap))
	eng, err := engine.New(state, agents,
		engine.WithSink(recorder),
		engine.WithBroadcaster(casts),
		engine.WithTimeout(cfg.Timeout),
		engine.WithMaxTurns(cfg.MaxTurns))
	if err != nil {
		return err
	}

	result, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	if err := recorder.Finish(ctx, result.Winner, result.Turns, time.Now().UnixMilli()); err != nil {
		return err
	}
	if err := store.VerifySequence(ctx, runID); err != nil {
		return err
	}
	log.Info().Msgf("recorded run %s: verify it any time with -replay %s", runID, runID)
	return nil
}

// runBatch plays an experiment batch and writes CSV metrics.
func runBatch(ctx context.Context, cfg config.Config) error {
	seats, err := config.ParseSeats(cfg.Players)
	if err != nil {
		return err
	}
	seatConfigs := make([]metrics.SeatConfig, len(seats))
	for i, seat := range seats {
		seatConfigs[i] = metrics.SeatConfig{Seat: i, Name: seat.Name, Kind: seat.Kind, URL: seat.URL}
	}
	return experiments.Run(ctx, experiments.Batch{
		Name:    "baseline",
		Seats:   seatConfigs,
		Games:   cfg.Games,
		Seed:    cfg.Seed,
		Timeout: cfg.Timeout,
		OutDir:  cfg.OutDir,
	})
}

// verifyRun replays a stored run and reports the first divergence, if any.
func verifyRun(ctx context.Context, cfg config.Config, runID string) error {
	store, err := artifacts.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := replay.Verify(ctx, store, runID)
	if err != nil {
		return err
	}
	if !report.Matched {
		return fmt.Errorf("run %s does not reproduce: %s", runID, report.Divergence)
	}
	log.Info().Msgf("run %s reproduced byte-identically: %d events", runID, report.Events)
	return nil
}

// inspectRun prints a stored run's registry row, decision outcome tally, and
// final standings without replaying it.
func inspectRun(ctx context.Context, cfg config.Config, runID string) error {
	store, err := artifacts.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	meta, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if err := store.VerifySequence(ctx, runID); err != nil {
		return err
	}
	decisions, err := store.ListDecisions(ctx, runID)
	if err != nil {
		return err
	}
	tally := map[protocol.Outcome]int{}
	for _, rec := range decisions {
		tally[rec.Outcome]++
	}

	log.Info().Msgf("run %s: seed %d, players %v, winner %q after %d turns",
		runID, meta.Seed, meta.Players, meta.Winner, meta.Turns)
	log.Info().Msgf("decisions: %d accepted, %d accepted on retry, %d fallback",
		tally[protocol.OutcomeAccepted], tally[protocol.OutcomeRetried], tally[protocol.OutcomeFallback])

	snap, err := store.LatestSnapshot(ctx, runID)
	if err != nil {
		return err
	}
	for _, p := range snap.Players {
		standing := fmt.Sprintf("%d cash", p.Cash)
		if p.Bankrupt {
			standing = "bankrupt"
		}
		log.Info().Msgf("  %s: %s", p.Name, standing)
	}
	return nil
}

// serveBaseline exposes a built-in agent over HTTP for remote seats.
func serveBaseline(ctx context.Context, kind, addr string, cfg config.Config) error {
	var seated agent.Agent
	switch kind {
	case "greedy":
		seated = agent.NewGreedy("remote-greedy")
	case "random":
		seated = agent.NewRandom("remote-random", cfg.Seed)
	default:
		return fmt.Errorf("unknown agent kind %q: want greedy or random", kind)
	}

	srv := &http.Server{Addr: addr, Handler: agent.Handler(seated)}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Info().Msgf("serving %s agent on %s", kind, addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func buildAgent(seat config.Seat, index int, seed uint64) agent.Agent {
	switch seat.Kind {
	case "random":
		return agent.NewRandom(seat.Name, game.DeriveSeed(seed, game.StreamAgent+uint64(index)))
	case "http":
		return agent.NewHTTP(seat.Name, seat.URL)
	default:
		return agent.NewGreedy(seat.Name)
	}
}
