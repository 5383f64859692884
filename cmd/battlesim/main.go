// Package main runs battles from content files with every side driven by the
// AI. A single run prints the narration and result; several runs are played
// concurrently and summarized.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/battle/internal/config"
	"github.com/cory-johannsen/battle/internal/game/ai"
	"github.com/cory-johannsen/battle/internal/game/battle"
	"github.com/cory-johannsen/battle/internal/game/catalog"
	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/dice"
	"github.com/cory-johannsen/battle/internal/observability"
	"github.com/cory-johannsen/battle/internal/storage/postgres"
)

// simulator holds what every run shares: content, tuning, and the session registry.
type simulator struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	profiles *ai.Registry
	manager  *battle.Manager
	logger   *zap.Logger
	seed     uint64
	maxTurns int
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "content", "root of the abilities/items/enemies/conditions/ai content")
	encounterPath := flag.String("encounter", "content/encounters/swamp_ambush.yaml", "encounter file to run")
	seed := flag.Uint64("seed", 0, "random seed; 0 draws from crypto/rand")
	maxTurns := flag.Int("max-turns", 500, "abandon a battle after this many turns")
	runs := flag.Int("runs", 1, "number of battles to simulate; more than one prints a summary only")
	archive := flag.Bool("archive", false, "store battle reports in PostgreSQL")
	flag.Parse()

	// An interrupt abandons running battles between turns.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.Load(*contentDir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("abilities", len(cat.AbilityIDs())),
		zap.Int("items", len(cat.ItemIDs())),
		zap.Int("enemies", len(cat.EnemyIDs())),
		zap.Duration("elapsed", time.Since(start)),
	)

	enc, err := catalog.LoadEncounter(*encounterPath)
	if err != nil {
		logger.Fatal("loading encounter", zap.Error(err))
	}

	difficulty, err := ai.ParseDifficulty(cfg.Battle.Difficulty)
	if err != nil {
		logger.Fatal("parsing difficulty", zap.Error(err))
	}
	profiles := ai.NewRegistry(difficulty, cfg.Battle.FocusFireChance)
	if aiDir := filepath.Join(*contentDir, "ai"); dirExists(aiDir) {
		if err := profiles.LoadDirectory(aiDir); err != nil {
			logger.Fatal("loading AI profiles", zap.Error(err))
		}
	}

	var store battle.Archive
	if *archive {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Fatal("database health check", zap.Error(err))
		}
		store = postgres.NewReportRepository(pool.DB())
	}

	sim := &simulator{
		cfg:      cfg,
		catalog:  cat,
		profiles: profiles,
		manager:  battle.NewManager(store, logger),
		logger:   logger,
		seed:     *seed,
		maxTurns: *maxTurns,
	}

	if *runs <= 1 {
		fmt.Fprintf(os.Stdout, "== %s ==\n", enc.Name)
		res, ok, turns, err := sim.play(ctx, enc, 0, os.Stdout)
		if err != nil {
			logger.Fatal("running battle", zap.Error(err))
		}
		if ok {
			fmt.Fprintf(os.Stdout, "\n%s\n", res.Summary())
			for _, item := range res.Items {
				fmt.Fprintf(os.Stdout, "  loot: %s x%d\n", item.ItemID, item.Quantity)
			}
		} else {
			fmt.Fprintf(os.Stdout, "\nbattle abandoned after %d turns\n", turns)
		}
	} else {
		t, err := sim.many(ctx, enc, *runs)
		if err != nil {
			logger.Fatal("running battles", zap.Error(err))
		}
		t.print(os.Stdout, enc.Name)
	}
	logger.Info("simulation finished", zap.Duration("elapsed", time.Since(start)))
}

// tally aggregates the results of many runs.
type tally struct {
	mu        sync.Mutex
	runs      int
	outcomes  map[battle.Resolution]int
	abandoned int
	rounds    int
}

func (t *tally) add(res battle.Result, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	if !ok {
		t.abandoned++
		return
	}
	t.outcomes[res.Outcome]++
	t.rounds += res.Rounds
}

func (t *tally) print(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s: %d runs ==\n", name, t.runs)
	finished := t.runs - t.abandoned
	for _, r := range []battle.Resolution{battle.Victory, battle.Defeat, battle.Fled} {
		fmt.Fprintf(w, "%-8s %5d (%.1f%%)\n", r, t.outcomes[r], 100*float64(t.outcomes[r])/float64(t.runs))
	}
	fmt.Fprintf(w, "%-8s %5d\n", "abandoned", t.abandoned)
	if finished > 0 {
		fmt.Fprintf(w, "average rounds: %.1f\n", float64(t.rounds)/float64(finished))
	}
}

// many plays runs battles concurrently, one goroutine per CPU.
func (s *simulator) many(ctx context.Context, enc *catalog.Encounter, runs int) (*tally, error) {
	t := &tally{outcomes: make(map[battle.Resolution]int)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range runs {
		g.Go(func() error {
			res, ok, _, err := s.play(gctx, enc, i, io.Discard)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			t.add(res, ok)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// play builds fresh rosters for enc and drives one battle to completion,
// writing narration to w. Player turns are chosen by the AI as well, using
// each player's own profile.
func (s *simulator) play(ctx context.Context, enc *catalog.Encounter, run int, w io.Writer) (battle.Result, bool, int, error) {
	players, enemies, err := s.catalog.Build(enc)
	if err != nil {
		return battle.Result{}, false, 0, err
	}

	var src dice.Source
	if s.seed != 0 {
		src = dice.NewSeededSource(s.seed + uint64(run))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, s.logger.Named("dice"))
	engine := ai.NewEngine(s.profiles, roller, s.logger)

	encounterID := enc.ID
	if run > 0 {
		encounterID = fmt.Sprintf("%s-%d", enc.ID, run)
	}
	sess, err := s.manager.Begin(encounterID, players, enemies, battle.Options{
		Catalog: s.catalog,
		Config:  s.cfg.Battle,
		Source:  roller,
		Decider: engine,
		Logger:  s.logger,
	})
	if err != nil {
		return battle.Result{}, false, 0, err
	}
	defer func() {
		if err := s.manager.End(context.WithoutCancel(ctx), encounterID); err != nil {
			s.logger.Error("ending battle", zap.String("encounter_id", encounterID), zap.Error(err))
		}
	}()
	printLines(w, sess.Log())

	turns := 0
	for ; turns < s.maxTurns && sess.State() == battle.StateInProgress && ctx.Err() == nil; turns++ {
		turn, err := sess.NextTurn()
		if err != nil {
			return battle.Result{}, false, turns, err
		}
		fmt.Fprintf(w, "\n-- round %d: %s --\n", turn.Round, turn.Actor.Name)
		printOutcomes(w, turn.Effects)
		if turn.Skipped {
			continue
		}

		var outcomes []combat.Outcome
		if turn.PlayerControlled {
			action, err := engine.Choose(turn.Actor, players, enemies)
			if err != nil {
				return battle.Result{}, false, turns, err
			}
			outcomes, err = sess.Submit(action)
			if err != nil {
				outcomes, err = sess.Submit(combat.Defend(turn.Actor.ID))
			}
			if err != nil {
				return battle.Result{}, false, turns, err
			}
		} else {
			outcomes, err = sess.ResolveAI()
			if err != nil {
				return battle.Result{}, false, turns, err
			}
		}
		printOutcomes(w, outcomes)
	}

	res, ok := sess.Result()
	return res, ok, turns, nil
}

func printOutcomes(w io.Writer, outcomes []combat.Outcome) {
	for _, o := range outcomes {
		if o.Message != "" {
			fmt.Fprintf(w, "  %s\n", o.Message)
		}
	}
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
