package battle_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battle/internal/game/battle"
	"github.com/cory-johannsen/battle/internal/game/combat"
)

type memoryArchive struct {
	mu      sync.Mutex
	reports []battle.Report
	err     error
}

func (a *memoryArchive) Save(_ context.Context, r battle.Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.reports = append(a.reports, r)
	return nil
}

// gatedArchive blocks Save until released.
type gatedArchive struct {
	entered chan struct{}
	release chan struct{}
}

func (a *gatedArchive) Save(ctx context.Context, _ battle.Report) error {
	close(a.entered)
	select {
	case <-a.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func quickWin(t *testing.T, s *battle.Session) {
	t.Helper()
	turn, err := s.NextTurn()
	require.NoError(t, err)
	enemies := s.Snapshot().Enemies
	_, err = s.Submit(combat.Attack(turn.Actor.ID, enemies[0].ID))
	require.NoError(t, err)
	require.Equal(t, battle.StateEnded, s.State())
}

func rosters() ([]*combat.Combatant, []*combat.Combatant) {
	p := player("p", 20)
	e := enemy("e", 1)
	e.CurrentHP = 1
	return []*combat.Combatant{p}, []*combat.Combatant{e}
}

func TestManager_BeginGetActive(t *testing.T) {
	m := battle.NewManager(nil, nil)

	players, enemies := rosters()
	s, err := m.Begin("swamp", players, enemies, battle.Options{Source: &scriptedSource{}, Decider: attackFirst{}})
	require.NoError(t, err)
	assert.Equal(t, battle.StateInProgress, s.State())
	assert.Equal(t, "swamp", s.EncounterID())

	got, ok := m.Get("swamp")
	require.True(t, ok)
	assert.Same(t, s, got)

	players, enemies = rosters()
	_, err = m.Begin("swamp", players, enemies, battle.Options{})
	assert.ErrorContains(t, err, "already active")

	players, enemies = rosters()
	_, err = m.Begin("cave", players, enemies, battle.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cave", "swamp"}, m.Active())

	_, err = m.Begin("", players, enemies, battle.Options{})
	assert.Error(t, err)
}

func TestManager_EndArchivesFinishedBattles(t *testing.T) {
	archive := &memoryArchive{}
	m := battle.NewManager(archive, nil)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	players, enemies := rosters()
	s, err := m.Begin("swamp", players, enemies, battle.Options{
		Source:  &scriptedSource{},
		Decider: attackFirst{},
		Now:     func() time.Time { return clock },
	})
	require.NoError(t, err)
	quickWin(t, s)

	require.NoError(t, m.End(context.Background(), "swamp"))
	_, ok := m.Get("swamp")
	assert.False(t, ok)

	require.Len(t, archive.reports, 1)
	r := archive.reports[0]
	assert.Equal(t, s.ID(), r.SessionID)
	assert.Equal(t, "swamp", r.EncounterID)
	assert.Equal(t, "victory", r.Outcome)
	assert.Equal(t, clock, r.StartedAt)
	assert.Equal(t, clock, r.EndedAt)
	assert.NotEmpty(t, r.Log)

	assert.NoError(t, m.End(context.Background(), "unknown"))
}

func TestManager_EndAbandonedBattleIsNotArchived(t *testing.T) {
	archive := &memoryArchive{}
	m := battle.NewManager(archive, nil)
	players, enemies := rosters()
	_, err := m.Begin("swamp", players, enemies, battle.Options{})
	require.NoError(t, err)

	require.NoError(t, m.End(context.Background(), "swamp"))
	assert.Empty(t, archive.reports)
	assert.Empty(t, m.Active())
}

func TestManager_ArchiveFailureKeepsSession(t *testing.T) {
	archive := &memoryArchive{err: errors.New("database unavailable")}
	m := battle.NewManager(archive, nil)
	players, enemies := rosters()
	s, err := m.Begin("swamp", players, enemies, battle.Options{Source: &scriptedSource{}, Decider: attackFirst{}})
	require.NoError(t, err)
	quickWin(t, s)

	err = m.End(context.Background(), "swamp")
	assert.ErrorContains(t, err, "database unavailable")
	_, ok := m.Get("swamp")
	assert.True(t, ok)
}

func TestManager_ArchiveDoesNotBlockRegistry(t *testing.T) {
	archive := &gatedArchive{entered: make(chan struct{}), release: make(chan struct{})}
	m := battle.NewManager(archive, nil)
	players, enemies := rosters()
	s, err := m.Begin("swamp", players, enemies, battle.Options{Source: &scriptedSource{}, Decider: attackFirst{}})
	require.NoError(t, err)
	quickWin(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.End(ctx, "swamp") }()
	<-archive.entered

	// The archive write is in flight; the registry stays usable.
	_, ok := m.Get("swamp")
	assert.True(t, ok)
	players, enemies = rosters()
	_, err = m.Begin("cave", players, enemies, battle.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cave", "swamp"}, m.Active())

	close(archive.release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"cave"}, m.Active())
}

func TestManager_ConcurrentBegin(t *testing.T) {
	m := battle.NewManager(nil, nil)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			players, enemies := rosters()
			id := fmt.Sprintf("encounter-%d", i%10)
			if _, err := m.Begin(id, players, enemies, battle.Options{}); err == nil {
				_, _ = m.Get(id)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, m.Active(), 10)
}

func TestSession_Report(t *testing.T) {
	players, enemies := rosters()
	s := started(t, players, enemies, battle.Options{})

	_, err := s.Report()
	assert.ErrorIs(t, err, combat.ErrInvalidState)

	quickWin(t, s)
	r, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, "victory", r.Outcome)
	assert.Equal(t, []string{"e"}, r.Defeated)
	assert.Equal(t, 10, r.Experience)
	assert.Equal(t, 50, r.Currency)
}
