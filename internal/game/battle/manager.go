package battle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

// Archive stores reports of finished battles.
type Archive interface {
	Save(ctx context.Context, r Report) error
}

// Manager tracks the active battle sessions, keyed by encounter ID.
// All methods are safe for concurrent use; each Session is still driven by
// one goroutine at a time.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	archive  Archive
	logger   *zap.Logger
}

// NewManager creates an empty Manager. archive may be nil, in which case
// finished battles are not recorded.
//
// Postcondition: Returns a non-nil Manager ready for use.
func NewManager(archive Archive, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{sessions: make(map[string]*Session), archive: archive, logger: logger}
}

// Begin creates and starts a session for encounterID.
//
// Precondition: encounterID must be non-empty.
// Postcondition: Returns the started Session, or an error if a battle is already active for encounterID.
func (m *Manager) Begin(encounterID string, players, enemies []*combat.Combatant, opts Options) (*Session, error) {
	if encounterID == "" {
		return nil, fmt.Errorf("encounter ID must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[encounterID]; exists {
		return nil, fmt.Errorf("battle already active for encounter %q", encounterID)
	}
	opts.EncounterID = encounterID
	if opts.Logger == nil {
		opts.Logger = m.logger
	}
	s, err := NewSession(players, enemies, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}
	m.sessions[encounterID] = s
	return s, nil
}

// Get returns the active session for encounterID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(encounterID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[encounterID]
	return s, ok
}

// Active returns the encounter IDs with a registered session, sorted.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// End removes the session for encounterID. A session that reached a result
// is archived first; an archive failure leaves the session registered.
// The registry is not locked while the archive is written.
//
// Postcondition: On nil error, Get(encounterID) reports false.
func (m *Manager) End(ctx context.Context, encounterID string) error {
	m.mu.RLock()
	s, ok := m.sessions[encounterID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	if m.archive != nil && s.State() == StateEnded {
		report, err := s.Report()
		if err != nil {
			return err
		}
		if err := m.archive.Save(ctx, report); err != nil {
			return fmt.Errorf("archiving battle %s: %w", s.ID(), err)
		}
		m.logger.Info("battle archived",
			zap.String("session_id", s.ID()),
			zap.String("encounter_id", encounterID),
			zap.String("outcome", report.Outcome),
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A concurrent End may already have removed it.
	if m.sessions[encounterID] == s {
		delete(m.sessions, encounterID)
	}
	return nil
}
