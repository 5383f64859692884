// Package battle runs battle sessions: the turn loop, action validation and
// resolution, termination, and rewards.
package battle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battle/internal/config"
	"github.com/cory-johannsen/battle/internal/game/ai"
	"github.com/cory-johannsen/battle/internal/game/catalog"
	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
	"github.com/cory-johannsen/battle/internal/game/dice"
	"github.com/cory-johannsen/battle/internal/observability"
)

// Decider chooses actions for combatants that are not player-controlled.
type Decider interface {
	Choose(actor *combat.Combatant, allies, enemies []*combat.Combatant) (combat.Action, error)
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	// EncounterID identifies the battle to the world layer and the Manager.
	EncounterID string
	// Catalog supplies item effects and status conditions. Nil selects an empty catalog.
	Catalog *catalog.Catalog
	// Config holds battle tuning. The zero value selects config.DefaultBattleConfig.
	Config config.BattleConfig
	// Source supplies randomness. Nil selects a crypto-backed source.
	Source dice.Source
	// Decider chooses enemy actions. Nil selects an ai.Engine built from Config.
	Decider Decider
	Logger  *zap.Logger
	// Now returns the current time for report timestamps. Nil selects time.Now.
	Now func() time.Time
}

// Turn describes the actor whose turn has begun.
type Turn struct {
	Round            int
	Actor            *combat.Combatant
	PlayerControlled bool
	// Skipped is set when start-of-turn effects prevent the actor from acting.
	// No action may be submitted for a skipped turn.
	Skipped bool
	// Effects are the outcomes of start-of-turn conditions.
	Effects []combat.Outcome
	// Expired lists conditions that wore off at the start of this turn.
	Expired []string
}

// Session is one battle between a player party and an enemy group.
// A Session is driven by a single goroutine; it performs no locking.
type Session struct {
	id          string
	encounterID string
	players     []*combat.Combatant
	enemies     []*combat.Combatant
	byID        map[string]*combat.Combatant

	catalog *catalog.Catalog
	cfg     config.BattleConfig
	calc    *combat.Calculator
	sched   *combat.Scheduler
	decider Decider
	src     dice.Source
	logger  *zap.Logger
	now     func() time.Time

	state   State
	current *combat.Combatant
	// fielded holds the enemies standing when the battle started; only they pay out.
	fielded map[string]bool
	log     *Log
	result  *Result

	startedAt time.Time
	endedAt   time.Time
}

// NewSession creates a session over the given rosters. The combatants are
// borrowed, not copied: the session mutates them as the battle proceeds.
//
// Precondition: both rosters are non-empty; combatant IDs are unique and non-empty.
// Postcondition: State() == StateNotStarted.
func NewSession(players, enemies []*combat.Combatant, opts Options) (*Session, error) {
	if len(players) == 0 || len(enemies) == 0 {
		return nil, errors.New("battle: both sides need at least one combatant")
	}
	cfg := opts.Config
	if cfg == (config.BattleConfig{}) {
		cfg = config.DefaultBattleConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("battle: %w", err)
	}

	s := &Session{
		id:          uuid.NewString(),
		encounterID: opts.EncounterID,
		players:     players,
		enemies:     enemies,
		byID:        make(map[string]*combat.Combatant, len(players)+len(enemies)),
		catalog:     opts.Catalog,
		cfg:         cfg,
		src:         opts.Source,
		decider:     opts.Decider,
		now:         opts.Now,
		log:         NewLog(cfg.LogCapacity),
	}
	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	if s.src == nil {
		s.src = dice.NewCryptoSource()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = observability.SessionLogger(opts.Logger, s.id, s.encounterID)

	for _, side := range [][]*combat.Combatant{players, enemies} {
		for _, c := range side {
			if c == nil || c.ID == "" {
				return nil, errors.New("battle: combatants must be non-nil with a non-empty ID")
			}
			if _, dup := s.byID[c.ID]; dup {
				return nil, fmt.Errorf("battle: duplicate combatant ID %q", c.ID)
			}
			if c.Conditions == nil {
				c.Conditions = condition.NewActiveSet()
			}
			s.byID[c.ID] = c
		}
	}
	for _, p := range players {
		p.Kind = combat.KindPlayer
	}
	for _, e := range enemies {
		e.Kind = combat.KindEnemy
	}

	if s.decider == nil {
		difficulty, err := ai.ParseDifficulty(cfg.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("battle: %w", err)
		}
		s.decider = ai.NewEngine(ai.NewRegistry(difficulty, cfg.FocusFireChance), s.src, s.logger)
	}
	s.calc = combat.NewCalculator(TuningFromConfig(cfg), s.src)
	return s, nil
}

// TuningFromConfig maps battle configuration onto calculator constants.
func TuningFromConfig(cfg config.BattleConfig) combat.Tuning {
	return combat.Tuning{
		VarianceMin:           cfg.VarianceMin,
		VarianceMax:           cfg.VarianceMax,
		CritBase:              cfg.CritBase,
		CritPerLuck:           cfg.CritPerLuck,
		CritMultiplierBase:    cfg.CritMultiplierBase,
		CritMultiplierPerLuck: cfg.CritMultiplierPerLuck,
		DefendFactor:          cfg.DefendFactor,
		MasteryPerPoint:       cfg.MasteryPerPoint,
		ResolvePerPoint:       cfg.ResolvePerPoint,
	}
}

// SetTuning replaces the calculator constants, e.g. to disable variance and crits.
//
// Precondition: State() == StateNotStarted.
func (s *Session) SetTuning(t combat.Tuning) error {
	if s.state != StateNotStarted {
		return fmt.Errorf("%w: tuning can only change before the battle starts", combat.ErrInvalidState)
	}
	s.calc = combat.NewCalculator(t, s.src)
	return nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// EncounterID returns the encounter this session was created for.
func (s *Session) EncounterID() string { return s.encounterID }

// State returns the lifecycle stage.
func (s *Session) State() State { return s.state }

// Round returns the current round, or 0 before Start.
func (s *Session) Round() int {
	if s.sched == nil {
		return 0
	}
	return s.sched.Round()
}

// Current returns the actor whose action is pending, or nil.
func (s *Session) Current() *combat.Combatant { return s.current }

// Log returns the retained battle log lines, oldest first.
func (s *Session) Log() []string { return s.log.Lines() }

// Result returns the terminal result once the session has ended.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Start builds the turn order and begins the battle.
//
// Precondition: State() == StateNotStarted.
// Postcondition: State() == StateInProgress, or StateEnded if a side starts fully defeated.
func (s *Session) Start() error {
	if s.state != StateNotStarted {
		return fmt.Errorf("%w: battle already %s", combat.ErrInvalidState, s.state)
	}
	roster := make([]*combat.Combatant, 0, len(s.players)+len(s.enemies))
	roster = append(roster, s.players...)
	roster = append(roster, s.enemies...)
	s.sched = combat.NewScheduler(roster)
	s.fielded = make(map[string]bool, len(s.enemies))
	for _, e := range s.enemies {
		if e.IsAlive() {
			s.fielded[e.ID] = true
		}
	}
	s.state = StateInProgress
	s.startedAt = s.now()

	s.record(fmt.Sprintf("Battle begins: %s vs %s", names(s.players), names(s.enemies)))
	s.logger.Info("battle started",
		zap.Strings("players", ids(s.players)),
		zap.Strings("enemies", ids(s.enemies)),
	)
	s.checkEnd()
	return nil
}

// NextTurn advances to the next living actor and applies its start-of-turn
// effects: the defend stance lapses, conditions deal their damage, and
// durations tick. If an action is already pending, its turn is returned again.
//
// Precondition: State() == StateInProgress.
// Postcondition: when the returned turn is not Skipped, Current() is its actor.
func (s *Session) NextTurn() (Turn, error) {
	if s.state != StateInProgress {
		return Turn{}, fmt.Errorf("%w: battle is %s", combat.ErrInvalidState, s.state)
	}
	if s.current != nil {
		return Turn{Round: s.sched.Round(), Actor: s.current, PlayerControlled: s.current.IsPlayer()}, nil
	}
	actor, err := s.sched.Next()
	if err != nil {
		return Turn{}, err
	}
	turn := Turn{Round: s.sched.Round(), Actor: actor, PlayerControlled: actor.IsPlayer()}
	actor.Defending = false

	for _, ac := range actor.Conditions.All() {
		dmg := ac.Def.TurnDamage * ac.Stacks
		if dmg == 0 {
			continue
		}
		out := combat.Outcome{ActorID: actor.ID, TargetID: actor.ID, Multiplier: combat.NeutralMultiplier}
		out.HPDelta = actor.ApplyHPDelta(-dmg)
		out.Message = conditionLine(actor, ac.Def, out.HPDelta)
		s.record(out.Message)
		turn.Effects = append(turn.Effects, out)
	}
	skip := condition.SkipsTurn(actor.Conditions)
	turn.Expired = actor.Conditions.Tick()
	for _, id := range turn.Expired {
		s.record(fmt.Sprintf("%s is no longer affected by %s.", actor.Name, s.conditionName(id)))
	}

	switch {
	case actor.IsDefeated():
		actor.Defeat()
		s.record(fmt.Sprintf("%s is defeated!", actor.Name))
		turn.Skipped = true
		s.checkEnd()
	case skip:
		s.record(fmt.Sprintf("%s cannot act!", actor.Name))
		turn.Skipped = true
	default:
		s.current = actor
	}
	s.logger.Debug("turn started",
		zap.Int("round", turn.Round),
		zap.String("actor", actor.Name),
		zap.Bool("skipped", turn.Skipped),
	)
	return turn, nil
}

// Submit validates and resolves an action for the pending player-controlled actor.
//
// Precondition: State() == StateInProgress and a player actor's turn is pending.
// Postcondition: on error the session and every combatant are unchanged.
func (s *Session) Submit(a combat.Action) ([]combat.Outcome, error) {
	actor, err := s.pending()
	if err != nil {
		return nil, err
	}
	if !actor.IsPlayer() {
		return nil, fmt.Errorf("%w: %s is not player-controlled", combat.ErrIllegalAction, actor.Name)
	}
	checked, err := s.validate(actor, a)
	if err != nil {
		return nil, err
	}
	return s.commit(actor, checked)
}

// ResolveAI asks the Decider for the pending enemy's action and resolves it.
// A decision that fails validation is replaced with Defend.
//
// Precondition: State() == StateInProgress and an enemy's turn is pending.
func (s *Session) ResolveAI() ([]combat.Outcome, error) {
	actor, err := s.pending()
	if err != nil {
		return nil, err
	}
	if actor.IsPlayer() {
		return nil, fmt.Errorf("%w: %s is player-controlled", combat.ErrIllegalAction, actor.Name)
	}
	a, err := s.decider.Choose(actor, s.alliesOf(actor), s.opponentsOf(actor))
	if err != nil {
		return nil, fmt.Errorf("battle: deciding for %s: %w", actor.Name, err)
	}
	checked, err := s.validate(actor, a)
	if err != nil {
		s.logger.Warn("discarding illegal AI action", zap.String("actor", actor.Name), zap.Error(err))
		checked = combat.Defend(actor.ID)
	}
	return s.commit(actor, checked)
}

// Snapshot is a read-only view of a session for presentation.
type Snapshot struct {
	ID      string
	State   State
	Round   int
	Current string
	// Queued lists the IDs of living combatants still to act this round, in order.
	Queued  []string
	Players []combat.View
	Enemies []combat.View
	Log     []string
}

// Snapshot returns the presentation view of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{ID: s.id, State: s.state, Round: s.Round(), Log: s.log.Lines()}
	if s.current != nil {
		snap.Current = s.current.ID
	}
	if s.sched != nil && s.state == StateInProgress {
		snap.Queued = ids(s.sched.Remaining())
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p.Snapshot())
	}
	for _, e := range s.enemies {
		snap.Enemies = append(snap.Enemies, e.Snapshot())
	}
	return snap
}

// Preview returns the next n actors after any pending one, without advancing.
// n <= 0 selects the configured preview length.
func (s *Session) Preview(n int) []combat.View {
	if s.sched == nil || s.state == StateEnded {
		return nil
	}
	if n <= 0 {
		n = s.cfg.PreviewLength
	}
	var out []combat.View
	for _, c := range s.sched.Preview(n) {
		out = append(out, c.Snapshot())
	}
	return out
}

func (s *Session) pending() (*combat.Combatant, error) {
	if s.state != StateInProgress {
		return nil, fmt.Errorf("%w: battle is %s", combat.ErrInvalidState, s.state)
	}
	if s.current == nil {
		return nil, fmt.Errorf("%w: no turn is pending; call NextTurn", combat.ErrInvalidState)
	}
	return s.current, nil
}

// commit resolves a validated action, closes the turn, and checks for the end of battle.
func (s *Session) commit(actor *combat.Combatant, a combat.Action) ([]combat.Outcome, error) {
	outcomes := s.resolve(actor, a)
	s.current = nil
	for _, o := range outcomes {
		s.logger.Debug("outcome",
			zap.Int("round", s.sched.Round()),
			zap.String("actor", actor.Name),
			zap.String("target", o.TargetID),
			zap.Int("hp_delta", o.HPDelta),
			zap.Bool("critical", o.Critical),
			zap.Bool("immune", o.Immune),
		)
	}
	if s.state == StateInProgress {
		s.checkEnd()
	}
	return outcomes, nil
}

// checkEnd ends the battle when either side is fully defeated.
func (s *Session) checkEnd() {
	switch {
	case !anyAlive(s.enemies):
		s.end(Victory)
	case !anyAlive(s.players):
		s.end(Defeat)
	}
}

func (s *Session) end(outcome Resolution) {
	res := s.settle(outcome)
	s.result = &res
	s.state = StateEnded
	s.current = nil
	s.endedAt = s.now()

	switch outcome {
	case Victory:
		s.record(fmt.Sprintf("Victory! Gained %d experience and %d currency.", res.Experience, res.Currency))
	case Defeat:
		s.record("The party has fallen...")
	case Fled:
		s.record("Escaped from battle.")
	}
	for _, lu := range res.LevelUps {
		s.record(fmt.Sprintf("%s reached level %d!", lu.Name, lu.To))
	}
	s.logger.Info("battle ended",
		zap.Stringer("outcome", outcome),
		zap.Int("round", res.Rounds),
		zap.Int("experience", res.Experience),
		zap.Int("currency", res.Currency),
	)
}

func (s *Session) record(line string) { s.log.Append(line) }

func (s *Session) conditionName(id string) string {
	if def, ok := s.catalog.Condition(id); ok {
		return def.Name
	}
	return id
}

func (s *Session) alliesOf(c *combat.Combatant) []*combat.Combatant {
	if c.IsPlayer() {
		return s.players
	}
	return s.enemies
}

func (s *Session) opponentsOf(c *combat.Combatant) []*combat.Combatant {
	if c.IsPlayer() {
		return s.enemies
	}
	return s.players
}

func anyAlive(cs []*combat.Combatant) bool {
	for _, c := range cs {
		if c.IsAlive() {
			return true
		}
	}
	return false
}

func names(cs []*combat.Combatant) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return strings.Join(out, ", ")
}

func ids(cs []*combat.Combatant) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
