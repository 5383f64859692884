package battle

import (
	"fmt"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateEnded
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateInProgress:
		return "in progress"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Resolution is how a battle ended.
type Resolution int

const (
	Victory Resolution = iota
	Defeat
	Fled
)

// String returns "victory", "defeat", or "fled".
func (r Resolution) String() string {
	switch r {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Fled:
		return "fled"
	default:
		return "unknown"
	}
}

// LevelUp reports a player who gained one or more levels from battle experience.
// Recomputing stats for the new level is left to the caller.
type LevelUp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Result is the terminal summary of a battle.
type Result struct {
	Outcome Resolution
	Rounds  int
	// Experience and Currency total the yields of every enemy defeated during the battle.
	Experience int
	Currency   int
	Items      []LootItem
	LevelUps   []LevelUp
	// Defeated lists the IDs of enemies defeated during the battle. Enemies
	// already down when it started are excluded.
	Defeated []string
}

// Summary returns a one-line description of the result.
func (r Result) Summary() string {
	return fmt.Sprintf("%s after %d rounds: %d experience, %d currency, %d item stacks",
		r.Outcome, r.Rounds, r.Experience, r.Currency, len(r.Items))
}

// settle totals rewards from enemies defeated since Start, rolls their loot,
// and splits experience evenly across living players. Any remainder of the
// split is lost.
func (s *Session) settle(outcome Resolution) Result {
	res := Result{Outcome: outcome, Rounds: s.sched.Round()}
	for _, e := range s.enemies {
		if e.IsAlive() || !s.fielded[e.ID] {
			continue
		}
		res.Defeated = append(res.Defeated, e.ID)
		res.Experience += e.ExperienceReward()
		res.Currency += e.CurrencyReward()
		drop := RollLoot(e.Loot, s.src)
		res.Currency += drop.Currency
		res.Items = append(res.Items, drop.Items...)
	}

	var living []*combat.Combatant
	for _, p := range s.players {
		if p.IsAlive() {
			living = append(living, p)
		}
	}
	if len(living) == 0 || res.Experience == 0 {
		return res
	}
	share := res.Experience / len(living)
	for _, p := range living {
		from, to := p.GainExperience(share)
		if to > from {
			res.LevelUps = append(res.LevelUps, LevelUp{ID: p.ID, Name: p.Name, From: from, To: to})
		}
	}
	return res
}
