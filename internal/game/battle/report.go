package battle

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

// Report is the archived record of a finished battle.
type Report struct {
	SessionID   string     `json:"session_id"`
	EncounterID string     `json:"encounter_id"`
	Outcome     string     `json:"outcome"`
	Rounds      int        `json:"rounds"`
	Experience  int        `json:"experience"`
	Currency    int        `json:"currency"`
	Items       []LootItem `json:"items"`
	LevelUps    []LevelUp  `json:"level_ups"`
	Defeated    []string   `json:"defeated"`
	// Log holds the lines still retained by the battle log when it ended.
	Log       []string  `json:"log"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Report builds the archive record for an ended session.
//
// Precondition: State() == StateEnded.
func (s *Session) Report() (Report, error) {
	if s.result == nil {
		return Report{}, fmt.Errorf("%w: battle is %s", combat.ErrInvalidState, s.state)
	}
	res := *s.result
	return Report{
		SessionID:   s.id,
		EncounterID: s.encounterID,
		Outcome:     res.Outcome.String(),
		Rounds:      res.Rounds,
		Experience:  res.Experience,
		Currency:    res.Currency,
		Items:       res.Items,
		LevelUps:    res.LevelUps,
		Defeated:    res.Defeated,
		Log:         s.log.Lines(),
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
	}, nil
}
