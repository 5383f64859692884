package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battle/internal/game/battle"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("battle report not found")

// ErrReportExists is returned when a report for the same session was already saved.
var ErrReportExists = errors.New("battle report already archived")

const reportColumns = `session_id, encounter_id, outcome, rounds, experience, currency,
	items, level_ups, defeated, log, started_at, ended_at`

// ReportRepository stores finished battle reports. It satisfies battle.Archive.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts r.
//
// Precondition: r.SessionID must be a UUID.
// Postcondition: Returns ErrReportExists if the session was already archived.
func (r *ReportRepository) Save(ctx context.Context, rep battle.Report) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO battle_reports (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rep.SessionID, rep.EncounterID, rep.Outcome, rep.Rounds, rep.Experience, rep.Currency,
		nonNil(rep.Items), nonNil(rep.LevelUps), nonNil(rep.Defeated), nonNil(rep.Log),
		rep.StartedAt, rep.EndedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

// Get returns the report for sessionID.
//
// Postcondition: Returns ErrReportNotFound when no report matches.
func (r *ReportRepository) Get(ctx context.Context, sessionID string) (battle.Report, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM battle_reports WHERE session_id = $1`, sessionID)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Report{}, ErrReportNotFound
		}
		return battle.Report{}, fmt.Errorf("querying battle report: %w", err)
	}
	return rep, nil
}

// ListRecent returns up to limit reports, most recently ended first.
// An empty encounterID matches every encounter.
//
// Precondition: limit > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ReportRepository) ListRecent(ctx context.Context, encounterID string, limit int) ([]battle.Report, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns+`
		FROM battle_reports
		WHERE $1 = '' OR encounter_id = $1
		ORDER BY ended_at DESC
		LIMIT $2`,
		encounterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	var out []battle.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle reports: %w", err)
	}
	return out, nil
}

func scanReport(row pgx.Row) (battle.Report, error) {
	var rep battle.Report
	err := row.Scan(
		&rep.SessionID, &rep.EncounterID, &rep.Outcome, &rep.Rounds, &rep.Experience, &rep.Currency,
		&rep.Items, &rep.LevelUps, &rep.Defeated, &rep.Log, &rep.StartedAt, &rep.EndedAt,
	)
	return rep, err
}

// nonNil keeps NOT NULL array and jsonb columns from receiving NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
