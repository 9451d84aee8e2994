package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lrcx/internal/entries"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

// RunRepository persists batch reports for the history command.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, sequence, outdir, total, written, skipped, unresolved, failed, cancelled, started_at, finished_at`

// Save stores report and its outcomes, returning the stored summary.
//
// A report without a RunID is assigned one.
func (r *RunRepository) Save(report *models.Report) (*models.RunSummary, error) {
	if report == nil {
		return nil, fmt.Errorf("%w: report is nil", shared.ErrMissingArgument)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}
	if report.RunID == "" {
		report.RunID = shared.GenerateID()
	}

	summary := summarize(report, sequence)

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.Sequence,
		summary.OutDir,
		summary.Total,
		summary.Written,
		summary.Skipped,
		summary.Unresolved,
		summary.Failed,
		summary.Cancelled,
		summary.StartedAt,
		nullTime(summary.FinishedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_entries (id, run_id, position, entry, status, track_id, source, title, artist, score, path, reason, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range report.Outcomes {
		var (
			trackID sql.NullInt64
			source  sql.NullString
			title   sql.NullString
			artist  sql.NullString
			score   sql.NullFloat64
		)
		if t := o.Track; t != nil {
			trackID = sql.NullInt64{Int64: t.ID, Valid: true}
			source = sql.NullString{String: t.Source, Valid: true}
			title = sql.NullString{String: t.Title, Valid: true}
			artist = sql.NullString{String: t.Artist, Valid: true}
			if t.Source == models.SourceSearch {
				score = sql.NullFloat64{Float64: t.Score, Valid: true}
			}
		}

		_, err := stmt.Exec(shared.GenerateID(), summary.ID, o.Position, o.Entry, string(o.Status),
			trackID, source, title, artist, score, o.Path, o.Reason, o.Attempts)
		if err != nil {
			return nil, fmt.Errorf("failed to insert entry %d: %w", o.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return summary, nil
}

// Get retrieves a run summary by ID
func (r *RunRepository) Get(id string) (*models.RunSummary, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
}

// GetBySequence retrieves a run summary by its run number
func (r *RunRepository) GetBySequence(sequence int) (*models.RunSummary, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE sequence = ?`, sequence))
}

// List returns the most recent runs first. A limit of zero or less returns every run.
func (r *RunRepository) List(limit int) ([]*models.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Outcomes returns the stored outcomes of a run in input order.
//
// References are re-derived from the raw entry text, which classifies deterministically.
func (r *RunRepository) Outcomes(runID string) ([]models.Outcome, error) {
	rows, err := r.db.Query(`
		SELECT position, entry, status, track_id, source, title, artist, score, path, reason, attempts
		FROM run_entries
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run entries: %w", err)
	}
	defer rows.Close()

	var outcomes []models.Outcome
	for rows.Next() {
		var (
			o       models.Outcome
			status  string
			trackID sql.NullInt64
			source  sql.NullString
			title   sql.NullString
			artist  sql.NullString
			score   sql.NullFloat64
			path    sql.NullString
			reason  sql.NullString
		)
		if err := rows.Scan(&o.Position, &o.Entry, &status, &trackID, &source, &title, &artist, &score, &path, &reason, &o.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}

		o.Status = models.Status(status)
		o.Reference = entries.Classify(o.Entry)
		o.Path = path.String
		o.Reason = reason.String
		if trackID.Valid {
			o.Track = &models.ResolvedTrack{
				ID:     trackID.Int64,
				Title:  title.String,
				Artist: artist.String,
				Score:  score.Float64,
				Source: source.String,
			}
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

// Report rebuilds the full report of a stored run.
func (r *RunRepository) Report(id string) (*models.Report, error) {
	run, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	outcomes, err := r.Outcomes(run.ID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		RunID:     run.ID,
		OutDir:    run.OutDir,
		StartedAt: run.StartedAt,
		Cancelled: run.Cancelled,
		Total:     run.Total,
		Outcomes:  outcomes,
	}
	if run.FinishedAt != nil {
		report.FinishedAt = *run.FinishedAt
	}
	return report, nil
}

// Delete removes a run and its entries.
func (r *RunRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM run_entries WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete run entries: %w", err)
	}

	result, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.RunSummary, error) {
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	return run, err
}

// scanRun scans a runs row into a [models.RunSummary]
func scanRun(row rowScanner) (*models.RunSummary, error) {
	var (
		run        models.RunSummary
		finishedAt sql.NullTime
	)

	err := row.Scan(&run.ID, &run.Sequence, &run.OutDir, &run.Total, &run.Written, &run.Skipped,
		&run.Unresolved, &run.Failed, &run.Cancelled, &run.StartedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}

func summarize(report *models.Report, sequence int) *models.RunSummary {
	summary := &models.RunSummary{
		ID:         report.RunID,
		Sequence:   sequence,
		OutDir:     report.OutDir,
		Total:      report.Total,
		Written:    report.Count(models.StatusWritten),
		Skipped:    report.Count(models.StatusSkipped),
		Unresolved: report.Count(models.StatusUnresolved),
		Failed:     report.Failed(),
		Cancelled:  report.Cancelled,
		StartedAt:  report.StartedAt,
	}
	if !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		summary.FinishedAt = &finished
	}
	return summary
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
