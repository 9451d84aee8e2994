package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/desertthunder/lrcx/internal/formatter"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/repositories"
	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/urfave/cli/v3"
)

// openHistory opens the history database and applies pending migrations.
func (r *Runner) openHistory() (*sql.DB, error) {
	cfg := r.config.History

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// recordHistory stores report when history is enabled in config or with --history.
//
// Failures are logged; the batch result stands on its own.
func (r *Runner) recordHistory(cmd *cli.Command, report *models.Report) {
	if !r.config.History.Enabled && !cmd.Bool("history") {
		return
	}

	db, err := r.openHistory()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return
	}
	defer db.Close()

	summary, err := repositories.NewRunRepository(db).Save(report)
	if err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return
	}
	r.logger.Info("run recorded", "run", summary.Sequence, "id", summary.ID)
}

// findRun looks a run up by its number or ID.
func findRun(repo *repositories.RunRepository, ref string) (*models.RunSummary, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: run", shared.ErrMissingArgument)
	}
	if sequence, err := strconv.Atoi(ref); err == nil {
		return repo.GetBySequence(sequence)
	}
	return repo.Get(ref)
}

// HistoryList prints recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if runs == nil {
			runs = []*models.RunSummary{}
		}
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}

	r.writePlainHeader("Recorded Runs")
	for _, run := range runs {
		status := ""
		if run.Cancelled {
			status = " (cancelled)"
		}
		r.writePlain("#%-4d %s  %d entries: %d written, %d skipped, %d unresolved, %d failed%s\n",
			run.Sequence, run.StartedAt.Local().Format("2006-01-02 15:04"), run.Total,
			run.Written, run.Skipped, run.Unresolved, run.Failed, status)
	}
	return nil
}

// HistoryShow prints the outcomes of one recorded run, optionally writing them as a report file.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	run, err := findRun(repo, cmd.StringArg("run"))
	if err != nil {
		return err
	}
	report, err := repo.Report(run.ID)
	if err != nil {
		return err
	}

	if path := cmd.String("report"); path != "" {
		files, err := formatter.WriteReport(report, path)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.logger.Info("report written", "files", files)
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d", run.Sequence))
	r.writePlain("%s\n", formatter.SummaryLine(report))
	r.writePlain("Output: %s\n\n", report.OutDir)
	for _, o := range report.Outcomes {
		r.writePlain("%s\n", formatter.OutcomeLine(o, report.Total))
	}
	return nil
}

// HistoryDelete removes a recorded run.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	run, err := findRun(repo, cmd.StringArg("run"))
	if err != nil {
		return err
	}

	if err := repo.Delete(run.ID); err != nil {
		return err
	}
	r.writePlain("✓ Deleted run #%d\n", run.Sequence)
	return nil
}
