package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lrcx/internal/entries"
	"github.com/desertthunder/lrcx/internal/formatter"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/desertthunder/lrcx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Fetch resolves every entry, downloads its lyrics and writes one .lrc file per song.
//
// Entry failures only show up in the summary and report; a cancelled batch prints the partial summary and
// returns the cancellation error so the process exits non-zero.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	raw, err := r.collectEntries(cmd)
	if err != nil {
		return err
	}

	settings, err := r.fetchSettings(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("starting batch", "entries", len(raw), "outdir", settings.OutDir, "fuzzy", settings.Fuzzy)

	var report *models.Report
	var runErr error
	switch {
	case cmd.Bool("tui"):
		report, runErr = r.runTUI(ctx, cmd, settings, raw)
	case cmd.Bool("json"):
		report, runErr = r.newEngine(cmd, settings, nil).Run(ctx, raw)
	default:
		report, runErr = r.newEngine(cmd, settings, r.printProgress()).Run(ctx, raw)
	}
	if report == nil {
		return runErr
	}

	r.recordHistory(cmd, report)

	if path := cmd.String("report"); path != "" {
		files, err := formatter.WriteReport(report, path)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.logger.Info("report written", "files", files)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		r.printSummary(report)
	}

	return runErr
}

// collectEntries gathers the positional arguments, --inputs and --input into one de-duplicated list.
func (r *Runner) collectEntries(cmd *cli.Command) ([]string, error) {
	raw, err := entries.Collect(cmd.Args().Slice(), cmd.String("inputs"), cmd.String("input"))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: pass entries as arguments, --inputs or --input", shared.ErrNoEntries)
	}
	return raw, nil
}

// printProgress writes each terminal transition as one line, the way the batch log reads.
func (r *Runner) printProgress() tasks.Observer {
	return tasks.ObserverFunc(func(update tasks.ProgressUpdate) {
		if update.Terminal() {
			r.writePlain("%s\n", formatter.OutcomeLine(*update.Outcome, update.Total))
			return
		}
		r.logger.Debug(update.Message, "stage", update.Stage)
	})
}

func (r *Runner) printSummary(report *models.Report) {
	r.writePlain("\n")
	if report.Cancelled {
		r.writePlainHeader("Batch Cancelled")
	} else {
		r.writePlainHeader("Batch Complete")
	}
	r.writePlain("%s\n", formatter.SummaryLine(report))
	r.writePlain("Output: %s\n", report.OutDir)
	if report.Cancelled {
		r.writePlain("Not processed: %d\n", report.Pending())
	}

	var failed []models.Outcome
	for _, o := range report.Outcomes {
		switch o.Status {
		case models.StatusUnresolved, models.StatusFetchFailed, models.StatusWriteFailed:
			failed = append(failed, o)
		}
	}
	if len(failed) > 0 {
		r.writePlain("\nNeeds attention (%d):\n", len(failed))
		for _, o := range failed {
			r.writePlain("  - %s: %s\n", o.Entry, o.Reason)
		}
	}
}
