package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/desertthunder/lrcx/internal/entries"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/services"
	"github.com/desertthunder/lrcx/internal/shared"
	"github.com/desertthunder/lrcx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// resolution is one row of the resolve command's output.
type resolution struct {
	Entry string                `json:"entry"`
	Kind  string                `json:"kind"`
	Track *models.ResolvedTrack `json:"track,omitempty"`
	Note  string                `json:"note"`
}

// note mirrors the match_note_or_score column of the resolved report.
func (res resolution) note(err error) string {
	switch {
	case err != nil:
		return "unresolved"
	case res.Track.Source == models.SourceID:
		return "id_or_url"
	default:
		return strconv.FormatFloat(res.Track.Score, 'f', 1, 64)
	}
}

// newResolver builds a paced resolver from settings.
func (r *Runner) newResolver(cmd *cli.Command, settings shared.FetchConfig) *tasks.Resolver {
	catalog := services.NewPacedCatalog(r.service(cmd), settings.SleepDuration())
	return tasks.NewResolver(catalog, scorerFor(settings), settings.SearchLimit, r.logger)
}

// Resolve runs only the resolution stage and prints which song each entry maps to.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	raw, err := r.collectEntries(cmd)
	if err != nil {
		return err
	}

	settings, err := r.fetchSettings(cmd)
	if err != nil {
		return err
	}
	resolver := r.newResolver(cmd, settings)

	rows := make([]resolution, 0, len(raw))
	for i, entry := range raw {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("resolve cancelled: %w", err)
		}

		ref := entries.Classify(entry)
		row := resolution{Entry: entry, Kind: ref.Kind.String()}

		track, err := resolver.Resolve(ctx, ref)
		if err == nil {
			row.Track = &track
		} else {
			r.logger.Debug("unresolved", "entry", entry, "error", err)
		}
		row.Note = row.note(err)
		rows = append(rows, row)

		if !cmd.Bool("json") {
			if row.Track == nil {
				r.writePlain("[%d/%d] %s -> unresolved\n", i+1, len(raw), entry)
			} else {
				r.writePlain("[%d/%d] %s -> %d %s - %s (%s)\n", i+1, len(raw), entry, track.ID, track.Title, track.Artist, row.Note)
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}
	return nil
}

// Search prints the candidates for a query in descending score order.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	settings, err := r.fetchSettings(cmd)
	if err != nil {
		return err
	}

	ref := entries.Classify(query)
	if ref.Kind != models.FreeText {
		ref = models.Reference{Kind: models.FreeText, Title: query}
	}

	r.logger.Info("searching catalog", "query", ref.Query())
	matches, err := r.newResolver(cmd, settings).Rank(ctx, ref)
	if err != nil {
		return err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if cmd.Bool("json") {
		return r.writeJSON(matches, cmd.Bool("pretty"))
	}

	if len(matches) == 0 {
		r.writePlain("No results for %q\n", ref.Query())
		return nil
	}

	threshold := scorerFor(settings).Threshold()
	r.writePlainHeader(fmt.Sprintf("Results for %q (threshold %.1f)", ref.Query(), threshold))
	for _, m := range matches {
		mark := " "
		if m.Score >= threshold {
			mark = "✓"
		}
		r.writePlain("%s %6.1f  %-10d %s - %s", mark, m.Score, m.Candidate.ID, m.Candidate.Title, m.Candidate.Artist)
		if m.Candidate.Album != "" {
			r.writePlain(" [%s]", m.Candidate.Album)
		}
		if d := m.Candidate.DurationMS; d > 0 {
			r.writePlain(" %s", formatDuration(d))
		}
		r.writePlain("\n")
	}
	return nil
}

func formatDuration(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
