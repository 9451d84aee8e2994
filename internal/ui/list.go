package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lrcx/internal/models"
)

var _ list.Item = outcomeItem{}

// outcomeItem wraps [models.Outcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.Outcome
}

func (i outcomeItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.outcome.Entry, i.outcome.Status)
}

func (i outcomeItem) Title() string {
	if t := i.outcome.Track; t != nil {
		return fmt.Sprintf("%d. %s - %s", i.outcome.Position, t.Title, t.Artist)
	}
	return fmt.Sprintf("%d. %s", i.outcome.Position, i.outcome.Entry)
}

func (i outcomeItem) Description() string {
	status := styles.Status(i.outcome.Status).Render(string(i.outcome.Status))
	switch {
	case i.outcome.Reason != "" && i.outcome.Status != models.StatusSkipped:
		return fmt.Sprintf("%s • %s", status, i.outcome.Reason)
	case i.outcome.Path != "":
		return fmt.Sprintf("%s • %s", status, i.outcome.Path)
	default:
		return status
	}
}

func outcomeItems(outcomes []models.Outcome) []list.Item {
	items := make([]list.Item, len(outcomes))
	for i, o := range outcomes {
		items[i] = outcomeItem{outcome: o}
	}
	return items
}
