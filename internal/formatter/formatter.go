// package formatter renders lyric files and batch reports in various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

// unsafeFilenameChars matches runs of characters rejected by common filesystems.
var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// SafeFilename replaces unsafe character runs with "_" and trims; an empty result becomes "unknown".
func SafeFilename(name string) string {
	name = strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(name, "_"))
	if name == "" {
		return "unknown"
	}
	return name
}

// LyricFilename returns "{title} - {artist}.lrc" for track, sanitized.
func LyricFilename(track models.ResolvedTrack) string {
	return SafeFilename(fmt.Sprintf("%s - %s", track.Title, track.Artist)) + ".lrc"
}

// ComposeLyrics selects the text written for payload under the given translation mode.
//
//   - append: primary, a blank line, then the translation when present
//   - none: primary only, falling back to the translation when there is no primary
//   - prefer: translation when present, else primary
//
// Unknown modes behave like append.
func ComposeLyrics(payload models.LyricPayload, mode string) string {
	primary := strings.TrimSpace(payload.Primary)
	translated := strings.TrimSpace(payload.Translated)

	var text string
	switch mode {
	case shared.TranslationNone:
		text = primary
		if text == "" {
			text = translated
		}
	case shared.TranslationPrefer:
		text = translated
		if text == "" {
			text = primary
		}
	default:
		switch {
		case primary == "":
			text = translated
		case translated == "":
			text = primary
		default:
			text = primary + "\n\n" + translated
		}
	}

	if text == "" {
		return ""
	}
	return text + "\n"
}
