package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/lrcx/internal/formatter"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

// Writer persists lyric payloads as .lrc files in one directory, never overwriting.
type Writer struct {
	outDir      string
	translation string
}

// NewWriter creates a [Writer] for outDir using the given translation mode.
func NewWriter(outDir, translation string) *Writer {
	if translation == "" {
		translation = shared.TranslationAppend
	}
	return &Writer{outDir: outDir, translation: translation}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.outDir
}

// Prepare creates the output directory. Failure wraps [shared.ErrOutputDir].
func (w *Writer) Prepare() error {
	if w.outDir == "" {
		return fmt.Errorf("%w: path is empty", shared.ErrOutputDir)
	}
	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputDir, err)
	}
	return nil
}

// Path returns where track's lyrics are written.
func (w *Writer) Path(track models.ResolvedTrack) string {
	return filepath.Join(w.outDir, formatter.LyricFilename(track))
}

// Write creates the lyric file for track.
//
// When the file already exists it is left untouched and skipped is true.
func (w *Writer) Write(track models.ResolvedTrack, payload models.LyricPayload) (path string, skipped bool, err error) {
	path = w.Path(track)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return path, true, nil
		}
		return path, false, fmt.Errorf("failed to create lyric file: %w", err)
	}

	text := formatter.ComposeLyrics(payload, w.translation)
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(path)
		return path, false, fmt.Errorf("failed to write lyric file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return path, false, fmt.Errorf("failed to write lyric file: %w", err)
	}
	return path, false, nil
}
