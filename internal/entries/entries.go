package entries

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

// idInURL matches the query parameter NetEase share links use, including #/song?id= fragments.
var idInURL = regexp.MustCompile(`[?&]id=(\d+)`)

// titleArtistSeparator splits at the first hyphen, en dash or em dash.
var titleArtistSeparator = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

const bom = "\ufeff"

// Collect gathers entries from positional args, the comma separated inputs string and the file at path, in that order.
//
// Tokens are trimmed, blanks dropped and exact duplicates removed keeping the first occurrence.
// An empty path skips the file. An unreadable file is an error.
func Collect(args []string, inputs, path string) ([]string, error) {
	var raw []string
	raw = append(raw, args...)

	if inputs != "" {
		raw = append(raw, strings.Split(inputs, ",")...)
	}

	if path != "" {
		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		raw = append(raw, lines...)
	}

	return Dedupe(raw), nil
}

// Dedupe trims tokens, drops blanks and removes exact duplicates preserving order.
func Dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	ordered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		ordered = append(ordered, tok)
	}
	return ordered
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open input file: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, bom)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read input file: %v", shared.ErrInvalidInput, err)
	}
	return lines, nil
}

// Classify maps a raw token onto a [models.Reference]. It never fails.
func Classify(raw string) models.Reference {
	s := strings.TrimSpace(raw)

	if id, ok := parseID(s); ok {
		return models.Reference{Kind: models.TrackID, ID: id}
	}

	if m := idInURL.FindStringSubmatch(s); m != nil {
		if id, ok := parseID(m[1]); ok {
			return models.Reference{Kind: models.TrackID, ID: id}
		}
	}

	if m := titleArtistSeparator.FindStringSubmatch(s); m != nil {
		title, artist := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if title != "" && artist != "" {
			return models.Reference{Kind: models.FreeText, Title: title, Artist: artist}
		}
	}

	return models.Reference{Kind: models.FreeText, Title: s}
}

// parseID accepts only ASCII digit strings that fit a positive int64.
func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
