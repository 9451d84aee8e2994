// Package matcher scores catalog search candidates against a free-text query.
//
// Scoring lives behind the [Scorer] interface so weights and the acceptance threshold can be tuned
// without touching the resolver. [WeightedScorer] is the default implementation.
package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/desertthunder/lrcx/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scorer rates how well a candidate matches a free-text reference.
type Scorer interface {
	Score(ref models.Reference, c models.Candidate) float64
	Threshold() float64
}

// Weights holds the tunable scoring parameters.
type Weights struct {
	ExactTitle        float64 // base score when normalized titles are equal
	ArtistBonus       float64 // candidate artist equals the query artist
	ContainsBonus     float64 // candidate artist list contains the query artist
	VariantBonus      float64 // one of the candidate artists is close to the query artist
	VariantRatio      float64 // minimum similarity for a variant
	ArtistPenalty     float64 // candidate artist present but different
	FuzzyPenaltyScale float64 // fraction of ArtistPenalty applied in fuzzy mode; 0 waives it
	Threshold         float64 // minimum accepted total
}

// DefaultWeights returns the weights used by the fetch command.
func DefaultWeights() Weights {
	return Weights{
		ExactTitle:        100,
		ArtistBonus:       20,
		ContainsBonus:     15,
		VariantBonus:      10,
		VariantRatio:      0.7,
		ArtistPenalty:     25,
		FuzzyPenaltyScale: 0,
		Threshold:         60,
	}
}

// WeightedScorer implements [Scorer] with title similarity plus artist adjustments.
type WeightedScorer struct {
	weights Weights
	fuzzy   bool
}

// NewScorer creates a [WeightedScorer]. Fuzzy mode scales the artist mismatch penalty by FuzzyPenaltyScale.
func NewScorer(w Weights, fuzzy bool) *WeightedScorer {
	return &WeightedScorer{weights: w, fuzzy: fuzzy}
}

// Threshold returns the minimum score a candidate needs to be accepted.
func (s *WeightedScorer) Threshold() float64 {
	return s.weights.Threshold
}

// Score returns the total score of c against ref.
func (s *WeightedScorer) Score(ref models.Reference, c models.Candidate) float64 {
	w := s.weights
	qTitle, cTitle := Normalize(ref.Title), Normalize(c.Title)

	var score float64
	if qTitle != "" && qTitle == cTitle {
		score = w.ExactTitle
	} else {
		score = w.ExactTitle * Ratio(qTitle, cTitle)
	}

	qArtist := Normalize(ref.Artist)
	if qArtist == "" {
		return score
	}

	cArtist := Normalize(c.Artist)
	switch {
	case cArtist == qArtist:
		score += w.ArtistBonus
	case strings.Contains(cArtist, qArtist):
		score += w.ContainsBonus
	case s.isVariant(qArtist, c.Artist):
		score += w.VariantBonus
	case cArtist != "":
		penalty := w.ArtistPenalty
		if s.fuzzy {
			penalty *= w.FuzzyPenaltyScale
		}
		score -= penalty
	}
	return score
}

// artistSeparator splits joined artist lists such as "A & B", "A/B" or "A、B".
var artistSeparator = regexp.MustCompile(`[,&/、和+\s]+`)

func (s *WeightedScorer) isVariant(qArtist, candidateArtists string) bool {
	for _, part := range artistSeparator.Split(candidateArtists, -1) {
		part = Normalize(part)
		if part == "" {
			continue
		}
		if Ratio(qArtist, part) >= s.weights.VariantRatio {
			return true
		}
	}
	return false
}

// Match is a scored candidate.
type Match struct {
	Candidate models.Candidate `json:"candidate"`
	Score     float64          `json:"score"`
	Position  int              `json:"position"`
}

// Rank scores every candidate in search order.
func Rank(s Scorer, ref models.Reference, candidates []models.Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		matches = append(matches, Match{Candidate: c, Score: s.Score(ref, c), Position: i})
	}
	return matches
}

// Best scores candidates and picks the highest, keeping the earliest on ties.
//
// ok is false when there are no candidates or the best score is below the threshold; best is still
// returned in the latter case so callers can report how close it came.
func Best(s Scorer, ref models.Reference, candidates []models.Candidate) (best Match, ok bool) {
	return Pick(Rank(s, ref, candidates), s.Threshold())
}

// Pick returns the highest scoring match and whether it clears threshold.
// An empty slice yields a Match with Position -1.
func Pick(matches []Match, threshold float64) (Match, bool) {
	if len(matches) == 0 {
		return Match{Position: -1}, false
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best, best.Score >= threshold
}

// Normalize folds case, strips accents and drops everything but letters and digits.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Ratio returns 2·LCS(a, b) / (|a| + |b|) over runes, in [0, 1].
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb))
}

// lcs computes the longest common subsequence length with two rolling rows.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
