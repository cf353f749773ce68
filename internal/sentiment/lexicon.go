package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// negationWindow is how many tokens a negation keeps affecting after it appears
const negationWindow = 3

// negationFactor flips and dampens the polarity of a negated word ("not good" is
// mildly negative, not as negative as "bad")
const negationFactor = -0.5

// Lexicon is an in-process, dictionary based polarity scorer.
// The polarity of a text is the mean polarity of the lexicon words it contains,
// adjusted by preceding intensifiers and negations.
type Lexicon struct {
	words        map[string]float64
	intensifiers map[string]float64
	negations    map[string]struct{}
}

var _ Scorer = (*Lexicon)(nil)

// NewLexicon creates a lexicon scorer with the built-in business news vocabulary
func NewLexicon() *Lexicon {
	return NewLexiconWithWords(defaultWords)
}

// NewLexiconWithWords creates a lexicon scorer with a custom vocabulary.
// Keys are lower-cased and values are clamped to the polarity range.
func NewLexiconWithWords(words map[string]float64) *Lexicon {
	l := &Lexicon{
		words:        make(map[string]float64, len(words)),
		intensifiers: make(map[string]float64, len(defaultIntensifiers)),
		negations:    make(map[string]struct{}, len(defaultNegations)),
	}
	for w, v := range words {
		l.words[strings.ToLower(w)] = Clamp(v)
	}
	for w, v := range defaultIntensifiers {
		l.intensifiers[w] = v
	}
	for _, w := range defaultNegations {
		l.negations[w] = struct{}{}
	}
	return l
}

// Score implements Scorer. The lexicon never fails.
func (l *Lexicon) Score(_ context.Context, text string) (float64, error) {
	return l.Polarity(text), nil
}

// Polarity returns the clamped polarity of text
func (l *Lexicon) Polarity(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var (
		sum        float64
		matched    int
		multiplier = 1.0
		negated    = 0 // remaining tokens under a negation
	)

	for _, tok := range tokens {
		if l.isNegation(tok) {
			negated = negationWindow
			continue
		}
		if factor, ok := l.intensifiers[tok]; ok {
			multiplier *= factor
			continue
		}

		if polarity, ok := l.words[tok]; ok {
			v := polarity * multiplier
			if negated > 0 {
				v *= negationFactor
			}
			sum += Clamp(v)
			matched++
			multiplier = 1.0
			negated = 0
			continue
		}

		// Plain words end intensification and slowly use up the negation window
		multiplier = 1.0
		if negated > 0 {
			negated--
		}
	}

	if matched == 0 {
		return 0
	}
	return Clamp(sum / float64(matched))
}

func (l *Lexicon) isNegation(tok string) bool {
	if _, ok := l.negations[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

// tokenize lower-cases text and splits it into words, keeping apostrophes inside
// words so that contractions such as "didn't" survive
func tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "’", "'")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

var defaultIntensifiers = map[string]float64{
	"very":          1.3,
	"highly":        1.3,
	"extremely":     1.5,
	"significantly": 1.3,
	"massive":       1.4,
	"major":         1.2,
	"hugely":        1.4,
	"slightly":      0.5,
	"somewhat":      0.7,
	"marginally":    0.5,
}

var defaultNegations = []string{
	"not", "no", "never", "without", "cannot", "neither", "nor", "none",
}

var defaultWords = map[string]float64{
	// positive
	"raised":       0.3,
	"raises":       0.3,
	"secured":      0.4,
	"secures":      0.4,
	"funding":      0.2,
	"investment":   0.2,
	"launched":     0.3,
	"launches":     0.3,
	"launch":       0.3,
	"new":          0.14,
	"breakthrough": 0.6,
	"innovative":   0.5,
	"innovation":   0.4,
	"released":     0.1,
	"introduced":   0.1,
	"appointed":    0.2,
	"hired":        0.3,
	"veteran":      0.2,
	"expanded":     0.3,
	"expands":      0.3,
	"expansion":    0.3,
	"growth":       0.4,
	"growing":      0.3,
	"partnered":    0.3,
	"partnership":  0.3,
	"won":          0.5,
	"wins":         0.5,
	"award":        0.5,
	"strong":       0.43,
	"success":      0.5,
	"successful":   0.6,
	"profit":       0.4,
	"profitable":   0.5,
	"best":         1.0,
	"great":        0.8,
	"good":         0.7,
	"excellent":    1.0,
	"positive":     0.23,
	"leading":      0.3,
	"improved":     0.4,
	"boost":        0.4,
	"surge":        0.4,
	"gain":         0.3,
	"gains":        0.3,
	"upgrade":      0.3,
	"milestone":    0.4,
	"approved":     0.3,
	"exciting":     0.6,
	"promising":    0.5,
	"robust":       0.4,

	// negative
	"layoffs":       -0.5,
	"layoff":        -0.5,
	"downsizing":    -0.4,
	"restructuring": -0.2,
	"investigation": -0.4,
	"probe":         -0.4,
	"controversy":   -0.5,
	"accused":       -0.5,
	"fraud":         -0.8,
	"scandal":       -0.7,
	"lawsuit":       -0.5,
	"sued":          -0.5,
	"fined":         -0.4,
	"penalty":       -0.4,
	"loss":          -0.4,
	"losses":        -0.4,
	"decline":       -0.3,
	"declined":      -0.3,
	"drop":          -0.3,
	"fell":          -0.3,
	"cuts":          -0.3,
	"weak":          -0.4,
	"bad":           -0.7,
	"poor":          -0.4,
	"worst":         -1.0,
	"terrible":      -1.0,
	"failure":       -0.6,
	"failed":        -0.5,
	"breach":        -0.6,
	"bankruptcy":    -0.8,
	"bankrupt":      -0.8,
	"crisis":        -0.6,
	"warning":       -0.3,
	"delayed":       -0.3,
	"recall":        -0.4,
	"facing":        -0.1,
	"negative":      -0.3,
	"resigned":      -0.3,
	"shutdown":      -0.5,
	"downgrade":     -0.4,
	"struggling":    -0.5,
}
