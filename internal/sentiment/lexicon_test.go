package sentiment

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLexicon_Polarity tests polarity of typical headlines
func TestLexicon_Polarity(t *testing.T) {
	lex := NewLexicon()

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{name: "empty text", text: "", expected: 0},
		{name: "whitespace only", text: " \t\n  ", expected: 0},
		{name: "no known words", text: "TechNova met analysts in IoT", expected: 0},
		{name: "single positive word", text: "TechNova raised $XX million in AI/ML sector", expected: 0.3},
		{name: "single negative word", text: "ByteCraft announced layoffs in SaaS sector", expected: -0.5},
		{name: "mean of words", text: "SecureNet facing investigation in Fintech sector", expected: -0.25},
		{name: "intensifier", text: "very good", expected: 0.91},
		{name: "intensifier clamps", text: "extremely excellent", expected: 1.0},
		{name: "negation flips and dampens", text: "not good", expected: -0.35},
		{name: "contraction negation", text: "results weren't good", expected: -0.35},
		{name: "case insensitive", text: "BREAKTHROUGH", expected: 0.6},
		{name: "negation window expires", text: "no news today about this good deal", expected: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, lex.Polarity(tt.text), 1e-9)
		})
	}
}

// TestLexicon_ScoreContract tests the Scorer contract
func TestLexicon_ScoreContract(t *testing.T) {
	lex := NewLexicon()
	ctx := context.Background()

	t.Run("empty is neutral", func(t *testing.T) {
		score, err := lex.Score(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 0.0, score)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "QuantumLeap introduced breakthrough in Biotech sector despite controversy"
		first, err := lex.Score(ctx, text)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			again, err := lex.Score(ctx, text)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("always within range", func(t *testing.T) {
		vocab := make([]string, 0, len(defaultWords)+len(defaultIntensifiers)+4)
		for w := range defaultWords {
			vocab = append(vocab, w)
		}
		for w := range defaultIntensifiers {
			vocab = append(vocab, w)
		}
		vocab = append(vocab, "not", "never", "didn't", "sector")

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 500; i++ {
			n := rng.Intn(12)
			words := make([]string, n)
			for j := range words {
				words[j] = vocab[rng.Intn(len(vocab))]
			}
			score, err := lex.Score(ctx, strings.Join(words, " "))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, MinPolarity)
			assert.LessOrEqual(t, score, MaxPolarity)
		}
	})
}

// TestNewLexiconWithWords tests custom vocabularies
func TestNewLexiconWithWords(t *testing.T) {
	lex := NewLexiconWithWords(map[string]float64{
		"Moon":  5,
		"crash": -0.8,
	})

	assert.Equal(t, 1.0, lex.Polarity("to the moon"))
	assert.InDelta(t, -0.8, lex.Polarity("crash"), 1e-9)
	assert.InDelta(t, 0.1, lex.Polarity("moon crash"), 1e-9)
}

// TestClamp tests the polarity clamp
func TestClamp(t *testing.T) {
	assert.Equal(t, -1.0, Clamp(-3))
	assert.Equal(t, 1.0, Clamp(2.5))
	assert.Equal(t, 0.25, Clamp(0.25))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
	assert.Equal(t, 1.0, Clamp(math.Inf(1)))
}

func TestTokenize(t *testing.T) {
	assert.Nil(t, tokenize("   "))
	assert.Equal(t, []string{"ai", "ml", "sector"}, tokenize("AI/ML sector"))
	assert.Equal(t, []string{"didn't", "win"}, tokenize("Didn’t win!"))
	assert.Equal(t, []string{"xx", "million"}, tokenize("$XX million"))
}
