// Package sentiment turns headline text into a polarity score in [-1, 1].
//
// Two scorers are provided:
//
//   - Lexicon, an in-process dictionary scorer with intensifier and negation
//     handling. It is deterministic and never fails, which makes it the default.
//   - HTTPScorer, a client for an external model service. Every call is bounded by
//     a timeout, throttled by a token bucket and guarded by a circuit breaker, and
//     can fall back to another Scorer when the model is unavailable.
//
// Both satisfy the Scorer interface consumed by the lead scoring engine:
//
//	scorer := sentiment.NewLexicon()
//	polarity, _ := scorer.Score(ctx, "CloudForge secured funding in SaaS sector")
//
// Scores are always clamped to the polarity range and empty text scores 0.
package sentiment
