// Package leads turns dated company news into lead scores.
//
// A record is scored as a base value for its news type plus its headline
// sentiment, optionally damped by a weight:
//
//	funding +3, product +2, hire +1, layoff -2, scandal -2, neutral 0
//	unweighted: base + sentiment
//	weighted:   base + sentiment*weight (default weight 0.5)
//
// Two independent classifiers exist and use different scales. ClassifyHeadline
// maps a single record score onto High/Mid/Neutral/Caution, while
// ClassifyCompany maps a company's summed score onto Low/Medium/High/Critical.
//
// All functions are free of side effects on their inputs. Engine.ScoreAll may
// compute sentiment concurrently but only aggregates once every record has been
// scored.
package leads
