package http

import (
	"net/http"
	"strconv"
	"strings"

	"leadscout/internal/directory"
	apierrors "leadscout/internal/errors"
	"leadscout/internal/leads"
	"leadscout/pkg/contracts/domain"
)

// MaxTopN caps the n parameter of /leads/top and the top_n scoring field
const MaxTopN = 1000

// GenerateRequest is the body of POST /leads/dataset/generate
type GenerateRequest struct {
	Count int   `json:"count" validate:"gte=0,lte=10000"`
	Seed  int64 `json:"seed"`
}

// ScoreRequest is the body of POST /leads/score
type ScoreRequest struct {
	Records []domain.NewsRecord `json:"records" validate:"max=10000"`
	Config  *ScoringRequest     `json:"config,omitempty"`
	TopN    int                 `json:"top_n" validate:"gte=0,lte=1000"`
}

// ScoringRequest is a per-request scoring policy. Omitted fields fall back to
// the default policy; a weight sent as 0 is kept.
type ScoringRequest struct {
	WeightingMode     leads.WeightingMode         `json:"weighting_mode" validate:"omitempty,oneof=unweighted weighted"`
	SentimentWeight   *float64                    `json:"sentiment_weight,omitempty" validate:"omitempty,gte=0"`
	OnUnknownCategory leads.UnknownCategoryPolicy `json:"on_unknown_category" validate:"omitempty,oneof=fail treat_as_neutral"`
}

// Policy resolves the request into a complete scoring config. A nil request
// means the service policy.
func (c *ScoringRequest) Policy() *leads.ScoringConfig {
	if c == nil {
		return nil
	}

	cfg := leads.DefaultScoringConfig()
	if c.WeightingMode != "" {
		cfg.WeightingMode = c.WeightingMode
	}
	if c.SentimentWeight != nil {
		cfg.SentimentWeight = *c.SentimentWeight
	}
	if c.OnUnknownCategory != "" {
		cfg.OnUnknownCategory = c.OnUnknownCategory
	}
	return &cfg
}

// ScoreResponse is the result of a stateless scoring run
type ScoreResponse struct {
	Records   []domain.ScoredRecord     `json:"records"`
	Companies []domain.CompanyAggregate `json:"companies"`
	Top       []domain.ScoredRecord     `json:"top"`
	Summary   leads.Summary             `json:"summary"`
	Config    leads.ScoringConfig       `json:"config"`
}

// LeadFilterRequest carries the directory lead filter from the query string
type LeadFilterRequest struct {
	Sizes        []string `query:"size"`
	Countries    []string `query:"country"`
	MinEmployees int      `query:"min_employees" validate:"gte=0"`
	MinFollowers int      `query:"min_followers" validate:"gte=0"`
}

// Filter converts the request into a directory filter
func (f LeadFilterRequest) Filter() directory.LeadFilter {
	return directory.LeadFilter{
		Sizes:        f.Sizes,
		Countries:    f.Countries,
		MinEmployees: f.MinEmployees,
		MinFollowers: f.MinFollowers,
	}
}

// parseLeadFilter reads the filter from r. Repeated and comma separated values
// are both accepted for size and country.
func parseLeadFilter(r *http.Request) (LeadFilterRequest, error) {
	q := r.URL.Query()
	req := LeadFilterRequest{
		Sizes:     splitValues(q["size"]),
		Countries: splitValues(q["country"]),
	}

	var err error
	if req.MinEmployees, err = intParam(q.Get("min_employees"), "min_employees"); err != nil {
		return req, err
	}
	if req.MinFollowers, err = intParam(q.Get("min_followers"), "min_followers"); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(value, name string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apierrors.ErrValidation(name, name+" must be a valid integer")
	}
	return n, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
