package domain

// NewsType is the category of a news headline
type NewsType string

const (
	NewsTypeFunding NewsType = "funding"
	NewsTypeProduct NewsType = "product"
	NewsTypeHire    NewsType = "hire"
	NewsTypeLayoff  NewsType = "layoff"
	NewsTypeScandal NewsType = "scandal"
	NewsTypeNeutral NewsType = "neutral"
)

// AllNewsTypes returns every known news category in a fixed order
func AllNewsTypes() []NewsType {
	return []NewsType{
		NewsTypeFunding,
		NewsTypeProduct,
		NewsTypeHire,
		NewsTypeLayoff,
		NewsTypeScandal,
		NewsTypeNeutral,
	}
}

// IsValid reports whether the news type is one of the known categories.
// Matching is exact; callers normalise case and whitespace at the ingestion boundary.
func (t NewsType) IsValid() bool {
	switch t {
	case NewsTypeFunding, NewsTypeProduct, NewsTypeHire,
		NewsTypeLayoff, NewsTypeScandal, NewsTypeNeutral:
		return true
	}
	return false
}

// String returns the string representation of the news type
func (t NewsType) String() string {
	return string(t)
}

// NewsRecord is a single dated headline about a company
type NewsRecord struct {
	Date     Date     `json:"date"`
	Company  string   `json:"company" validate:"required,max=200"`
	Headline string   `json:"headline" validate:"max=1000"`
	NewsType NewsType `json:"news_type" validate:"required"`
	Industry string   `json:"industry,omitempty" validate:"max=200"`
}

// HeadlineTier is the priority of a single scored headline.
// It uses a different scale than CompanyPriority and must not be mixed with it.
type HeadlineTier string

const (
	HeadlineTierHigh    HeadlineTier = "High"
	HeadlineTierMid     HeadlineTier = "Mid"
	HeadlineTierNeutral HeadlineTier = "Neutral"
	HeadlineTierCaution HeadlineTier = "Caution"
)

// Label returns the human readable label shown in dashboards
func (t HeadlineTier) Label() string {
	switch t {
	case HeadlineTierHigh:
		return "High Potential Lead"
	case HeadlineTierMid:
		return "Mid Potential Lead"
	case HeadlineTierNeutral:
		return "Neutral Lead"
	case HeadlineTierCaution:
		return "Caution"
	}
	return string(t)
}

// ScoredRecord is a news record enriched with sentiment and lead score
type ScoredRecord struct {
	NewsRecord

	// RawNewsType keeps the original category when an unknown one was scored as neutral
	RawNewsType string       `json:"raw_news_type,omitempty"`
	Sentiment   float64      `json:"sentiment"`
	LeadScore   float64      `json:"lead_score"`
	Tier        HeadlineTier `json:"tier"`
}

// CompanyPriority is the priority bucket of a company's summed lead score
type CompanyPriority string

const (
	CompanyPriorityLow      CompanyPriority = "Low"
	CompanyPriorityMedium   CompanyPriority = "Medium"
	CompanyPriorityHigh     CompanyPriority = "High"
	CompanyPriorityCritical CompanyPriority = "Critical"
)

// AllCompanyPriorities returns the priorities from lowest to highest
func AllCompanyPriorities() []CompanyPriority {
	return []CompanyPriority{
		CompanyPriorityLow,
		CompanyPriorityMedium,
		CompanyPriorityHigh,
		CompanyPriorityCritical,
	}
}

// CompanyAggregate is the per-company rollup of scored records
type CompanyAggregate struct {
	Company      string          `json:"company"`
	TotalScore   float64         `json:"total_score"`
	ArticleCount int             `json:"article_count"`
	LatestNews   Date            `json:"latest_news"`
	Priority     CompanyPriority `json:"priority"`
}
