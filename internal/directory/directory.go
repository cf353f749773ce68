package directory

import (
	"fmt"
	"sort"
	"strings"

	"leadscout/pkg/contracts/domain"
)

// TopIndustriesLimit is how many industries the dashboard ranks
const TopIndustriesLimit = 10

// SearchField selects the profile attribute matched by Search
type SearchField string

const (
	SearchByName   SearchField = "name"
	SearchBySphere SearchField = "sphere"
)

// ParseSearchField converts a query value to a SearchField. Empty means name.
func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(strings.ToLower(strings.TrimSpace(s))) {
	case "", SearchByName:
		return SearchByName, nil
	case SearchBySphere, "industry":
		return SearchBySphere, nil
	}
	return "", fmt.Errorf("unsupported search field %q", s)
}

// LeadFilter narrows the directory to companies worth contacting.
// Empty lists match everything.
type LeadFilter struct {
	Sizes        []string `json:"sizes,omitempty"`
	Countries    []string `json:"countries,omitempty"`
	MinEmployees int      `json:"min_employees"`
	MinFollowers int      `json:"min_followers"`
}

// Dashboard summarises the directory
type Dashboard struct {
	TotalCompanies      int                  `json:"total_companies"`
	MostCommonSize      string               `json:"most_common_size"`
	TopIndustry         string               `json:"top_industry"`
	SizeDistribution    []domain.CountBucket `json:"size_distribution"`
	TopIndustries       []domain.CountBucket `json:"top_industries"`
	CountryDistribution []domain.CountBucket `json:"country_distribution"`
}

// Directory is an immutable set of company profiles
type Directory struct {
	profiles []domain.CompanyProfile
	byName   map[string]int
}

// New creates a directory from a copy of profiles. When names repeat, lookups
// resolve to the first occurrence.
func New(profiles []domain.CompanyProfile) *Directory {
	d := &Directory{
		profiles: make([]domain.CompanyProfile, len(profiles)),
		byName:   make(map[string]int, len(profiles)),
	}
	copy(d.profiles, profiles)
	for i, p := range d.profiles {
		if _, seen := d.byName[p.Name]; !seen {
			d.byName[p.Name] = i
		}
	}
	return d
}

// Len returns the number of profiles
func (d *Directory) Len() int {
	return len(d.profiles)
}

// All returns a copy of every profile in load order
func (d *Directory) All() []domain.CompanyProfile {
	return d.collect(func(domain.CompanyProfile) bool { return true })
}

// Lookup finds a profile by exact name
func (d *Directory) Lookup(name string) (domain.CompanyProfile, bool) {
	i, ok := d.byName[name]
	if !ok {
		return domain.CompanyProfile{}, false
	}
	return d.profiles[i], true
}

// Search returns the profiles whose field contains term, ignoring case.
// An empty term returns every profile.
func (d *Directory) Search(field SearchField, term string) []domain.CompanyProfile {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return d.All()
	}

	return d.collect(func(p domain.CompanyProfile) bool {
		value := p.Name
		if field == SearchBySphere {
			value = p.Sphere
		}
		return strings.Contains(strings.ToLower(value), term)
	})
}

// Filter returns the profiles matching every criterion of f
func (d *Directory) Filter(f LeadFilter) []domain.CompanyProfile {
	sizes := toSet(f.Sizes, false)
	countries := toSet(f.Countries, true)

	return d.collect(func(p domain.CompanyProfile) bool {
		if len(sizes) > 0 {
			if _, ok := sizes[p.CompanySize]; !ok {
				return false
			}
		}
		if len(countries) > 0 {
			if _, ok := countries[strings.ToUpper(p.CountryCode)]; !ok {
				return false
			}
		}
		return p.Employees >= f.MinEmployees && p.Followers >= f.MinFollowers
	})
}

// Dashboard computes the directory overview. Distributions are ordered by count
// descending, then label ascending; empty values are not counted.
func (d *Directory) Dashboard() Dashboard {
	sizes := make(map[string]int)
	industries := make(map[string]int)
	countries := make(map[string]int)
	for _, p := range d.profiles {
		countValue(sizes, p.CompanySize)
		countValue(industries, p.Industries)
		countValue(countries, p.CountryCode)
	}

	dash := Dashboard{
		TotalCompanies:      len(d.profiles),
		SizeDistribution:    buckets(sizes),
		TopIndustries:       buckets(industries),
		CountryDistribution: buckets(countries),
	}
	if len(dash.SizeDistribution) > 0 {
		dash.MostCommonSize = dash.SizeDistribution[0].Label
	}
	if len(dash.TopIndustries) > 0 {
		dash.TopIndustry = dash.TopIndustries[0].Label
	}
	if len(dash.TopIndustries) > TopIndustriesLimit {
		dash.TopIndustries = dash.TopIndustries[:TopIndustriesLimit]
	}
	return dash
}

func (d *Directory) collect(keep func(domain.CompanyProfile) bool) []domain.CompanyProfile {
	out := make([]domain.CompanyProfile, 0)
	for _, p := range d.profiles {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func countValue(counts map[string]int, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	counts[value]++
}

func buckets(counts map[string]int) []domain.CountBucket {
	out := make([]domain.CountBucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.CountBucket{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func toSet(values []string, upper bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if upper {
			v = strings.ToUpper(v)
		}
		set[v] = struct{}{}
	}
	return set
}
