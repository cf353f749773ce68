package domain

import "time"

// CompanyProfile represents an entry of the company directory
type CompanyProfile struct {
	Name        string `json:"name" validate:"required,max=200"`
	CountryCode string `json:"country_code,omitempty"`
	Industries  string `json:"industries,omitempty"`
	Sphere      string `json:"sphere,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Employees   int    `json:"employees" validate:"min=0"`
	Followers   int    `json:"followers" validate:"min=0"`
	Founded     string `json:"founded,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	About       string `json:"about,omitempty"`
	Specialties string `json:"specialties,omitempty"`
}

// CountBucket is a label with its number of occurrences, used by dashboard charts
type CountBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DatasetInfo describes the news dataset currently loaded by the service
type DatasetInfo struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}
