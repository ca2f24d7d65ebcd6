// Package types defines the shared data structures for ghost job analysis.
package types

import "time"

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformLinkedIn is a posting hosted on LinkedIn
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is a posting hosted on Indeed
	PlatformIndeed Platform = "indeed"
	// PlatformGlassdoor is a posting hosted on Glassdoor
	PlatformGlassdoor Platform = "glassdoor"
	// PlatformCompany is a posting on a company's own careers site
	PlatformCompany Platform = "company"
	// PlatformOther is an unrecognized source
	PlatformOther Platform = "other"
)

// JobRecord is the normalized job posting consumed by every signal provider.
// It is owned by the caller and never mutated by the analysis core.
type JobRecord struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	Remote      bool       `json:"remote,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Platform    Platform   `json:"platform,omitempty"`
}

// Valid reports whether the record carries the minimum fields required
// for analysis. A record with an empty title or company is a hard input
// error and is rejected before any provider is dispatched.
func (j *JobRecord) Valid() bool {
	return j != nil && j.Title != "" && j.Company != ""
}
