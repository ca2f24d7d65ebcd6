// Package fetch - platform.go provides job board platform detection and
// candidate career page derivation.
package fetch

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/jonathan/ghost-job-detector/internal/types"
)

// DetectPlatform identifies the job board platform from a posting URL.
func DetectPlatform(urlStr string) types.Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return types.PlatformOther
	}

	host := strings.ToLower(parsed.Host)
	path := strings.ToLower(parsed.Path)

	switch {
	case strings.Contains(host, "linkedin"):
		return types.PlatformLinkedIn
	case strings.Contains(host, "indeed"):
		return types.PlatformIndeed
	case strings.Contains(host, "glassdoor"):
		return types.PlatformGlassdoor
	case strings.HasPrefix(host, "careers.") ||
		strings.HasPrefix(host, "jobs.") ||
		strings.Contains(path, "/careers") ||
		strings.Contains(path, "/jobs"):
		return types.PlatformCompany
	default:
		return types.PlatformOther
	}
}

// DeriveCompanyDomain guesses the company's primary domain. A posting on
// the company's own site wins; otherwise the domain is slugged from the
// company name.
func DeriveCompanyDomain(company, sourceURL string) string {
	if DetectPlatform(sourceURL) == types.PlatformCompany {
		if parsed, err := url.Parse(sourceURL); err == nil && parsed.Host != "" {
			return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
		}
	}

	slug := slugifyCompany(company)
	if slug == "" {
		return ""
	}
	return slug + ".com"
}

// CareerPageCandidates returns the well-known career page URL patterns
// checked during site verification, most likely first.
func CareerPageCandidates(domain string) []string {
	if domain == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("https://%s/careers", domain),
		fmt.Sprintf("https://www.%s/careers", domain),
		fmt.Sprintf("https://%s/jobs", domain),
	}
}

// slugifyCompany lowercases the company name, drops legal suffixes, and
// strips everything but letters and digits.
func slugifyCompany(company string) string {
	lower := strings.ToLower(strings.TrimSpace(company))

	for _, suffix := range []string{" inc", " inc.", " llc", " ltd", " ltd.", " corp", " corp.", " co", " co.", " gmbh"} {
		lower = strings.TrimSuffix(lower, suffix)
	}

	var sb strings.Builder
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
