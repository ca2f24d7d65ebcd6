// Package fingerprint computes deterministic content fingerprints used
// to detect duplicate and reposted job listings.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Fingerprint is a fixed-length hash over the normalized posting content,
// together with the normalized strings it was derived from. It is a pure
// lookup key with no lifecycle beyond the analysis that computed it.
type Fingerprint struct {
	Hash        string
	Title       string
	Company     string
	Description string
}

// New computes the fingerprint for a job record.
func New(job *types.JobRecord) Fingerprint {
	title := Normalize(job.Title)
	company := Normalize(job.Company)
	description := Normalize(job.Description)

	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0x1f})
	h.Write([]byte(company))
	h.Write([]byte{0x1f})
	h.Write([]byte(description))

	return Fingerprint{
		Hash:        hex.EncodeToString(h.Sum(nil)),
		Title:       title,
		Company:     company,
		Description: description,
	}
}

// Normalize lowercases the input, strips punctuation, and collapses
// whitespace runs to single spaces so cosmetic edits between reposts do
// not change the hash.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !lastSpace {
				sb.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(sb.String())
}
