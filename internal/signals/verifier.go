package signals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/fetch"
	"github.com/jonathan/ghost-job-detector/internal/ratelimit"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// FetchFunc matches fetch.URL and lets tests stub out the network.
type FetchFunc func(ctx context.Context, urlStr string, opts *fetch.Options) (*fetch.Result, error)

// SiteVerifier checks whether the role appears on the company's own
// career pages. Every outbound request goes through the per-domain
// limiter and the provider caps its request count per analysis.
type SiteVerifier struct {
	limiter       *ratelimit.DomainLimiter
	fetchFn       FetchFunc
	timeout       time.Duration
	maxRequests   int
	minConfidence float64
}

// NewSiteVerifier builds the career-page verification provider.
func NewSiteVerifier(limiter *ratelimit.DomainLimiter, cfg *config.Config) *SiteVerifier {
	return &SiteVerifier{
		limiter:       limiter,
		fetchFn:       fetch.URL,
		timeout:       cfg.VerifyTimeout(),
		maxRequests:   cfg.VerifyMaxRequests,
		minConfidence: cfg.MinConfidence[config.ProviderSiteVerifier],
	}
}

// WithFetcher replaces the fetch function, for tests.
func (v *SiteVerifier) WithFetcher(fn FetchFunc) *SiteVerifier {
	v.fetchFn = fn
	return v
}

func (v *SiteVerifier) Name() string { return config.ProviderSiteVerifier }

func (v *SiteVerifier) MinConfidence() float64 { return v.minConfidence }

// Evaluate probes the company's career page candidates and scores how
// well the fetched content matches the posting.
func (v *SiteVerifier) Evaluate(ctx context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()

	domain := fetch.DeriveCompanyDomain(job.Company, job.SourceURL)
	if domain == "" {
		return unavailable(v.Name(), "could not derive a company domain"), nil
	}

	candidates := fetch.CareerPageCandidates(domain)
	if len(candidates) > v.maxRequests {
		candidates = candidates[:v.maxRequests]
	}

	opts := &fetch.Options{Timeout: v.timeout, UserAgent: fetch.DefaultUserAgent}

	fetched := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return unavailable(v.Name(), "verification cancelled before completion"), nil
		}
		if !v.limiter.Allow(domain) {
			break
		}
		fetched++

		result, err := v.fetchFn(ctx, candidate, opts)
		if err != nil || result == nil || result.StatusCode < 200 || result.StatusCode >= 300 {
			continue
		}

		res := v.scorePage(job, result, start)
		return res, nil
	}

	if fetched == 0 {
		return unavailable(v.Name(), fmt.Sprintf("rate limited for domain %s", domain)), nil
	}

	// All probed pages were unreachable or errored.
	return &types.SignalResult{
		Provider:     v.Name(),
		GhostScore:   0.65,
		Confidence:   0.45,
		RiskFactors:  []string{fmt.Sprintf("No reachable career page found at %s", domain)},
		Status:       types.StatusOk,
		StatusReason: "career page not found",
		Latency:      time.Since(start),
	}, nil
}

// scorePage grades a fetched page by token overlap with the posting's
// title and company.
func (v *SiteVerifier) scorePage(job *types.JobRecord, page *fetch.Result, start time.Time) *types.SignalResult {
	text := page.Text
	if text == "" {
		extracted, err := fetch.ExtractMainText(page.HTML, fetch.CareerPageSelectors())
		if err == nil {
			text = extracted
		}
	}

	pageTokens := tokenize(text)
	titleTokens := tokenize(job.Title)

	matched := 0
	for tok := range titleTokens {
		if pageTokens[tok] {
			matched++
		}
	}
	var overlap float64
	if len(titleTokens) > 0 {
		overlap = float64(matched) / float64(len(titleTokens))
	}
	companyMentioned := strings.Contains(strings.ToLower(text), strings.ToLower(job.Company))

	switch {
	case overlap >= 0.6:
		return &types.SignalResult{
			Provider:        v.Name(),
			GhostScore:      0.25,
			Confidence:      clamp01(0.5 + overlap/2),
			PositiveFactors: []string{"Role is listed on the company's own career page"},
			Status:          types.StatusOk,
			Latency:         time.Since(start),
		}
	case companyMentioned:
		return &types.SignalResult{
			Provider:     v.Name(),
			GhostScore:   0.50,
			Confidence:   0.35,
			Status:       types.StatusOk,
			StatusReason: "career page found but role listing inconclusive",
			Latency:      time.Since(start),
		}
	default:
		return &types.SignalResult{
			Provider:    v.Name(),
			GhostScore:  0.60,
			Confidence:  0.50,
			RiskFactors: []string{"Company career page does not mention this role"},
			Status:      types.StatusOk,
			Latency:     time.Since(start),
		}
	}
}
