// YouTube [Searcher] implementation
//
// Scrapes the public results page and decodes the ytInitialData object embedded in it.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

const (
	defaultSearchBaseURL  string = "https://www.youtube.com"
	defaultAcceptLanguage string = "en-US,en;q=0.9"
	searchAccept          string = "text/html,application/xhtml+xml"
	maxPageBytes          int64  = 16 << 20
)

var initialDataRe = regexp.MustCompile(`(?s)var\s+ytInitialData\s*=\s*(\{.+?\});\s*</script>`)

// SearchOpts configures a [SearchService]. Zero values fall back to defaults.
type SearchOpts struct {
	BaseURL           string
	AcceptLanguage    string
	UserAgent         string
	Headers           *shared.CurlHeaders
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// SearchService resolves queries against the YouTube results page.
type SearchService struct {
	baseURL        string
	acceptLanguage string
	userAgent      string
	headers        atomic.Pointer[shared.CurlHeaders]
	limiter        *rate.Limiter
	httpClient     *http.Client
	logger         *log.Logger
}

// NewSearchService creates a search service from opts.
func NewSearchService(opts SearchOpts) *SearchService {
	s := &SearchService{
		baseURL:        opts.BaseURL,
		acceptLanguage: opts.AcceptLanguage,
		userAgent:      opts.UserAgent,
		httpClient:     opts.HTTPClient,
		logger:         opts.Logger,
	}
	s.headers.Store(opts.Headers)

	if s.baseURL == "" {
		s.baseURL = defaultSearchBaseURL
	}
	if s.acceptLanguage == "" {
		s.acceptLanguage = defaultAcceptLanguage
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return s
}

// NewSearchServiceFromConfig builds a search service from the [search] config table,
// loading captured browser headers when headers_path is set.
func NewSearchServiceFromConfig(cfg shared.SearchConfig, logger *log.Logger) (*SearchService, error) {
	var headers *shared.CurlHeaders
	if cfg.HeadersPath != "" {
		h, err := shared.ParseCurlFile(cfg.HeadersPath)
		if err != nil {
			return nil, fmt.Errorf("%w: search.headers_path: %v", shared.ErrInvalidConfig, err)
		}
		headers = h
	}

	return NewSearchService(SearchOpts{
		BaseURL:           cfg.BaseURL,
		AcceptLanguage:    cfg.AcceptLanguage,
		UserAgent:         cfg.UserAgent,
		Headers:           headers,
		RequestsPerSecond: cfg.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: cfg.Timeout()},
		Logger:            logger,
	}), nil
}

// Name returns the platform name.
func (s *SearchService) Name() string {
	return "YouTube"
}

// Candidates fetches the results page for query and extracts its admissible videos.
func (s *SearchService) Candidates(ctx context.Context, query string) ([]models.VideoCandidate, error) {
	body, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return ParseSearchPage(body)
}

// Resolve implements [Searcher].
func (s *SearchService) Resolve(ctx context.Context, query string, target int) *models.VideoCandidate {
	candidates, err := s.Candidates(ctx, query)
	if err != nil {
		s.logger.Warn("search failed", "query", query, "error", err)
		return nil
	}

	pick := candidates[0]
	if target > 0 {
		pick, _ = BestDurationMatch(candidates, target)
	}

	s.logger.Debug("matched video",
		"query", query,
		"title", truncate(pick.Title, 40),
		"duration", pick.Duration,
		"target", target,
		"candidates", len(candidates),
	)
	return &pick
}

func (s *SearchService) fetch(ctx context.Context, query string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	searchURL := s.baseURL + "/results?search_query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Accept", searchAccept)
	req.Header.Set("Accept-Language", s.acceptLanguage)
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	s.headers.Load().Apply(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrSearchStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}
	return body, nil
}

// ParseSearchPage locates the ytInitialData assignment in a results page and extracts its candidates.
func ParseSearchPage(page []byte) ([]models.VideoCandidate, error) {
	match := initialDataRe.FindSubmatch(page)
	if match == nil {
		return nil, shared.ErrMarkerNotFound
	}

	var payload any
	if err := json.Unmarshal(match[1], &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPayloadParse, err)
	}

	candidates := ExtractCandidates(payload)
	if len(candidates) == 0 {
		return nil, shared.ErrNoCandidates
	}
	return candidates, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
