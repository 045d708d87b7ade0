package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ValueSentinel/internal/logging"
	"ValueSentinel/internal/model"
)

const (
	DefaultFMPBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultFMPTimeout   = 30 * time.Second
	DefaultFMPRateLimit = 5 // requests per second
)

// APIError is a non-success answer from the provider.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fmp api error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FMPFetcher implements Fetcher using the Financial Modeling Prep REST API.
type FMPFetcher struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    func(attempt int) time.Duration
	logger     *logging.Logger
}

// FMPOption configures the fetcher.
type FMPOption func(*FMPFetcher)

func WithBaseURL(baseURL string) FMPOption {
	return func(f *FMPFetcher) { f.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithRateLimit(requestsPerSecond int) FMPOption {
	return func(f *FMPFetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

func WithTimeout(timeout time.Duration) FMPOption {
	return func(f *FMPFetcher) { f.client.Timeout = timeout }
}

func WithMaxRetries(n int) FMPOption {
	return func(f *FMPFetcher) { f.maxRetries = n }
}

func WithBackoff(backoff func(attempt int) time.Duration) FMPOption {
	return func(f *FMPFetcher) { f.backoff = backoff }
}

func WithLogger(logger *logging.Logger) FMPOption {
	return func(f *FMPFetcher) { f.logger = logger }
}

// WithProxy routes requests through proxyURL. Invalid URLs are ignored.
func WithProxy(proxyURL string) FMPOption {
	return func(f *FMPFetcher) {
		if proxyURL == "" {
			return
		}
		if u, err := url.Parse(proxyURL); err == nil {
			f.client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
}

// NewFMPFetcher creates a fetcher. The API key is supplied by configuration.
func NewFMPFetcher(apiKey string, opts ...FMPOption) *FMPFetcher {
	f := &FMPFetcher{
		baseURL:    DefaultFMPBaseURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: DefaultFMPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultFMPRateLimit), DefaultFMPRateLimit),
		maxRetries: 3,
		backoff:    func(attempt int) time.Duration { return time.Duration(1<<uint(attempt)) * time.Second },
		logger:     logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FMPFetcher) Name() string { return "Financial Modeling Prep (FMP)" }

// optFloat distinguishes a missing or null number from zero.
// Numbers sent as strings are accepted; "", "N/A", "None" and non-finite
// values such as "NaN" or "Infinity" count as missing.
type optFloat struct {
	Value float64
	Valid bool
}

func (o *optFloat) UnmarshalJSON(data []byte) error {
	*o = optFloat{}
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*o = optFloat{Value: num, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into number", string(data))
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" || s == "None" {
		return nil
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return nil
	}
	*o = optFloat{Value: num, Valid: true}
	return nil
}

func (o optFloat) ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

type fmpProfile struct {
	Symbol      string   `json:"symbol"`
	CompanyName string   `json:"companyName"`
	Currency    string   `json:"currency"`
	Sector      string   `json:"sector"`
	Price       optFloat `json:"price"`
	MktCap      optFloat `json:"mktCap"`
}

type fmpRatiosTTM struct {
	EPS            optFloat `json:"epsTTM"`
	PERatio        optFloat `json:"peRatioTTM"`
	ROE            optFloat `json:"roeTTM"`
	ReturnOnEquity optFloat `json:"returnOnEquityTTM"`
}

type fmpIncomeStatement struct {
	Date         string   `json:"date"`
	CalendarYear optFloat `json:"calendarYear"`
	Revenue      optFloat `json:"revenue"`
	NetIncome    optFloat `json:"netIncome"`
}

func (f *FMPFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	var rows []fmpProfile
	if err := f.get(ctx, "/profile/"+url.PathEscape(symbol), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", symbol, ErrSymbolNotFound)
	}
	p := rows[0]
	return &model.Profile{
		Symbol:      p.Symbol,
		CompanyName: p.CompanyName,
		Sector:      p.Sector,
		Currency:    p.Currency,
		Price:       p.Price.ptr(),
		MarketCap:   p.MktCap.ptr(),
	}, nil
}

func (f *FMPFetcher) FetchRatiosTTM(ctx context.Context, symbol string) (*model.RatiosTTM, error) {
	var rows []fmpRatiosTTM
	if err := f.get(ctx, "/ratios-ttm/"+url.PathEscape(symbol), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ratios-ttm %s: %w", symbol, ErrSymbolNotFound)
	}
	r := rows[0]
	roe := r.ROE
	if !roe.Valid {
		roe = r.ReturnOnEquity
	}
	return &model.RatiosTTM{
		EPS:     r.EPS.ptr(),
		PERatio: r.PERatio.ptr(),
		ROE:     roe.ptr(),
	}, nil
}

func (f *FMPFetcher) FetchIncomeHistory(ctx context.Context, symbol string, limit int) ([]model.FinancialYear, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var rows []fmpIncomeStatement
	if err := f.get(ctx, "/income-statement/"+url.PathEscape(symbol), params, &rows); err != nil {
		return nil, err
	}

	history := make([]model.FinancialYear, 0, len(rows))
	for _, r := range rows {
		year := int(r.CalendarYear.Value)
		if !r.CalendarYear.Valid && len(r.Date) >= 4 {
			year, _ = strconv.Atoi(r.Date[:4])
		}
		if year == 0 || !r.Revenue.Valid || !r.NetIncome.Valid {
			f.logger.Debug().Str("symbol", symbol).Str("date", r.Date).Msg("skipping incomplete income statement row")
			continue
		}
		history = append(history, model.FinancialYear{
			Year:      year,
			Revenue:   r.Revenue.Value,
			NetIncome: r.NetIncome.Value,
		})
		if len(history) == limit {
			break
		}
	}
	return history, nil
}

// get performs a rate-limited GET, retrying throttling and server errors with exponential backoff.
func (f *FMPFetcher) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		err := f.do(ctx, path, params, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if !f.retryable(ctx, err) || attempt == f.maxRetries {
			break
		}

		backoff := f.backoff(attempt)
		f.logger.Warn().Err(err).Str("endpoint", path).
			Int("attempt", attempt+1).Dur("backoff", backoff).Msg("fmp request failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// retryable reports whether err is a throttling, server or transport failure.
func (f *FMPFetcher) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (f *FMPFetcher) do(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", f.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", f.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	f.logger.Debug().Str("endpoint", path).Msg("fmp request")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fmp fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fmp read body: %w", err)
	}

	// Errors arrive as {"Error Message": "..."}, sometimes with status 200.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var e struct {
			Message string `json:"Error Message"`
		}
		if err := json.Unmarshal(trimmed, &e); err == nil && e.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: e.Message}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: string(body)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("fmp decode %s: %w", path, err)
	}
	return nil
}
