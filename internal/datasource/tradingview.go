package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"saham-bot/internal/api"
	"saham-bot/internal/types"
)

const defaultAuthURL = "https://www.tradingview.com/accounts/signin/"

// ClientConfig configures the TradingView datafeed client. Username and
// Password are optional: without them the client runs anonymously, which is
// expected to work with reduced reliability.
type ClientConfig struct {
	BaseURL  string
	AuthURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client fetches OHLCV history from a TradingView UDF-compatible datafeed.
type Client struct {
	api      *api.Client
	authURL  string
	username string
	password string

	// Sign-in happens at most once per process. A failed sign-in is
	// remembered and not retried until restart.
	mu        sync.Mutex
	authDone  bool
	authToken string
	authErr   error
}

// NewClient creates a datafeed client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(timeout),
			api.WithHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			api.WithHeader("Accept", "application/json"),
			api.WithLogging(true),
		),
		authURL:  authURL,
		username: cfg.Username,
		password: cfg.Password,
	}
}

type signinResponse struct {
	User struct {
		AuthToken string `json:"auth_token"`
	} `json:"user"`
	Error string `json:"error"`
}

// token returns the session auth token, signing in on first use when
// credentials are configured. Returns an empty token for anonymous access.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.username == "" || c.password == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authDone {
		return c.authToken, c.authErr
	}
	c.authDone = true

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("remember", "on")

	resp, err := c.api.POSTForm(ctx, c.authURL, form)
	if err != nil {
		c.authErr = fmt.Errorf("tradingview signin: %w", err)
		return "", c.authErr
	}

	var body signinResponse
	if err := resp.ParseJSON(&body); err != nil {
		c.authErr = fmt.Errorf("tradingview signin: %w", err)
		return "", c.authErr
	}
	if body.User.AuthToken == "" {
		msg := body.Error
		if msg == "" {
			msg = "no auth token in response"
		}
		c.authErr = fmt.Errorf("tradingview signin: %s", msg)
		return "", c.authErr
	}

	c.authToken = body.User.AuthToken
	return c.authToken, nil
}

type histResponse struct {
	Status string    `json:"s"`
	Errmsg string    `json:"errmsg"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// History fetches the most recent nBars OHLCV bars for symbol on exchange at
// the given UDF resolution ("1", "5", "15", "60", "D"). Bars are returned
// oldest first. All failures surface as *FetchError.
func (c *Client) History(ctx context.Context, symbol, exchange, resolution string, nBars int) ([]types.Bar, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, fetchErr(ReasonAuthFailure, err)
	}

	to := time.Now().Unix()
	from := to - int64(nBars)*barSeconds(resolution)*5 // margin for weekends and holidays

	path := fmt.Sprintf("/history?symbol=%s&resolution=%s&from=%d&to=%d&countback=%d",
		url.QueryEscape(exchange+":"+symbol), resolution, from, to, nBars)

	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	resp, err := c.api.GET(ctx, path, headers)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	var body histResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fetchErr(ReasonMalformedResponse, err)
	}

	switch body.Status {
	case "ok":
	case "no_data":
		return nil, fetchErr(ReasonSymbolNotFound, fmt.Errorf("no data for %s:%s", exchange, symbol))
	case "error":
		if strings.Contains(strings.ToLower(body.Errmsg), "symbol") {
			return nil, fetchErr(ReasonSymbolNotFound, errors.New(body.Errmsg))
		}
		return nil, fetchErr(ReasonMalformedResponse, errors.New(body.Errmsg))
	default:
		return nil, fetchErr(ReasonMalformedResponse, fmt.Errorf("unexpected status %q", body.Status))
	}

	n := len(body.T)
	if n == 0 {
		return nil, fetchErr(ReasonSymbolNotFound, fmt.Errorf("empty history for %s:%s", exchange, symbol))
	}
	if len(body.O) != n || len(body.H) != n || len(body.L) != n || len(body.C) != n {
		return nil, fetchErr(ReasonMalformedResponse, fmt.Errorf("mismatched series lengths for %s:%s", exchange, symbol))
	}

	bars := make([]types.Bar, 0, n)
	for i := 0; i < n; i++ {
		bar := types.Bar{
			Ts:    body.T[i],
			Open:  body.O[i],
			High:  body.H[i],
			Low:   body.L[i],
			Close: body.C[i],
		}
		if len(body.V) == n {
			bar.Vol = body.V[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// classifyTransportError maps HTTP/network failures onto fetch reasons.
func classifyTransportError(err error) *FetchError {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case 401, 403:
			return fetchErr(ReasonAuthFailure, err)
		case 404:
			return fetchErr(ReasonSymbolNotFound, err)
		}
		return fetchErr(ReasonMalformedResponse, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fetchErr(ReasonTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fetchErr(ReasonTimeout, err)
	}

	return fetchErr(ReasonMalformedResponse, err)
}

func barSeconds(resolution string) int64 {
	switch resolution {
	case "1":
		return 60
	case "5":
		return 5 * 60
	case "15":
		return 15 * 60
	case "60":
		return 60 * 60
	default:
		return 24 * 60 * 60
	}
}
