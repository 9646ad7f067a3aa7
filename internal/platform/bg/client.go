package bg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var ErrUpstreamStatus = errors.New("bg: unexpected upstream status")

// maxResponseBytes bounds a single SendMessage response.
const maxResponseBytes = 32 << 20

type Config struct {
	URL       string
	Username  string
	Password  string
	ServiceID string
	Timeout   time.Duration
	RetryMax  int
}

// Client sends SearchReferrals requests to the bureau.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = leveledLogger{logger: logger}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		cfg:        cfg,
		httpClient: retryClient.StandardClient(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock overrides the clock used for messageDate.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// Envelope renders the request body that Fetch would send for q.
func (c *Client) Envelope(q referral.Query) ([]byte, error) {
	req := NewRequest(c.cfg.ServiceID, q, c.now())
	req.SenderID = c.cfg.Username
	req.Password = c.cfg.Password
	return BuildEnvelope(req)
}

// Fetch runs one SearchReferrals call. Any transport, status or parse
// problem is returned as an error.
func (c *Client) Fetch(ctx context.Context, q referral.Query) ([]referral.Item, error) {
	body, err := c.Envelope(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", "SendMessage")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("subject", ReferralsSubject.Code).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("latency", time.Since(start)).
		Msg("bg response")

	if resp.StatusCode != http.StatusOK {
		// A SOAP fault travels with a 500; surface it when present.
		if _, perr := ParseReferrals(data); errors.Is(perr, ErrSOAPFault) {
			return nil, perr
		}
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	return ParseReferrals(data)
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
