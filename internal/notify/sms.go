package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender delivers a text message to a phone number. Delivered reports
// whether a real carrier send happened; the dev sender always returns false.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (delivered bool, err error)
}

// TwilioConfig holds the Twilio REST credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// TwilioSender posts to the Twilio Messages API directly.
type TwilioSender struct {
	cfg  TwilioConfig
	base string
	http *http.Client
	log  *slog.Logger
}

func NewTwilioSender(cfg TwilioConfig, logger *slog.Logger) *TwilioSender {
	return &TwilioSender{
		cfg:  cfg,
		base: "https://api.twilio.com",
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logger,
	}
}

// WithBaseURL overrides the API host, for tests.
func (s *TwilioSender) WithBaseURL(base string) *TwilioSender {
	s.base = strings.TrimRight(base, "/")
	return s
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) (bool, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.cfg.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.base, s.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	s.log.Info("notify.sms_response",
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return false, fmt.Errorf("twilio status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return true, nil
}

// DevSender logs outbound messages instead of delivering them. Used when no
// Twilio credentials are configured.
type DevSender struct {
	log *slog.Logger
}

func NewDevSender(logger *slog.Logger) *DevSender { return &DevSender{log: logger} }

func (s *DevSender) Send(_ context.Context, to, body string) (bool, error) {
	s.log.Info("notify.sms_simulated", "to", to, "body", body)
	return false, nil
}
