package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/pkg/config"
)

// DefaultSMSBaseURL is the sms.net.bd form endpoint.
const DefaultSMSBaseURL = "https://api.sms.net.bd/sendsms"

// ErrInvalidPhone is returned for numbers that cannot be mapped to the 880 country format.
var ErrInvalidPhone = errors.New("invalid phone number format")

// FormatPhone normalises a Bangladeshi number to 880XXXXXXXXXX.
func FormatPhone(raw string) (string, error) {
	phone := strings.ReplaceAll(strings.Join(strings.Fields(raw), ""), "-", "")
	switch {
	case strings.HasPrefix(phone, "+880"):
		return phone[1:], nil
	case strings.HasPrefix(phone, "0"):
		return "88" + phone, nil
	case strings.HasPrefix(phone, "880"):
		return phone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
}

// SMSClient posts messages to an sms.net.bd compatible gateway.
type SMSClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewSMSClient constructs a gateway client.
func NewSMSClient(cfg config.SMSConfig, logger *zap.Logger) *SMSClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSMSBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send submits one message and returns the gateway's raw response body.
func (c *SMSClient) Send(ctx context.Context, to, message string) (string, error) {
	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("to", to)
	form.Set("msg", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read sms response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return string(body), fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	c.logger.Info("sms sent", zap.String("to", to), zap.Int("status", resp.StatusCode))
	return string(body), nil
}

// LogSender logs messages instead of delivering them. Used when SMS is disabled.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send records the message and reports success.
func (s *LogSender) Send(ctx context.Context, to, message string) (string, error) {
	s.logger.Info("sms delivery disabled, message logged", zap.String("to", to), zap.String("message", message))
	return "logged", nil
}
