// Package deepl implements the translation gateway against the DeepL v2 HTTP API.
package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/translator"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

const (
	// DefaultBaseURL targets the DeepL free API tier.
	DefaultBaseURL = "https://api-free.deepl.com"

	translatePath      = "/v2/translate"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 4
	maxErrorBody       = 4 << 10
)

var (
	// ErrConfigInvalid is returned when the client configuration is incomplete.
	ErrConfigInvalid = errors.New("deepl: configuration invalid")
	// ErrUnexpectedResponse is returned when the API answers with an unusable payload.
	ErrUnexpectedResponse = errors.New("deepl: unexpected response")
)

// StatusError describes a non-success HTTP answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("deepl: status %d", e.StatusCode)
	}
	return fmt.Sprintf("deepl: status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status warrants another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Config configures the DeepL client.
type Config struct {
	BaseURL string
	AuthKey string
	Timeout time.Duration
	// MaxAttempts bounds requests per batch, the first one included.
	MaxAttempts     uint
	InitialInterval time.Duration
	IgnoreTags      []string
	HTTPClient      *http.Client
	Logger          interfaces.Logger
}

// Validate ensures the configuration can reach the API.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.AuthKey, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

// Client batches property texts into DeepL translate requests.
type Client struct {
	baseURL         string
	authKey         string
	maxAttempts     uint
	initialInterval time.Duration
	ignoreTags      []string
	http            *http.Client
	logger          interfaces.Logger
}

var _ interfaces.Translator = (*Client)(nil)

// New constructs a client after validating cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Client{
		baseURL:         baseURL,
		authKey:         cfg.AuthKey,
		maxAttempts:     maxAttempts,
		initialInterval: cfg.InitialInterval,
		ignoreTags:      append([]string(nil), cfg.IgnoreTags...),
		http:            httpClient,
		logger:          logger,
	}, nil
}

type translateRequest struct {
	Text        []string `json:"text"`
	TargetLang  string   `json:"target_lang"`
	SourceLang  string   `json:"source_lang,omitempty"`
	TagHandling string   `json:"tag_handling"`
	IgnoreTags  []string `json:"ignore_tags,omitempty"`
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate sends texts in a single request and maps the answers back by key.
func (c *Client) Translate(ctx context.Context, texts map[string]string, targetLanguage, sourceLanguage string) (map[string]string, error) {
	if len(texts) == 0 {
		return map[string]string{}, nil
	}
	keys := translator.SortedKeys(texts)
	payload := translateRequest{
		Text:        make([]string, len(keys)),
		TargetLang:  targetCode(targetLanguage),
		SourceLang:  sourceCode(sourceLanguage),
		TagHandling: "xml",
		IgnoreTags:  c.ignoreTags,
	}
	for i, key := range keys {
		payload.Text[i] = texts[key]
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	if c.initialInterval > 0 {
		policy.InitialInterval = c.initialInterval
	}

	decoded, err := backoff.Retry(ctx, func() (*translateResponse, error) {
		return c.send(ctx, body)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("translator.request.retry", "error", err, "backoff", next)
		}),
	)
	if err != nil {
		return nil, err
	}

	if len(decoded.Translations) != len(keys) {
		return nil, fmt.Errorf("%w: expected %d translations, got %d", ErrUnexpectedResponse, len(keys), len(decoded.Translations))
	}
	out := make(map[string]string, len(keys))
	for i, key := range keys {
		out[key] = decoded.Translations[i].Text
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, body []byte) (*translateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+translatePath, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if !statusErr.Retryable() {
			return nil, backoff.Permanent(statusErr)
		}
		if seconds, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			c.logger.Debug("translator.request.retry_after", "seconds", seconds, "status", resp.StatusCode)
			return nil, backoff.RetryAfter(seconds)
		}
		return nil, statusErr
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrUnexpectedResponse, err))
	}
	return &decoded, nil
}

func retryAfter(header string) (int, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return seconds, true
}

func targetCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// Source languages are accepted without a regional variant.
func sourceCode(code string) string {
	base, _, _ := strings.Cut(targetCode(code), "-")
	return base
}
