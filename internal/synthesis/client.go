// Package synthesis calls the VoiceVox web API and classifies its response.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/book-expert/voicevox-service/internal/prefs"
)

// DefaultBaseURL is the hosted VoiceVox endpoint.
const DefaultBaseURL = "https://deprecatedapis.tts.quest/v2/voicevox/audio/"

// Query parameters.
const (
	paramKey             = "key"
	paramSpeaker         = "speaker"
	paramPitch           = "pitch"
	paramIntonationScale = "intonationScale"
	paramSpeed           = "speed"
	paramText            = "text"
)

const (
	headerContentType = "Content-Type"
	audioMarker       = "audio"
	// maxErrorBody bounds how much of a failure body is kept for diagnostics.
	maxErrorBody = 4 << 10
)

// Static errors.
var (
	ErrTextEmpty   = errors.New("text cannot be empty")
	ErrAPIKeyEmpty = errors.New("api key cannot be empty")
)

// Client calls the synthesis endpoint. It performs no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL; an empty baseURL selects
// DefaultBaseURL. The timeout applies to every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: normalizeBaseURL(baseURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP creates a client using a caller-supplied http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: normalizeBaseURL(baseURL), httpClient: httpClient}
}

func normalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return DefaultBaseURL
	}

	return baseURL
}

// Synthesize issues one GET request and classifies the response. The
// returned error is non-nil only when no response was obtained at all.
func (c *Client) Synthesize(ctx context.Context, text string, params prefs.Parameters, apiKey string) (Outcome, error) {
	if text == "" {
		return nil, ErrTextEmpty
	}

	if apiKey == "" {
		return nil, ErrAPIKeyEmpty
	}

	requestURL := c.buildURL(text, params, apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send synthesis request: %w", redactKey(err, apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body := readBody(resp.Body)

		return TransportError{StatusCode: resp.StatusCode, Body: body}, nil
	}

	contentType := resp.Header.Get(headerContentType)
	if !strings.Contains(contentType, audioMarker) {
		return classifyBody(strings.TrimSpace(readBody(resp.Body))), nil
	}

	locator := requestURL
	if resp.Request != nil && resp.Request.URL != nil {
		locator = resp.Request.URL.String()
	}

	return Audio{Locator: locator, ContentType: contentType}, nil
}

func (c *Client) buildURL(text string, params prefs.Parameters, apiKey string) string {
	query := url.Values{}
	query.Set(paramKey, apiKey)
	query.Set(paramSpeaker, strconv.Itoa(params.Speaker))
	query.Set(paramPitch, formatFloat(params.Pitch))
	query.Set(paramIntonationScale, formatFloat(params.IntonationScale))
	query.Set(paramSpeed, formatFloat(params.Speed))
	query.Set(paramText, text)

	return c.baseURL + "?" + query.Encode()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func readBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}

	return string(data)
}

// redactKey keeps the api key out of logged url.Error messages.
func redactKey(err error, apiKey string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(apiKey), "REDACTED")
	}

	return err
}
