package transliterate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the name-conversion service used for readings.
const DefaultEndpoint = "https://namehenkan.com/ajax.php"

// The service converts a full name; the character being looked up is sent as
// the family name and this fixed character as the given name.
const fixedGivenName = "试"

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	contentTypeForm   = "application/x-www-form-urlencoded"
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Static errors.
var (
	ErrLookupStatus = errors.New("reading service returned non-success status")
	ErrNoReading    = errors.New("reading service returned no katakana")
)

var unicodeEscape = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// Lookup returns the katakana reading of a single Han rune.
type Lookup interface {
	Katakana(ctx context.Context, han rune) (string, error)
}

// HTTPLookup queries the name-conversion service one character at a time.
type HTTPLookup struct {
	httpClient *http.Client
	endpoint   string
}

type readingResponse struct {
	FamilyKatakana string `json:"Pinyin_k_sei"`
}

// NewHTTPLookup creates a lookup client for endpoint.
func NewHTTPLookup(endpoint string, timeout time.Duration) *HTTPLookup {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &HTTPLookup{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Katakana posts the rune as a family name and returns its reading.
func (l *HTTPLookup) Katakana(ctx context.Context, han rune) (string, error) {
	form := url.Values{}
	form.Set("last", string(han))
	form.Set("first", fixedGivenName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create reading request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeForm)
	req.Header.Set(headerUserAgent, userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query reading for %q: %w", han, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)

		return "", fmt.Errorf("%w: %s", ErrLookupStatus, resp.Status)
	}

	var payload readingResponse

	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode reading for %q: %w", han, err)
	}

	reading := strings.TrimSpace(decodeUnicodeEscapes(payload.FamilyKatakana))
	if reading == "" {
		return "", fmt.Errorf("%w for %q", ErrNoReading, han)
	}

	return reading, nil
}

// decodeUnicodeEscapes expands literal \uXXXX sequences left in the payload.
func decodeUnicodeEscapes(s string) string {
	return unicodeEscape.ReplaceAllStringFunc(s, func(match string) string {
		code, err := strconv.ParseUint(match[2:], 16, 32)
		if err != nil {
			return match
		}

		return string(rune(code))
	})
}
