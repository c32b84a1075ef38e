package synthesis

import "fmt"

// APICode classifies the literal failure bodies of the synthesis API.
type APICode string

// Known failure bodies. Any other body maps to CodeOther.
const (
	CodeInvalidAPIKey   APICode = "invalidApiKey"
	CodeFailed          APICode = "failed"
	CodeNotEnoughPoints APICode = "notEnoughPoints"
	CodeOther           APICode = "other"
)

// Outcome is the result of one synthesis call: exactly one of Audio,
// TransportError or APIError.
type Outcome interface {
	outcome()
}

// Audio is a successful synthesis; Locator dereferences to the audio content.
type Audio struct {
	Locator     string
	ContentType string
}

// TransportError is a non-success HTTP status.
type TransportError struct {
	StatusCode int
	Body       string
}

// APIError is a success status whose body is a failure token instead of audio.
type APIError struct {
	Code APICode
	// Body holds the raw text for CodeOther.
	Body string
}

func (Audio) outcome()          {}
func (TransportError) outcome() {}
func (APIError) outcome()       {}

func (e TransportError) String() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

func (e APIError) String() string {
	if e.Code == CodeOther {
		return fmt.Sprintf("%s: %s", e.Code, e.Body)
	}

	return string(e.Code)
}

func classifyBody(body string) APIError {
	switch code := APICode(body); code {
	case CodeInvalidAPIKey, CodeFailed, CodeNotEnoughPoints:
		return APIError{Code: code, Body: body}
	default:
		return APIError{Code: CodeOther, Body: body}
	}
}
