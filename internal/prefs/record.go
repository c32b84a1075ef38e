// Package prefs owns the per-identity voice preference records and the
// precedence merge that turns them into synthesis parameters.
package prefs

// Hard defaults used when neither the user record nor the settings document
// provides a value.
const (
	DefaultSpeaker         = 0
	DefaultPitch           = 0.0
	DefaultSpeed           = 1.0
	DefaultIntonationScale = 1.0
)

// Record is a sum of optionals: a nil field falls through to the next tier.
type Record struct {
	Speaker         *int     `json:"speaker,omitempty"`
	Pitch           *float64 `json:"pitch,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
	IntonationScale *float64 `json:"intonationScale,omitempty"`
}

// IsEmpty reports whether no axis is set.
func (r Record) IsEmpty() bool {
	return r.Speaker == nil && r.Pitch == nil && r.Speed == nil && r.IntonationScale == nil
}

// Parameters are the fully resolved values for one synthesis call.
type Parameters struct {
	Speaker         int
	Pitch           float64
	Speed           float64
	IntonationScale float64
}

// Resolve merges the tiers with strict precedence user > defaults > hard default.
func Resolve(user, defaults Record) Parameters {
	return Parameters{
		Speaker:         pick(user.Speaker, defaults.Speaker, DefaultSpeaker),
		Pitch:           pick(user.Pitch, defaults.Pitch, DefaultPitch),
		Speed:           pick(user.Speed, defaults.Speed, DefaultSpeed),
		IntonationScale: pick(user.IntonationScale, defaults.IntonationScale, DefaultIntonationScale),
	}
}

func pick[T any](user, configured *T, fallback T) T {
	if user != nil {
		return *user
	}

	if configured != nil {
		return *configured
	}

	return fallback
}
