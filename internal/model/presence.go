package model

import "time"

type PresenceState string

const (
	PresenceActive  PresenceState = "active"
	PresenceAway    PresenceState = "away"
	PresenceUnknown PresenceState = "unknown"
)

// ParsePresenceState maps a platform presence string onto a state.
func ParsePresenceState(s string) PresenceState {
	switch PresenceState(s) {
	case PresenceActive:
		return PresenceActive
	case PresenceAway:
		return PresenceAway
	default:
		return PresenceUnknown
	}
}

type PresenceRecord struct {
	UserID       string        `json:"user_id"`
	DisplayName  string        `json:"display_name"`
	State        PresenceState `json:"state"`
	LastUpdated  time.Time     `json:"last_updated"`
	LastActiveAt time.Time     `json:"last_active_at,omitzero"`
	Online       bool          `json:"online"`
	StatusText   string        `json:"status_text,omitempty"`
	StatusEmoji  string        `json:"status_emoji,omitempty"`
}
