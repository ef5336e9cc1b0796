package models

import "time"

// Preferences holds a user's default generation parameters.
type Preferences struct {
	Niche string `json:"niche"`
	Tone  string `json:"tone"`
}

// DefaultPreferences are used for users who never ran /setpreferences.
func DefaultPreferences() Preferences {
	return Preferences{Niche: "General", Tone: "Professional"}
}

// User represents a bot user with their preferences and activity timestamps
type User struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username,omitempty"`
	FirstName   string       `json:"first_name,omitempty"`
	LastName    string       `json:"last_name,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	LastActive  time.Time    `json:"last_active"`
}

// Tier is a subscription level gating premium features.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Subscription is the stored subscription row. The effective tier is always
// recomputed against ExpiresAt; see the subscription package.
type Subscription struct {
	UserID    int64      `json:"user_id"`
	Tier      Tier       `json:"tier"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GenerationInput records what a generation was asked for.
type GenerationInput struct {
	Topic    string `json:"topic"`
	Category string `json:"category,omitempty"`
	Niche    string `json:"niche"`
	Tone     string `json:"tone"`
}

// HistoryEntry is one completed generation: inputs plus outputs. Append-only.
type HistoryEntry struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Input     GenerationInput `json:"input_data"`
	Tweets    []string        `json:"generated_tweets"`
	CreatedAt time.Time       `json:"created_at"`
}
