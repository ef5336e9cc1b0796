package storage

import (
	"context"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

// Storage is the persistence collaborator: users, subscriptions and the
// append-only generation history. Implementations are row-level atomic per
// call; last writer wins for preference updates.
type Storage interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	UpdateLastActive(ctx context.Context, userID int64) error

	// GetPreferences returns (nil, nil) when the user has none stored.
	GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error)
	SetPreferences(ctx context.Context, userID int64, prefs models.Preferences) error

	// GetSubscription returns (nil, nil) when no row exists.
	GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error

	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	// GetHistory returns entries most-recent-first; limit <= 0 means all.
	GetHistory(ctx context.Context, userID int64, limit int) ([]*models.HistoryEntry, error)

	Close() error
}
