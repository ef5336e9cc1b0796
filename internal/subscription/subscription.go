// Package subscription computes the effective tier of a user and activates
// premium periods. The tier is never cached: every read re-evaluates the
// stored expiry against the current time.
package subscription

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/models"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
)

type Manager struct {
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

func NewManager(storage storage.Storage, logger *zap.Logger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Tier returns the effective tier. A missing row, an expired row or a row
// without a premium tier all count as free.
func (m *Manager) Tier(ctx context.Context, userID int64) models.Tier {
	sub, err := m.storage.GetSubscription(ctx, userID)
	if err != nil {
		m.logger.Error("Failed to get subscription",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return models.TierFree
	}
	if sub == nil || sub.Tier != models.TierPremium {
		return models.TierFree
	}
	if sub.ExpiresAt != nil && !sub.ExpiresAt.After(m.now()) {
		return models.TierFree
	}
	return models.TierPremium
}

// ActivatePremium sets the tier to premium and extends the expiry by
// durationDays from the later of now and the current expiry. Stacked
// extensions accumulate and never shorten an existing subscription.
func (m *Manager) ActivatePremium(ctx context.Context, userID int64, durationDays int) error {
	base := m.now()

	existing, err := m.storage.GetSubscription(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Tier == models.TierPremium &&
		existing.ExpiresAt != nil && existing.ExpiresAt.After(base) {
		base = *existing.ExpiresAt
	}
	expiresAt := base.AddDate(0, 0, durationDays)

	return m.storage.UpsertSubscription(ctx, &models.Subscription{
		UserID:    userID,
		Tier:      models.TierPremium,
		ExpiresAt: &expiresAt,
	})
}

// ExpiresAt returns the stored expiry, nil when there is no active premium
// subscription.
func (m *Manager) ExpiresAt(ctx context.Context, userID int64) *time.Time {
	if m.Tier(ctx, userID) != models.TierPremium {
		return nil
	}
	sub, err := m.storage.GetSubscription(ctx, userID)
	if err != nil || sub == nil {
		return nil
	}
	return sub.ExpiresAt
}
