// Package history records completed generations and reads them back.
package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
	"github.com/dkotenko/tweetgen-bot/internal/models"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
)

// DefaultLimit bounds the summary view when no limit is configured.
const DefaultLimit = 5

type Recorder struct {
	storage storage.Storage
	limit   int
	logger  *zap.Logger
}

func NewRecorder(storage storage.Storage, limit int, logger *zap.Logger) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{storage: storage, limit: limit, logger: logger}
}

// Record appends one entry. It is best-effort: a storage failure is logged
// and swallowed so it never masks a generation that already succeeded.
func (r *Recorder) Record(ctx context.Context, userID int64, input models.GenerationInput, tweets []string) {
	entry := &models.HistoryEntry{
		ID:     uuid.New().String(),
		UserID: userID,
		Input:  input,
		Tweets: tweets,
	}
	if err := r.storage.AppendHistory(ctx, entry); err != nil {
		r.logger.Error("Failed to record history entry",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("topic", input.Topic))
	}
}

// Recent returns the newest entries, most recent first. limit <= 0 applies
// the configured summary bound.
func (r *Recorder) Recent(ctx context.Context, userID int64, limit int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = r.limit
	}
	return r.storage.GetHistory(ctx, userID, limit)
}

// Detail returns the full entry at index into the most-recent-first list.
func (r *Recorder) Detail(ctx context.Context, userID int64, index int) (*models.HistoryEntry, error) {
	entries, err := r.storage.GetHistory(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, errs.NotFound(fmt.Sprintf("history entry %d not found", index))
	}
	return entries[index], nil
}
