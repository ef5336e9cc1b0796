package storage

import (
	"context"
	"sync"
	"time"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

// MemoryStorage is the in-memory Storage used for tests and local runs.
type MemoryStorage struct {
	mu            sync.RWMutex
	users         map[int64]*models.User
	subscriptions map[int64]*models.Subscription
	history       map[int64][]*models.HistoryEntry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:         make(map[int64]*models.User),
		subscriptions: make(map[int64]*models.Subscription),
		history:       make(map[int64][]*models.HistoryEntry),
	}
}

func (s *MemoryStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStorage) UpsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	copied := *user
	if exists {
		copied.CreatedAt = existing.CreatedAt
		if copied.Preferences == nil {
			copied.Preferences = existing.Preferences
		}
	} else {
		copied.CreatedAt = time.Now()
	}
	copied.LastActive = time.Now()
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStorage) UpdateLastActive(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, exists := s.users[userID]; exists {
		user.LastActive = time.Now()
	}
	return nil
}

func (s *MemoryStorage) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists || user.Preferences == nil {
		return nil, nil
	}
	prefs := *user.Preferences
	return &prefs, nil
}

func (s *MemoryStorage) SetPreferences(ctx context.Context, userID int64, prefs models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		user = &models.User{ID: userID, CreatedAt: time.Now()}
		s.users[userID] = user
	}
	copied := prefs
	user.Preferences = &copied
	user.LastActive = time.Now()
	return nil
}

func (s *MemoryStorage) GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subscriptions[userID]
	if !exists {
		return nil, nil
	}
	copied := *sub
	if sub.ExpiresAt != nil {
		t := *sub.ExpiresAt
		copied.ExpiresAt = &t
	}
	return &copied, nil
}

func (s *MemoryStorage) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sub
	if sub.ExpiresAt != nil {
		t := *sub.ExpiresAt
		copied.ExpiresAt = &t
	}
	s.subscriptions[sub.UserID] = &copied
	return nil
}

func (s *MemoryStorage) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	copied.Tweets = append([]string(nil), entry.Tweets...)
	// Newest entries are kept at the front to match the Postgres ordering.
	s.history[entry.UserID] = append([]*models.HistoryEntry{&copied}, s.history[entry.UserID]...)
	return nil
}

func (s *MemoryStorage) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[userID]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	result := make([]*models.HistoryEntry, len(entries))
	for i, entry := range entries {
		copied := *entry
		copied.Tweets = append([]string(nil), entry.Tweets...)
		result[i] = &copied
	}
	return result, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
