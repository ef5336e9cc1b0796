package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

func TestMemoryUserLifecycle(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	user, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, s.UpsertUser(ctx, &models.User{ID: 1, Username: "alice", FirstName: "Alice"}))

	user, err = s.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())
	created := user.CreatedAt

	// Re-registering keeps the original creation time and stored preferences.
	require.NoError(t, s.SetPreferences(ctx, 1, models.Preferences{Niche: "SaaS", Tone: "Casual"}))
	require.NoError(t, s.UpsertUser(ctx, &models.User{ID: 1, Username: "alice2"}))

	user, err = s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, created, user.CreatedAt)
	require.NotNil(t, user.Preferences)
	assert.Equal(t, "SaaS", user.Preferences.Niche)
}

func TestMemoryPreferences(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	prefs, err := s.GetPreferences(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, prefs)

	// Creates the user row when it does not exist.
	require.NoError(t, s.SetPreferences(ctx, 1, models.Preferences{Niche: "Marketing", Tone: "Humorous"}))

	prefs, err = s.GetPreferences(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, models.Preferences{Niche: "Marketing", Tone: "Humorous"}, *prefs)

	// Last writer wins.
	require.NoError(t, s.SetPreferences(ctx, 1, models.Preferences{Niche: "Other", Tone: "Educational"}))
	prefs, err = s.GetPreferences(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Other", prefs.Niche)
}

func TestMemorySubscription(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	sub, err := s.GetSubscription(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, sub)

	expires := time.Now().Add(24 * time.Hour)
	require.NoError(t, s.UpsertSubscription(ctx, &models.Subscription{
		UserID:    1,
		Tier:      models.TierPremium,
		ExpiresAt: &expires,
	}))

	sub, err = s.GetSubscription(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.TierPremium, sub.Tier)
	require.NotNil(t, sub.ExpiresAt)
	assert.True(t, sub.ExpiresAt.Equal(expires))
}

func TestMemoryHistory(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	entries, err := s.GetHistory(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for _, topic := range []string{"first", "second", "third"} {
		require.NoError(t, s.AppendHistory(ctx, &models.HistoryEntry{
			ID:     topic,
			UserID: 1,
			Input:  models.GenerationInput{Topic: topic},
			Tweets: []string{"tweet about " + topic},
		}))
	}

	entries, err = s.GetHistory(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Input.Topic)
	assert.Equal(t, "first", entries[2].Input.Topic)

	limited, err := s.GetHistory(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "third", limited[0].Input.Topic)

	// History is per user.
	entries, err = s.GetHistory(ctx, 2, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
