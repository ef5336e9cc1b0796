package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
	"github.com/dkotenko/tweetgen-bot/internal/generator"
	"github.com/dkotenko/tweetgen-bot/internal/history"
	"github.com/dkotenko/tweetgen-bot/internal/models"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
	"github.com/dkotenko/tweetgen-bot/internal/subscription"
)

type genCall struct {
	prompt string
	count  int
}

// fakeGenerator returns one canned tweet per requested item and records
// every call.
type fakeGenerator struct {
	calls []genCall
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, n int, onProgress generator.ProgressFunc) ([]string, error) {
	f.calls = append(f.calls, genCall{prompt: prompt, count: n})
	if f.err != nil {
		return nil, f.err
	}
	tweets := make([]string, n)
	for i := range tweets {
		tweets[i] = fmt.Sprintf("tweet %d", i+1)
	}
	return tweets, nil
}

type fixture struct {
	orchestrator *Orchestrator
	store        storage.Storage
	gen          *fakeGenerator
	subs         *subscription.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := storage.NewMemoryStorage()
	gen := &fakeGenerator{}
	subs := subscription.NewManager(store, logger)
	recorder := history.NewRecorder(store, 0, logger)
	return &fixture{
		orchestrator: NewOrchestrator(store, subs, gen, recorder, logger),
		store:        store,
		gen:          gen,
		subs:         subs,
	}
}

func TestCategoryFlowEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	category, err := f.orchestrator.SelectCategory(userID, "educational")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryEducational, category)
	assert.Equal(t, StepCategoryTopic, f.orchestrator.Step(userID))

	result, err := f.orchestrator.HandleText(ctx, userID, "remote work trends", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultTweets, result.Kind)
	assert.Equal(t, models.CategoryEducational, result.Category)
	assert.Equal(t, "remote work trends", result.Topic)
	assert.Equal(t, []string{"tweet 1"}, result.Tweets)

	// Defaults apply for a user with no stored preferences.
	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, 1, f.gen.calls[0].count)
	assert.Contains(t, f.gen.calls[0].prompt, "remote work trends")
	assert.Contains(t, f.gen.calls[0].prompt, "General")
	assert.Contains(t, f.gen.calls[0].prompt, "Professional")

	entries, err := f.store.GetHistory(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "remote work trends", entries[0].Input.Topic)
	assert.Equal(t, "educational", entries[0].Input.Category)
	assert.Equal(t, "General", entries[0].Input.Niche)
	assert.Equal(t, "Professional", entries[0].Input.Tone)
	assert.Equal(t, []string{"tweet 1"}, entries[0].Tweets)

	// The flow is terminal; the next message has no flow to feed.
	assert.Equal(t, StepNone, f.orchestrator.Step(userID))
}

func TestCategoryFlowUsesStoredPreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	require.NoError(t, f.store.SetPreferences(ctx, userID, models.Preferences{Niche: "SaaS", Tone: "Casual"}))

	_, err := f.orchestrator.SelectCategory(userID, "storytelling")
	require.NoError(t, err)
	_, err = f.orchestrator.HandleText(ctx, userID, "founder stories", nil)
	require.NoError(t, err)

	require.Len(t, f.gen.calls, 1)
	assert.Contains(t, f.gen.calls[0].prompt, "SaaS")
	assert.Contains(t, f.gen.calls[0].prompt, "Casual")
}

func TestCategoryFlowValidationFailureExitsFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	_, err := f.orchestrator.SelectCategory(userID, "educational")
	require.NoError(t, err)

	_, err = f.orchestrator.HandleText(ctx, userID, "ab", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Empty(t, f.gen.calls)

	// The awaiting state is cleared even on validation failure: the next
	// message no longer belongs to the flow.
	assert.Equal(t, StepNone, f.orchestrator.Step(userID))
	result, err := f.orchestrator.HandleText(ctx, userID, "a perfectly fine topic", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultNoFlow, result.Kind)
}

func TestSelectCategoryRejectsUnknownTag(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.SelectCategory(7, "clickbait")
	require.Error(t, err)
	assert.Equal(t, StepNone, f.orchestrator.Step(7))
}

func TestTextWithoutFlow(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator.HandleText(context.Background(), 7, "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultNoFlow, result.Kind)
	assert.Empty(t, f.gen.calls)
}

func TestThreadFlowGatedForFreeUser(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.orchestrator.StartThread(context.Background(), 7))
	assert.Equal(t, StepNone, f.orchestrator.Step(7))
	assert.Empty(t, f.gen.calls)
}

func TestThreadFlowEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	require.NoError(t, f.subs.ActivatePremium(ctx, userID, 30))
	require.True(t, f.orchestrator.StartThread(ctx, userID))

	// Thread topics are taken verbatim; even a two-character topic passes.
	result, err := f.orchestrator.HandleText(ctx, userID, "go", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultAskLength, result.Kind)
	assert.Equal(t, StepThreadLength, f.orchestrator.Step(userID))

	result, err = f.orchestrator.SelectThreadLength(ctx, userID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, ResultTweets, result.Kind)
	assert.Len(t, result.Tweets, 5)

	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, 5, f.gen.calls[0].count)
	assert.Contains(t, f.gen.calls[0].prompt, "5 tweets about go")

	entries, err := f.store.GetHistory(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "go", entries[0].Input.Topic)
	assert.Empty(t, entries[0].Input.Category)

	assert.Equal(t, StepNone, f.orchestrator.Step(userID))
}

func TestThreadFlowRejectsLengthOffMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	require.NoError(t, f.subs.ActivatePremium(ctx, userID, 30))
	require.True(t, f.orchestrator.StartThread(ctx, userID))
	_, err := f.orchestrator.HandleText(ctx, userID, "topic", nil)
	require.NoError(t, err)

	result, err := f.orchestrator.SelectThreadLength(ctx, userID, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, ResultInvalidOption, result.Kind)
	assert.Empty(t, f.gen.calls)
	// Still waiting for a valid length.
	assert.Equal(t, StepThreadLength, f.orchestrator.Step(userID))
}

func TestThreadLengthWithoutFlow(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator.SelectThreadLength(context.Background(), 7, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, ResultNoFlow, result.Kind)
}

func TestPreferenceFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	f.orchestrator.StartPreferences(userID)

	result, err := f.orchestrator.HandleText(ctx, userID, "Marketing", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultAskTone, result.Kind)

	result, err = f.orchestrator.HandleText(ctx, userID, "Humorous", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultPreferencesSaved, result.Kind)
	assert.Equal(t, models.Preferences{Niche: "Marketing", Tone: "Humorous"}, result.Preferences)

	prefs, err := f.store.GetPreferences(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "Marketing", prefs.Niche)
	assert.Equal(t, "Humorous", prefs.Tone)
}

func TestPreferenceFlowRejectsOffMenuInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	f.orchestrator.StartPreferences(userID)

	result, err := f.orchestrator.HandleText(ctx, userID, "Underwater Basket Weaving", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultInvalidOption, result.Kind)
	assert.Equal(t, StepChoosingNiche, f.orchestrator.Step(userID))

	// Nothing was written.
	prefs, err := f.store.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestCancelDiscardsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	assert.False(t, f.orchestrator.Cancel(userID))

	f.orchestrator.StartPreferences(userID)
	result, err := f.orchestrator.HandleText(ctx, userID, "SaaS", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultAskTone, result.Kind)

	assert.True(t, f.orchestrator.Cancel(userID))
	assert.Equal(t, StepNone, f.orchestrator.Step(userID))

	// No partial preferences survive a cancel.
	prefs, err := f.store.GetPreferences(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestGenerateDirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	result, err := f.orchestrator.GenerateDirect(ctx, userID, " AI in healthcare ", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultTweets, result.Kind)
	assert.Equal(t, "AI in healthcare", result.Topic)
	assert.Len(t, result.Tweets, 3)

	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, 3, f.gen.calls[0].count)
	assert.Contains(t, f.gen.calls[0].prompt, "AI in healthcare")

	entries, err := f.store.GetHistory(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Input.Category)
}

func TestGenerateDirectValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.orchestrator.GenerateDirect(context.Background(), 7, "", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Empty(t, f.gen.calls)
}

func TestGenerationErrorPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	f.gen.err = errs.Generation("API key not configured", nil)

	_, err := f.orchestrator.SelectCategory(userID, "inspirational")
	require.NoError(t, err)
	_, err = f.orchestrator.HandleText(ctx, userID, "a valid topic", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindGeneration, errs.KindOf(err))

	// Nothing is recorded for a failed generation.
	entries, lookupErr := f.store.GetHistory(ctx, userID, 0)
	require.NoError(t, lookupErr)
	assert.Empty(t, entries)
}

func TestFlowStateIsolatedPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orchestrator.SelectCategory(1, "educational")
	require.NoError(t, err)
	f.orchestrator.StartPreferences(2)

	assert.Equal(t, StepCategoryTopic, f.orchestrator.Step(1))
	assert.Equal(t, StepChoosingNiche, f.orchestrator.Step(2))

	// User 2's wizard input does not disturb user 1's category flow.
	result, err := f.orchestrator.HandleText(ctx, 2, "Business", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultAskTone, result.Kind)
	assert.Equal(t, StepCategoryTopic, f.orchestrator.Step(1))
}

func TestSubscriptionActivationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const userID int64 = 7

	// Payload duration 365 arrives for a user with no prior subscription.
	require.NoError(t, f.subs.ActivatePremium(ctx, userID, 365))

	assert.Equal(t, models.TierPremium, f.subs.Tier(ctx, userID))
	expires := f.subs.ExpiresAt(ctx, userID)
	require.NotNil(t, expires)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 365), *expires, time.Minute)
}
