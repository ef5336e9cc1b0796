package flow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/generator"
	"github.com/dkotenko/tweetgen-bot/internal/history"
	"github.com/dkotenko/tweetgen-bot/internal/models"
	"github.com/dkotenko/tweetgen-bot/internal/storage"
	"github.com/dkotenko/tweetgen-bot/internal/subscription"
	"github.com/dkotenko/tweetgen-bot/internal/validation"
)

const threadPromptFormat = "Generate a coherent Twitter thread with %d tweets about %s. " +
	"Make sure the tweets flow naturally and build upon each other. " +
	"Number each tweet and ensure they're connected logically."

const directPromptFormat = "Generate 3 tweets about %s for the %s niche in a %s tone."

// ResultKind tells the transport what a completed turn produced.
type ResultKind int

const (
	// ResultNoFlow: free text arrived with no flow active; the user should
	// pick a category first.
	ResultNoFlow ResultKind = iota
	// ResultTweets: a generation finished; Tweets carries the output.
	ResultTweets
	// ResultAskLength: thread topic stored, ask for the thread length.
	ResultAskLength
	// ResultAskTone: niche stored, ask for the tone.
	ResultAskTone
	// ResultPreferencesSaved: the wizard finished; Preferences holds the pair.
	ResultPreferencesSaved
	// ResultInvalidOption: input did not match the offered menu; the flow
	// stays where it is.
	ResultInvalidOption
)

// Result is the outcome of one conversation turn.
type Result struct {
	Kind        ResultKind
	Category    models.Category
	Topic       string
	Tweets      []string
	Preferences models.Preferences
}

// Orchestrator drives the category, thread and preference flows. All
// collaborators are injected; nothing is reached through globals.
type Orchestrator struct {
	storage   storage.Storage
	subs      *subscription.Manager
	generator generator.Generator
	history   *history.Recorder
	logger    *zap.Logger
	states    *states
}

func NewOrchestrator(
	store storage.Storage,
	subs *subscription.Manager,
	gen generator.Generator,
	hist *history.Recorder,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		storage:   store,
		subs:      subs,
		generator: gen,
		history:   hist,
		logger:    logger,
		states:    newStates(),
	}
}

// SelectCategory enters the category flow. Unknown tags are rejected at the
// boundary and leave the user's state untouched.
func (o *Orchestrator) SelectCategory(userID int64, raw string) (models.Category, error) {
	category, err := models.ParseCategory(raw)
	if err != nil {
		return "", err
	}
	o.states.set(userID, state{step: StepCategoryTopic, category: category})
	return category, nil
}

// StartThread enters the thread flow. Returns false when the user is not
// premium; the flow is then not started.
func (o *Orchestrator) StartThread(ctx context.Context, userID int64) bool {
	if o.subs.Tier(ctx, userID) != models.TierPremium {
		return false
	}
	o.states.set(userID, state{step: StepThreadTopic})
	return true
}

// StartPreferences enters the preference wizard.
func (o *Orchestrator) StartPreferences(userID int64) {
	o.states.set(userID, state{step: StepChoosingNiche})
}

// Cancel discards any in-flight flow without side effects. It reports
// whether a flow was active.
func (o *Orchestrator) Cancel(userID int64) bool {
	return o.states.clear(userID)
}

// Step exposes the user's current position for the transport layer.
func (o *Orchestrator) Step(userID int64) Step {
	return o.states.get(userID).step
}

// HandleText advances whichever flow is waiting on free text.
func (o *Orchestrator) HandleText(ctx context.Context, userID int64, text string, onProgress generator.ProgressFunc) (*Result, error) {
	st := o.states.get(userID)

	switch st.step {
	case StepCategoryTopic:
		return o.finishCategory(ctx, userID, st.category, text, onProgress)

	case StepThreadTopic:
		// Topic is stored verbatim; the thread flow applies no length
		// validation.
		st.threadTopic = text
		st.step = StepThreadLength
		o.states.set(userID, st)
		return &Result{Kind: ResultAskLength, Topic: text}, nil

	case StepChoosingNiche:
		if !validOption(Niches(), text) {
			return &Result{Kind: ResultInvalidOption}, nil
		}
		st.niche = text
		st.step = StepChoosingTone
		o.states.set(userID, st)
		return &Result{Kind: ResultAskTone}, nil

	case StepChoosingTone:
		if !validOption(Tones(), text) {
			return &Result{Kind: ResultInvalidOption}, nil
		}
		prefs := models.Preferences{Niche: st.niche, Tone: text}
		if err := o.storage.SetPreferences(ctx, userID, prefs); err != nil {
			// Keep the state so the user can retry the tone selection.
			return nil, err
		}
		o.states.clear(userID)
		return &Result{Kind: ResultPreferencesSaved, Preferences: prefs}, nil

	default:
		return &Result{Kind: ResultNoFlow}, nil
	}
}

// SelectThreadLength completes the thread flow for a length picked off the
// menu. Lengths outside the menu leave the flow where it is.
func (o *Orchestrator) SelectThreadLength(ctx context.Context, userID int64, length int, onProgress generator.ProgressFunc) (*Result, error) {
	st := o.states.get(userID)
	if st.step != StepThreadLength {
		return &Result{Kind: ResultNoFlow}, nil
	}
	if !validThreadLength(length) {
		return &Result{Kind: ResultInvalidOption}, nil
	}
	o.states.clear(userID)

	prompt := fmt.Sprintf(threadPromptFormat, length, st.threadTopic)
	tweets, err := o.generator.Generate(ctx, prompt, length, onProgress)
	if err != nil {
		return nil, err
	}

	prefs := o.preferences(ctx, userID)
	o.history.Record(ctx, userID, models.GenerationInput{
		Topic: st.threadTopic,
		Niche: prefs.Niche,
		Tone:  prefs.Tone,
	}, tweets)

	return &Result{Kind: ResultTweets, Topic: st.threadTopic, Tweets: tweets}, nil
}

// GenerateDirect serves the /generate command: no flow, one validated topic.
func (o *Orchestrator) GenerateDirect(ctx context.Context, userID int64, rawTopic string, onProgress generator.ProgressFunc) (*Result, error) {
	topic, err := validation.Topic(rawTopic)
	if err != nil {
		return nil, err
	}

	// Non-critical write; a failure must not block the generation.
	if err := o.storage.UpdateLastActive(ctx, userID); err != nil {
		o.logger.Error("Failed to update last active",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}

	prefs := o.preferences(ctx, userID)
	prompt := fmt.Sprintf(directPromptFormat, topic, prefs.Niche, prefs.Tone)

	tweets, err := o.generator.Generate(ctx, prompt, 3, onProgress)
	if err != nil {
		return nil, err
	}

	o.history.Record(ctx, userID, models.GenerationInput{
		Topic: topic,
		Niche: prefs.Niche,
		Tone:  prefs.Tone,
	}, tweets)

	return &Result{Kind: ResultTweets, Topic: topic, Tweets: tweets}, nil
}

// finishCategory runs the terminal step of the category flow. The awaiting
// state is cleared up front, so a validation failure exits the flow; the
// user re-enters it from the category menu.
func (o *Orchestrator) finishCategory(ctx context.Context, userID int64, category models.Category, rawTopic string, onProgress generator.ProgressFunc) (*Result, error) {
	o.states.clear(userID)

	topic, err := validation.Topic(rawTopic)
	if err != nil {
		return nil, err
	}

	prefs := o.preferences(ctx, userID)
	prompt, err := category.Prompt(topic, prefs.Niche, prefs.Tone)
	if err != nil {
		return nil, err
	}

	tweets, err := o.generator.Generate(ctx, prompt, 1, onProgress)
	if err != nil {
		return nil, err
	}

	o.history.Record(ctx, userID, models.GenerationInput{
		Topic:    topic,
		Category: string(category),
		Niche:    prefs.Niche,
		Tone:     prefs.Tone,
	}, tweets)

	return &Result{Kind: ResultTweets, Category: category, Topic: topic, Tweets: tweets}, nil
}

// preferences loads the stored pair, falling back to the defaults both when
// nothing is stored and when the read fails.
func (o *Orchestrator) preferences(ctx context.Context, userID int64) models.Preferences {
	prefs, err := o.storage.GetPreferences(ctx, userID)
	if err != nil {
		o.logger.Error("Failed to get preferences",
			zap.Error(err),
			zap.Int64("user_id", userID))
		return models.DefaultPreferences()
	}
	if prefs == nil {
		return models.DefaultPreferences()
	}
	return *prefs
}
