package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
)

const systemPrompt = `You are an expert social media strategist and conversational AI specializing in Tweet generation.
Transform a given headline or question into a single, engaging tweet that:
- If given a headline: Rewrite it into an engaging format with added context and insights
- If given a question: Provide a thoughtful, informative answer in tweet format
- Uses a natural, conversational tone that sounds authentically human
- Writes like a real person sharing their thoughts, not a corporate account
- Incorporates casual language, contractions, and occasional slang when appropriate
- Uses emojis naturally like a social media native would
- Includes relevant hashtags that feel organic, not forced
- Can occasionally ask rhetorical questions to engage readers
- Maintains a friendly, approachable voice

Important: Generate only ONE tweet, formatted to be easily readable and under 280 characters. The tweet should feel like it's coming from a real person having a conversation.`

const userPromptFormat = `Create ONE engaging tweet about the headline: %s

Your tweet should:
- Hook the reader in the first few words
- Include a clear value proposition or insight
- Be conversational and authentic

Important: Generate only ONE tweet, under 280 characters.`

// completionAPI is the slice of the OpenAI client the generator needs;
// satisfied by *openai.Client and by fakes in tests.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIGenerator struct {
	client         completionAPI
	apiKey         string
	model          string
	maxTokens      int
	temperature    float32
	requestTimeout time.Duration
	logger         *zap.Logger
}

func NewOpenAIGenerator(apiKey, model string, maxTokens int, temperature float64, requestTimeout time.Duration, logger *zap.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:         openai.NewClient(apiKey),
		apiKey:         apiKey,
		model:          model,
		maxTokens:      maxTokens,
		temperature:    float32(temperature),
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Generate issues one completion request per item. Individual failures are
// logged and skipped; the relative order of successful items is preserved.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, n int, onProgress ProgressFunc) ([]string, error) {
	if g.apiKey == "" {
		g.logger.Error("OpenAI API key not configured")
		return nil, errs.Generation("API key not configured", nil)
	}
	if n < 1 {
		n = 1
	}

	g.logger.Info("Generating tweets",
		zap.Int("count", n),
		zap.String("model", g.model))

	userPrompt := fmt.Sprintf(userPromptFormat, prompt)

	var tweets []string
	for i := 0; i < n; i++ {
		if onProgress != nil {
			onProgress(i+1, n)
		}

		tweet, err := g.generateOne(ctx, userPrompt)
		if err != nil {
			g.logger.Error("Failed to generate tweet",
				zap.Error(err),
				zap.Int("index", i+1),
				zap.Int("count", n))
			continue
		}
		tweets = append(tweets, tweet)
	}

	if len(tweets) == 0 {
		return []string{FallbackNotice}, nil
	}
	return tweets, nil
}

func (g *OpenAIGenerator) generateOne(ctx context.Context, userPrompt string) (string, error) {
	reqCtx := ctx
	if g.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		MaxTokens:        g.maxTokens,
		Temperature:      g.temperature,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return sanitize(resp.Choices[0].Message.Content), nil
}

// sanitize removes surrounding whitespace and any enumeration markup the
// backend may have prepended (numbering, periods, dashes, bullets).
func sanitize(tweet string) string {
	tweet = strings.TrimSpace(tweet)
	tweet = strings.TrimLeft(tweet, "0123456789.-• ")
	return strings.TrimSpace(tweet)
}
