package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("too short")))
	assert.Equal(t, KindGeneration, KindOf(Generation("backend down", errors.New("dial tcp"))))
	assert.Equal(t, KindPersistence, KindOf(Persistence("write failed", errors.New("conn reset"))))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindUnclassified, KindOf(errors.New("anything")))
	assert.Equal(t, KindUnclassified, KindOf(nil))

	// Kinds survive wrapping.
	wrapped := fmt.Errorf("handling update: %w", Validation("too short"))
	assert.Equal(t, KindValidation, KindOf(wrapped))
}

func TestUserMessage(t *testing.T) {
	// Only validation failures expose their reason text.
	msg := UserMessage(Validation("Topic must be at least 3 characters long."))
	assert.Contains(t, msg, "Topic must be at least 3 characters long.")

	msg = UserMessage(Generation("API key not configured", nil))
	assert.NotContains(t, msg, "API key")

	msg = UserMessage(Persistence("error upserting subscription", errors.New("pq: connection refused")))
	assert.NotContains(t, msg, "pq:")

	assert.Equal(t, "Entry not found.", UserMessage(NotFound("history entry 9 not found")))

	// Foreign errors fall through to the generic message.
	assert.Contains(t, UserMessage(errors.New("boom")), "unexpected error")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Generation("request failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "timeout")
}
