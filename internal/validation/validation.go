// Package validation bounds-checks free-text input before it reaches the
// generation pipeline.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/dkotenko/tweetgen-bot/internal/errs"
)

const (
	minTopicLength = 3
	maxTopicLength = 100
)

// Topic trims the input and enforces the [3,100] length bounds. The returned
// string is the trimmed input, otherwise unchanged.
func Topic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", errs.Validation("Topic cannot be empty.")
	}
	length := utf8.RuneCountInString(topic)
	if length < minTopicLength {
		return "", errs.Validation("Topic must be at least 3 characters long.")
	}
	if length > maxTopicLength {
		return "", errs.Validation("Topic must be less than 100 characters.")
	}
	return topic, nil
}
