package models

import (
	"fmt"
	"strings"
)

// Category is a closed set of tweet styles. Unknown tags coming in from
// button payloads are rejected by ParseCategory at the boundary.
type Category string

const (
	CategoryEducational   Category = "educational"
	CategoryStorytelling  Category = "storytelling"
	CategoryInspirational Category = "inspirational"
)

// Categories lists all members in menu order.
func Categories() []Category {
	return []Category{CategoryEducational, CategoryStorytelling, CategoryInspirational}
}

var categoryDescriptions = map[Category]string{
	CategoryEducational:   "Informational tweets that teach or explain concepts",
	CategoryStorytelling:  "Narrative tweets that share experiences or anecdotes",
	CategoryInspirational: "Motivational tweets that inspire and encourage",
}

var categoryPrompts = map[Category]string{
	CategoryEducational: "Write a concise and educational tweet about '{topic}' that teaches the reader " +
		"something valuable. Focus on the {niche} niche with a {tone} tone. " +
		"Include a key insight or statistic if relevant.",
	CategoryStorytelling: "Create a compelling story-based tweet about '{topic}' that resonates with " +
		"readers in the {niche} space. Use a {tone} tone and focus on a specific " +
		"moment or experience that delivers value.",
	CategoryInspirational: "Compose an inspiring tweet about '{topic}' that motivates readers in the " +
		"{niche} field. Maintain a {tone} tone while encouraging action or " +
		"perspective shift.",
}

// ParseCategory validates a raw tag (e.g. from a callback payload).
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categoryPrompts[c]; !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Title returns the menu display name.
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Description returns the short menu description.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

// Prompt substitutes topic, niche and tone into the category's template.
func (c Category) Prompt(topic, niche, tone string) (string, error) {
	tmpl, ok := categoryPrompts[c]
	if !ok {
		return "", fmt.Errorf("unknown category %q", string(c))
	}
	r := strings.NewReplacer("{topic}", topic, "{niche}", niche, "{tone}", tone)
	return r.Replace(tmpl), nil
}
