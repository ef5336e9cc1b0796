// Package flow owns the per-user conversation state machines and turns each
// completed flow into exactly one generation request.
//
// Two behaviors are intentional and documented, not unified:
//   - the category flow clears its awaiting-topic state even when topic
//     validation fails, so a failed validation exits the flow;
//   - the thread flow accepts its topic verbatim, without the length
//     validation the category flow applies.
package flow

import (
	"sync"

	"github.com/dkotenko/tweetgen-bot/internal/models"
)

// Step identifies where a user currently is across the three flows.
type Step int

const (
	StepNone Step = iota
	StepCategoryTopic
	StepThreadTopic
	StepThreadLength
	StepChoosingNiche
	StepChoosingTone
)

// state is the transient, process-local selection for one user. Dropped on
// restart; in-flight flows do not survive.
type state struct {
	step        Step
	category    models.Category
	threadTopic string
	niche       string
}

// states is a mutex-guarded map keyed by user id; no state is ever shared
// across users.
type states struct {
	mu sync.Mutex
	m  map[int64]*state
}

func newStates() *states {
	return &states{m: make(map[int64]*state)}
}

func (s *states) get(userID int64) state {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.m[userID]; ok {
		return *st
	}
	return state{}
}

func (s *states) set(userID int64, st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = &st
}

// clear drops the user's transient state, reporting whether any existed.
func (s *states) clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[userID]
	delete(s.m, userID)
	return ok
}

// Niches are the menu options for the preference wizard's first step.
func Niches() []string {
	return []string{"SaaS", "Marketing", "Technology", "Business", "Other"}
}

// Tones are the menu options for the preference wizard's second step.
func Tones() []string {
	return []string{"Professional", "Casual", "Humorous", "Educational"}
}

// ThreadLengths are the selectable thread sizes.
func ThreadLengths() []int {
	return []int{3, 5, 7, 10}
}

func validOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func validThreadLength(n int) bool {
	for _, l := range ThreadLengths() {
		if l == n {
			return true
		}
	}
	return false
}
