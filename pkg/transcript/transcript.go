// Package transcript keeps the ordered list of turns exchanged during a chat
// session.
package transcript

import (
	"encoding/json"
	"time"

	"github.com/papercomputeco/verde/pkg/exchange"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in a transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Category and Resolver are set on assistant turns only.
	Category exchange.Category `json:"category,omitempty"`
	Resolver string            `json:"resolver,omitempty"`

	At time.Time `json:"at"`
}

// Transcript is an append-only, ordered sequence of turns (oldest first).
// The zero value is an empty transcript ready to use.
type Transcript struct {
	turns []Turn
}

// New returns a transcript seeded with turns.
func New(turns ...Turn) *Transcript {
	t := &Transcript{}
	t.turns = append(t.turns, turns...)
	return t
}

// Append adds a turn at the end of the transcript.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// AddQuestion records a user question.
func (t *Transcript) AddQuestion(question string, at time.Time) {
	t.Append(Turn{Role: RoleUser, Content: question, At: at})
}

// AddAnswer records an assistant answer with the category that resolved it.
func (t *Transcript) AddAnswer(answer string, category exchange.Category, resolver string, at time.Time) {
	t.Append(Turn{
		Role:     RoleAssistant,
		Content:  answer,
		Category: category,
		Resolver: resolver,
		At:       at,
	})
}

// Turns returns a copy of the turns in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Reset removes every turn.
func (t *Transcript) Reset() {
	t.turns = nil
}

type document struct {
	Turns []Turn `json:"turns"`
}

// MarshalJSON encodes the transcript as {"turns": [...]}.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	turns := t.turns
	if turns == nil {
		turns = []Turn{}
	}
	return json.Marshal(document{Turns: turns})
}

// UnmarshalJSON replaces the transcript with the decoded turns.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	t.turns = doc.Turns
	return nil
}
