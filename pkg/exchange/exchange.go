// Package exchange defines the persisted question/answer record and the
// content hash used to key it.
package exchange

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Category tags which resolution path produced an answer.
type Category string

const (
	CategoryMemory        Category = "memory"
	CategoryEnvironmental Category = "environmental"
	CategorySearch        Category = "search"
	CategoryGeneral       Category = "general"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMemory, CategoryEnvironmental, CategorySearch, CategoryGeneral:
		return true
	default:
		return false
	}
}

// Exchange is one answered question.
type Exchange struct {
	// ID is assigned by the storage driver and increases with every write.
	ID int64 `json:"id"`

	// QuestionHash is the content hash of the normalized question text and
	// is the upsert key: at most one exchange exists per hash.
	QuestionHash string `json:"question_hash"`

	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Category Category  `json:"category"`
	Created  time.Time `json:"timestamp"`
}

// Pair is the (question, answer) view of an exchange used by the similarity
// lookup.
type Pair struct {
	Question string
	Answer   string
}

// Pair returns the question/answer pair for e.
func (e *Exchange) Pair() Pair {
	return Pair{Question: e.Question, Answer: e.Answer}
}

// NormalizeQuestion trims surrounding whitespace. Casing and inner spacing
// are preserved so that only textually identical questions share a hash.
func NormalizeQuestion(question string) string {
	return strings.TrimSpace(question)
}

// HashQuestion returns the hex-encoded SHA-256 of the normalized question.
func HashQuestion(question string) string {
	sum := sha256.Sum256([]byte(NormalizeQuestion(question)))
	return hex.EncodeToString(sum[:])
}

// New builds an exchange for question/answer stamped with now (UTC).
// The ID is left for the storage driver to assign.
func New(question, answer string, category Category, now time.Time) *Exchange {
	return &Exchange{
		QuestionHash: HashQuestion(question),
		Question:     question,
		Answer:       answer,
		Category:     category,
		Created:      now.UTC(),
	}
}
