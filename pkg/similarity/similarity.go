// Package similarity scores a question against previously answered questions
// using a TF-IDF vector space built fresh for every query.
//
// The weighting follows the common smooth-idf formulation:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// where n is the number of documents (the question plus every candidate) and
// df(t) the number of documents containing term t. Term frequencies are raw
// counts and every vector is L2-normalised, so the dot product of two vectors
// is their cosine similarity.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/papercomputeco/verde/pkg/exchange"
)

// DefaultThreshold is the score a candidate must strictly exceed to count as
// a match.
const DefaultThreshold = 0.3

// Match is a scored candidate.
type Match struct {
	// Index is the candidate's position in the input slice.
	Index int `json:"index"`

	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// Tokenize lowercases text and splits it into runs of two or more word
// characters (letters, numbers or underscore). Punctuation and single
// characters are dropped.
func Tokenize(text string) []string {
	var (
		tokens []string
		cur    []rune
	)

	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// Score ranks candidates by their similarity to question, highest first.
// Candidates with equal scores keep their input order. An empty candidate
// list yields nil without building a vector space.
func Score(question string, candidates []exchange.Pair) []Match {
	if len(candidates) == 0 {
		return nil
	}

	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, Tokenize(question))
	for _, c := range candidates {
		docs = append(docs, Tokenize(c.Question))
	}

	idf := inverseDocumentFrequency(docs)
	query := weigh(docs[0], idf)

	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = Match{
			Index:    i,
			Question: c.Question,
			Answer:   c.Answer,
			Score:    dot(query, weigh(docs[i+1], idf)),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Pick returns the top match when its score strictly exceeds threshold.
// matches must already be ranked, as returned by Score.
func Pick(matches []Match, threshold float64) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}

	best := matches[0]
	if best.Score > threshold {
		return best, true
	}
	return Match{}, false
}

// BestMatch scores candidates and returns the best one when it clears
// threshold.
func BestMatch(question string, candidates []exchange.Pair, threshold float64) (Match, bool) {
	return Pick(Score(question, candidates), threshold)
}

type vector map[string]float64

func inverseDocumentFrequency(docs [][]string) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if seen[term] {
				continue
			}
			seen[term] = true
			df[term]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return idf
}

// weigh builds the L2-normalised tf-idf vector of a tokenized document.
// Terms are visited in sorted order so identical documents produce
// bit-identical vectors.
func weigh(doc []string, idf map[string]float64) vector {
	v := make(vector, len(doc))
	for _, term := range doc {
		v[term]++
	}

	terms := v.terms()
	var norm float64
	for _, term := range terms {
		w := v[term] * idf[term]
		v[term] = w
		norm += w * w
	}

	if norm == 0 {
		return v
	}

	norm = math.Sqrt(norm)
	for _, term := range terms {
		v[term] /= norm
	}
	return v
}

func (v vector) terms() []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// dot sums over the query's terms in sorted order.
func dot(query, doc vector) float64 {
	var sum float64
	for _, term := range query.terms() {
		sum += query[term] * doc[term]
	}
	return sum
}
