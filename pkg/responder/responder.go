// Package responder resolves a question through a fixed priority chain:
// recall of a similar past exchange, environmental tips, an explicit search
// request, general replies and finally a web search on the raw question.
// Every answer except a recalled one is persisted.
package responder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/metrics"
	"github.com/papercomputeco/verde/pkg/rules"
	"github.com/papercomputeco/verde/pkg/similarity"
	"github.com/papercomputeco/verde/pkg/storage"
	"github.com/papercomputeco/verde/pkg/websearch"
	"github.com/papercomputeco/verde/pkg/worker"
)

// DefaultRecentLimit is the number of recent exchanges considered for recall.
const DefaultRecentLimit = 10

// Resolver names identify the step of the chain that produced an answer.
// Both search steps store the search category; the resolver tells them apart.
const (
	ResolverMemory         = "memory"
	ResolverEnvironmental  = "environmental"
	ResolverSearchIntent   = "search_intent"
	ResolverGeneral        = "general"
	ResolverSearchFallback = "search_fallback"
)

// Display prefixes for search answers.
const (
	SearchIntentPrefix   = "🔍 **Respuesta de búsqueda:**\n"
	SearchFallbackPrefix = "🤖 **Respuesta:**\n"
)

// Searcher looks a query up. Implementations never fail: a failed lookup is
// reported through Result.Err with displayable fallback text.
type Searcher interface {
	Search(ctx context.Context, query string) websearch.Result
}

// Config configures a Responder.
type Config struct {
	// Driver persists and recalls exchanges.
	Driver storage.Driver

	// Searcher performs the explicit and fallback web searches.
	Searcher Searcher

	// Environmental and General are the keyword tables checked in order.
	// A table with no rules is replaced by the built-in one.
	Environmental rules.Table
	General       rules.Table

	// SiteSuffix is appended to explicit search queries
	// (defaults to websearch.DefaultSiteSuffix).
	SiteSuffix string

	// RecentLimit bounds the recall candidates (defaults to DefaultRecentLimit).
	RecentLimit int

	// Threshold is the similarity a recalled answer must strictly exceed
	// (defaults to similarity.DefaultThreshold).
	Threshold float64

	// Pool publishes an event for every persisted exchange. Optional.
	Pool *worker.Pool

	// Metrics records resolutions. Optional.
	Metrics *metrics.Metrics

	// Now overrides the clock used to stamp exchanges.
	Now func() time.Time

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Resolution is the outcome of answering one question.
type Resolution struct {
	Question string `json:"question"`

	// Answer is the raw answer text, as stored.
	Answer string `json:"answer"`

	// Display is the answer formatted for the chat output.
	Display string `json:"display"`

	Category exchange.Category `json:"category"`
	Resolver string            `json:"resolver"`

	// Score is the similarity of the recalled question; zero otherwise.
	Score float64 `json:"score"`

	// Exchange is the persisted record. Nil when the answer was recalled.
	Exchange *exchange.Exchange `json:"-"`
}

// Responder answers questions.
type Responder struct {
	config Config
	logger *zap.Logger
}

// New creates a Responder, filling unset Config fields with defaults.
func New(c Config) (*Responder, error) {
	if c.Driver == nil {
		return nil, errors.New("responder requires a storage driver")
	}
	if c.Searcher == nil {
		return nil, errors.New("responder requires a searcher")
	}
	if len(c.Environmental.Rules) == 0 {
		c.Environmental = rules.EnvironmentalTips()
	}
	if len(c.General.Rules) == 0 {
		c.General = rules.GeneralReplies()
	}
	if c.SiteSuffix == "" {
		c.SiteSuffix = websearch.DefaultSiteSuffix
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = DefaultRecentLimit
	}
	if c.Threshold <= 0 {
		c.Threshold = similarity.DefaultThreshold
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &Responder{config: c, logger: c.Logger}, nil
}

// Metrics returns the collectors resolutions are recorded into, or nil.
func (r *Responder) Metrics() *metrics.Metrics {
	return r.config.Metrics
}

// Respond resolves question. Only storage failures are returned as errors;
// search failures degrade to websearch.NoInformation.
func (r *Responder) Respond(ctx context.Context, question string) (*Resolution, error) {
	start := time.Now()

	res, err := r.resolve(ctx, question)
	if err != nil {
		r.logger.Error("failed to resolve question",
			zap.String("question", question),
			zap.Error(err),
		)
		return nil, err
	}

	r.config.Metrics.ObserveResolution(string(res.Category), res.Resolver, time.Since(start))
	r.logger.Info("question resolved",
		zap.String("category", string(res.Category)),
		zap.String("resolver", res.Resolver),
		zap.Float64("score", res.Score),
		zap.Duration("elapsed", time.Since(start)),
	)

	return res, nil
}

func (r *Responder) resolve(ctx context.Context, question string) (*Resolution, error) {
	match, ok, err := r.recall(ctx, question)
	if err != nil {
		return nil, err
	}
	if ok {
		return &Resolution{
			Question: question,
			Answer:   match.Answer,
			Display:  match.Answer,
			Category: exchange.CategoryMemory,
			Resolver: ResolverMemory,
			Score:    match.Score,
		}, nil
	}

	if rule, ok := r.config.Environmental.Match(question); ok {
		r.logger.Debug("environmental rule matched", zap.String("rule", rule.Name))
		return r.record(ctx, question, rule.Response, rule.Response, rule.Category, ResolverEnvironmental)
	}

	if query, ok := websearch.ParseIntent(question, r.config.SiteSuffix); ok {
		text := r.search(ctx, query)
		return r.record(ctx, question, text, SearchIntentPrefix+text, exchange.CategorySearch, ResolverSearchIntent)
	}

	if rule, ok := r.config.General.Match(question); ok {
		r.logger.Debug("general rule matched", zap.String("rule", rule.Name))
		return r.record(ctx, question, rule.Response, rule.Response, rule.Category, ResolverGeneral)
	}

	text := r.search(ctx, question)
	return r.record(ctx, question, text, SearchFallbackPrefix+text, exchange.CategorySearch, ResolverSearchFallback)
}

// recall scores question against the most recent exchanges.
func (r *Responder) recall(ctx context.Context, question string) (similarity.Match, bool, error) {
	recent, err := r.config.Driver.Recent(ctx, r.config.RecentLimit)
	if err != nil {
		return similarity.Match{}, false, fmt.Errorf("loading recent exchanges: %w", err)
	}
	if len(recent) == 0 {
		return similarity.Match{}, false, nil
	}

	match, ok := similarity.BestMatch(question, pairs(recent), r.config.Threshold)
	if ok {
		r.logger.Debug("recalled similar exchange",
			zap.String("recalled_question", match.Question),
			zap.Float64("score", match.Score),
		)
	}
	return match, ok, nil
}

func (r *Responder) search(ctx context.Context, query string) string {
	result := r.config.Searcher.Search(ctx, query)
	if result.Failed() {
		r.config.Metrics.SearchFailed()
	}
	return result.Text
}

// record persists the answer and queues its event.
func (r *Responder) record(
	ctx context.Context,
	question, answer, display string,
	category exchange.Category,
	resolver string,
) (*Resolution, error) {
	ex := exchange.New(question, answer, category, r.config.Now())
	if err := r.config.Driver.Upsert(ctx, ex); err != nil {
		return nil, fmt.Errorf("storing exchange: %w", err)
	}

	if r.config.Pool != nil {
		r.config.Pool.Enqueue(worker.Job{Exchange: ex, Resolver: resolver})
	}

	return &Resolution{
		Question: question,
		Answer:   answer,
		Display:  display,
		Category: category,
		Resolver: resolver,
		Exchange: ex,
	}, nil
}

// Similar ranks the most recent exchanges against query and returns up to
// limit matches, highest score first. No threshold is applied.
func (r *Responder) Similar(ctx context.Context, query string, limit int) ([]similarity.Match, error) {
	recent, err := r.config.Driver.Recent(ctx, r.config.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent exchanges: %w", err)
	}

	matches := similarity.Score(query, pairs(recent))
	if matches == nil {
		matches = []similarity.Match{}
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Recent returns up to limit stored exchanges, newest first.
func (r *Responder) Recent(ctx context.Context, limit int) ([]*exchange.Exchange, error) {
	return r.config.Driver.Recent(ctx, limit)
}

func pairs(exchanges []*exchange.Exchange) []exchange.Pair {
	out := make([]exchange.Pair, len(exchanges))
	for i, ex := range exchanges {
		out[i] = ex.Pair()
	}
	return out
}
