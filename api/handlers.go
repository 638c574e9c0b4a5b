package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/similarity"
	"github.com/papercomputeco/verde/pkg/storage"
	"github.com/papercomputeco/verde/web/widget"
)

const (
	defaultExchangeLimit = 10
	defaultSimilarLimit  = 5
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer to a question.
type AskResponse struct {
	Answer   string  `json:"answer"`
	Display  string  `json:"display"`
	Category string  `json:"category"`
	Resolver string  `json:"resolver"`
	Score    float64 `json:"score"`
}

// ExchangesResponse lists stored exchanges, newest first.
type ExchangesResponse struct {
	Count     int                  `json:"count"`
	Exchanges []*exchange.Exchange `json:"exchanges"`
}

// SimilarResponse ranks stored exchanges against a query.
type SimilarResponse struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Matches []similarity.Match `json:"matches"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleWidget serves the embedded chat page.
func (s *Server) handleWidget(c *fiber.Ctx) error {
	page, err := widget.Index()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "missing widget"})
	}
	c.Type("html", "utf-8")
	return c.Send(page)
}

// handleAsk answers a question. Empty questions are not rejected: they fall
// through to the web search like any other unmatched text.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	res, err := s.config.Responder.Respond(c.UserContext(), req.Question)
	if err != nil {
		s.logger.Error("failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to answer question"})
	}

	return c.JSON(AskResponse{
		Answer:   res.Answer,
		Display:  res.Display,
		Category: string(res.Category),
		Resolver: res.Resolver,
		Score:    res.Score,
	})
}

// handleListExchanges returns the most recent exchanges.
// Query parameters:
//   - limit (optional, default 10): number of exchanges to return
func (s *Server) handleListExchanges(c *fiber.Ctx) error {
	limit, err := positiveQueryInt(c, "limit", defaultExchangeLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}

	exchanges, err := s.driver.Recent(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("failed to list exchanges", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list exchanges"})
	}

	return c.JSON(ExchangesResponse{
		Count:     len(exchanges),
		Exchanges: exchanges,
	})
}

// handleGetExchange returns a single exchange by its question hash.
func (s *Server) handleGetExchange(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "hash parameter required"})
	}

	ex, err := s.driver.Get(c.UserContext(), hash)
	if err != nil {
		if storage.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "exchange not found"})
		}
		s.logger.Error("failed to get exchange", zap.String("hash", hash), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get exchange"})
	}

	return c.JSON(ex)
}

// handleSimilar ranks recent exchanges against a query.
// Query parameters:
//   - query (required): the text to compare
//   - limit (optional, default 5): number of matches to return
func (s *Server) handleSimilar(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter is required"})
	}

	limit, err := positiveQueryInt(c, "limit", defaultSimilarLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}

	matches, err := s.config.Responder.Similar(c.UserContext(), query, limit)
	if err != nil {
		s.logger.Error("failed to rank exchanges", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to rank exchanges"})
	}

	return c.JSON(SimilarResponse{
		Query:   query,
		Count:   len(matches),
		Matches: matches,
	})
}

func positiveQueryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
