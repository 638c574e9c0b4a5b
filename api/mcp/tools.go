package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/pkg/similarity"
)

var (
	askToolName    = "ask"
	askDescription = "Ask verde a question. Answers come from similar past exchanges, environmental tips, canned replies or a web search, and new answers are stored."

	recallToolName    = "recall"
	recallDescription = "Rank the most recent stored exchanges by TF-IDF similarity to a query. Does not store anything."
)

const defaultRecallLimit = 5

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Answer   string  `json:"answer"`
	Category string  `json:"category"`
	Resolver string  `json:"resolver"`
	Score    float64 `json:"score"`
}

// RecallInput represents the input arguments for the recall tool.
type RecallInput struct {
	Query string `json:"query" jsonschema:"the text to compare with stored questions"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of matches to return (default: 5)"`
}

// RecallOutput represents the output of the recall tool.
type RecallOutput struct {
	Query   string             `json:"query"`
	Matches []similarity.Match `json:"matches"`
	Count   int                `json:"count"`
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP ask request", zap.String("question", input.Question))

	res, err := s.config.Responder.Respond(ctx, input.Question)
	if err != nil {
		logger.Error("failed to answer question", zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to answer question: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		Answer:   res.Answer,
		Category: string(res.Category),
		Resolver: res.Resolver,
		Score:    res.Score,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: res.Display},
		},
	}, output, nil
}

func (s *Server) handleRecall(ctx context.Context, _ *mcp.CallToolRequest, input RecallInput) (*mcp.CallToolResult, RecallOutput, error) {
	logger := s.config.Logger

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecallLimit
	}

	logger.Debug("MCP recall request",
		zap.String("query", input.Query),
		zap.Int("limit", limit),
	)

	matches, err := s.config.Responder.Similar(ctx, input.Query, limit)
	if err != nil {
		logger.Error("failed to rank exchanges", zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to rank exchanges: %v", err)), RecallOutput{}, nil
	}

	output := RecallOutput{
		Query:   input.Query,
		Matches: matches,
		Count:   len(matches),
	}

	// Structured output is mirrored as JSON text for clients that only read
	// text content.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal recall output", zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), RecallOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
