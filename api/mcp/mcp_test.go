package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verde/pkg/exchange"
	verdelogger "github.com/papercomputeco/verde/pkg/logger"
	"github.com/papercomputeco/verde/pkg/responder"
	"github.com/papercomputeco/verde/pkg/rules"
	"github.com/papercomputeco/verde/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/verde/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()

		r, err := responder.New(responder.Config{
			Driver:   driver,
			Searcher: testutils.NewMockSearcher("resultado"),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{Responder: r, Logger: verdelogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the responder is nil", func() {
			_, err := NewServer(Config{Logger: verdelogger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("responder is required")))
		})

		It("returns an error when the logger is nil", func() {
			_, err := NewServer(Config{Responder: &responder.Responder{}})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("builds an empty server in noop mode", func() {
			s, err := NewServer(Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Handler()).NotTo(BeNil())
		})

		It("exposes an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("ask tool", func() {
		It("answers and stores the exchange", func() {
			result, output, err := server.handleAsk(ctx, nil, AskInput{Question: "reciclaje"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Category).To(Equal(string(exchange.CategoryEnvironmental)))
			Expect(output.Answer).To(Equal(rules.RecyclingTip))

			n, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("reports storage failures as tool errors", func() {
			r, err := responder.New(responder.Config{
				Driver:   &testutils.FailingDriver{Driver: driver, FailRecent: true},
				Searcher: testutils.NewMockSearcher("x"),
			})
			Expect(err).NotTo(HaveOccurred())
			failing, err := NewServer(Config{Responder: r, Logger: verdelogger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			result, _, err := failing.handleAsk(ctx, nil, AskInput{Question: "hola"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("recall tool", func() {
		BeforeEach(func() {
			now := time.Now()
			Expect(driver.Upsert(ctx, exchange.New("ahorro de agua en casa", "a", exchange.CategoryEnvironmental, now))).To(Succeed())
			Expect(driver.Upsert(ctx, exchange.New("transporte público", "b", exchange.CategorySearch, now))).To(Succeed())
		})

		It("ranks stored exchanges", func() {
			result, output, err := server.handleRecall(ctx, nil, RecallInput{Query: "agua en casa"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(2))
			Expect(output.Matches[0].Answer).To(Equal("a"))
		})

		It("respects the limit", func() {
			_, output, err := server.handleRecall(ctx, nil, RecallInput{Query: "agua", Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Matches).To(HaveLen(1))
		})

		It("does not store anything", func() {
			_, _, err := server.handleRecall(ctx, nil, RecallInput{Query: "agua"})
			Expect(err).NotTo(HaveOccurred())
			n, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Describe("over a client session", func() {
		It("lists and calls the tools", func() {
			clientTransport, serverTransport := mcp.NewInMemoryTransports()

			serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer serverSession.Close()

			client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
			session, err := client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			defer session.Close()

			tools, err := session.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			names := []string{}
			for _, t := range tools.Tools {
				names = append(names, t.Name)
			}
			Expect(names).To(ConsistOf("ask", "recall"))

			res, err := session.CallTool(ctx, &mcp.CallToolParams{
				Name:      "ask",
				Arguments: map[string]any{"question": "hola"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(res.Content).To(HaveLen(1))
			text, ok := res.Content[0].(*mcp.TextContent)
			Expect(ok).To(BeTrue())
			Expect(text.Text).To(Equal(rules.Greeting))
		})
	})
})
