package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verde/api"
	"github.com/papercomputeco/verde/pkg/exchange"
	verdelogger "github.com/papercomputeco/verde/pkg/logger"
	"github.com/papercomputeco/verde/pkg/metrics"
	"github.com/papercomputeco/verde/pkg/responder"
	"github.com/papercomputeco/verde/pkg/rules"
	"github.com/papercomputeco/verde/pkg/storage"
	"github.com/papercomputeco/verde/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/verde/pkg/utils/test"
	"github.com/papercomputeco/verde/pkg/websearch"
)

var _ = Describe("Server", func() {
	var (
		ctx      context.Context
		driver   *inmemory.Driver
		searcher *testutils.MockSearcher
		server   *api.Server
	)

	newServer := func(d storage.Driver) *api.Server {
		r, err := responder.New(responder.Config{Driver: d, Searcher: searcher, Metrics: metrics.New()})
		Expect(err).NotTo(HaveOccurred())

		s, err := api.NewServer(api.Config{
			ListenAddr: ":0",
			Responder:  r,
		}, d, verdelogger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	do := func(req *http.Request) (*http.Response, []byte) {
		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	ask := func(question string) *http.Request {
		payload, err := json.Marshal(api.AskRequest{Question: question})
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(string(payload)))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		searcher = testutils.NewMockSearcher("Resumen")
		server = newServer(driver)
	})

	Describe("NewServer", func() {
		It("requires a responder", func() {
			_, err := api.NewServer(api.Config{}, driver, verdelogger.Nop())
			Expect(err).To(HaveOccurred())
		})
	})

	It("answers ping", func() {
		resp, body := do(httptest.NewRequest(http.MethodGet, "/ping", nil))
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal(`"pong"`))
	})

	It("serves the widget", func() {
		resp, body := do(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))
		Expect(string(body)).To(ContainSubstring("IA Simple 2025"))
	})

	Describe("POST /v1/ask", func() {
		It("answers environmental questions", func() {
			resp, body := do(ask("¿Cómo mejorar el reciclaje?"))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.AskResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Category).To(Equal("environmental"))
			Expect(out.Answer).To(Equal(rules.RecyclingTip))
		})

		It("formats explicit search answers", func() {
			resp, body := do(ask("busca pollution levels"))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.AskResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Resolver).To(Equal(responder.ResolverSearchIntent))
			Expect(out.Display).To(HavePrefix(responder.SearchIntentPrefix))
			Expect(searcher.Calls()).To(Equal([]string{"pollution levels site:*.org"}))
		})

		It("returns the fallback string when search fails", func() {
			searcher.Fail = true
			_, body := do(ask("energía solar"))

			var out api.AskResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Answer).To(Equal(websearch.NoInformation))
			Expect(out.Category).To(Equal("search"))
		})

		It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader("{not json"))
			req.Header.Set("Content-Type", "application/json")
			resp, _ := do(req)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when storage fails", func() {
			server = newServer(&testutils.FailingDriver{Driver: driver, FailUpsert: true})
			resp, body := do(ask("reciclaje"))
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))

			var out api.ErrorResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Error).NotTo(BeEmpty())
		})
	})

	Describe("GET /v1/exchanges", func() {
		BeforeEach(func() {
			now := time.Now()
			for _, q := range []string{"primera", "segunda", "tercera"} {
				Expect(driver.Upsert(ctx, exchange.New(q, "r", exchange.CategorySearch, now))).To(Succeed())
			}
		})

		It("lists newest first with a limit", func() {
			resp, body := do(httptest.NewRequest(http.MethodGet, "/v1/exchanges?limit=2", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.ExchangesResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Count).To(Equal(2))
			Expect(out.Exchanges[0].Question).To(Equal("tercera"))
			Expect(out.Exchanges[1].Question).To(Equal("segunda"))
		})

		It("rejects a non positive limit", func() {
			resp, _ := do(httptest.NewRequest(http.MethodGet, "/v1/exchanges?limit=0", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("gets an exchange by hash", func() {
			resp, body := do(httptest.NewRequest(http.MethodGet, "/v1/exchanges/"+exchange.HashQuestion("segunda"), nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out exchange.Exchange
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Question).To(Equal("segunda"))
		})

		It("returns 404 for an unknown hash", func() {
			resp, _ := do(httptest.NewRequest(http.MethodGet, "/v1/exchanges/deadbeef", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /v1/similar", func() {
		It("requires a query", func() {
			resp, _ := do(httptest.NewRequest(http.MethodGet, "/v1/similar", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("ranks stored exchanges", func() {
			now := time.Now()
			Expect(driver.Upsert(ctx, exchange.New("ahorro de agua", "a", exchange.CategoryEnvironmental, now))).To(Succeed())
			Expect(driver.Upsert(ctx, exchange.New("transporte", "b", exchange.CategorySearch, now))).To(Succeed())

			resp, body := do(httptest.NewRequest(http.MethodGet, "/v1/similar?query=agua&limit=1", nil))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out api.SimilarResponse
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Count).To(Equal(1))
			Expect(out.Matches[0].Answer).To(Equal("a"))
		})
	})

	It("exposes metrics", func() {
		do(ask("hola"))
		resp, body := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`verde_resolutions_total{category="general",resolver="general"} 1`))
	})

	It("does not route /metrics when the responder has no metrics", func() {
		r, err := responder.New(responder.Config{Driver: driver, Searcher: searcher})
		Expect(err).NotTo(HaveOccurred())
		bare, err := api.NewServer(api.Config{Responder: r}, driver, verdelogger.Nop())
		Expect(err).NotTo(HaveOccurred())

		resp, err := bare.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
