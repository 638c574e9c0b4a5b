package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/pkg/eventstream"
	"github.com/papercomputeco/verde/pkg/exchange"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeRecordedEvent
	err    error
	block  chan struct{}
}

func (r *recordingPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) published() []*eventstream.ExchangeRecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*eventstream.ExchangeRecordedEvent(nil), r.events...)
}

var _ = Describe("Worker Pool", func() {
	var (
		publisher *recordingPublisher
		logger    *zap.Logger
		now       time.Time
	)

	BeforeEach(func() {
		publisher = &recordingPublisher{}
		logger, _ = zap.NewDevelopment()
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	newPool := func(c *Config) *Pool {
		c.Publisher = publisher
		c.Logger = logger
		c.Now = func() time.Time { return now }
		wp, err := NewPool(c)
		Expect(err).NotTo(HaveOccurred())
		return wp
	}

	It("requires a publisher", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	It("applies defaults", func() {
		c := &Config{}
		wp := newPool(c)
		defer wp.Close()
		Expect(c.NumWorkers).To(Equal(defaultNumWorkers))
		Expect(c.QueueSize).To(Equal(defaultJobQueueSize))
		Expect(c.PublishTimeout).To(Equal(defaultPublishTimeout))
	})

	It("publishes one event per job before Close returns", func() {
		wp := newPool(&Config{})

		ex := exchange.New("reciclaje", "separa", exchange.CategoryEnvironmental, now)
		Expect(wp.Enqueue(Job{Exchange: ex, Resolver: "environmental"})).To(BeTrue())
		Expect(wp.Enqueue(Job{Exchange: exchange.New("hola", "hi", exchange.CategoryGeneral, now), Resolver: "general"})).To(BeTrue())
		wp.Close()

		events := publisher.published()
		Expect(events).To(HaveLen(2))
		for _, e := range events {
			Expect(e.EventType).To(Equal(eventstream.EventTypeExchangeRecorded))
			Expect(e.EmittedAt).To(Equal(now))
		}
	})

	It("carries the resolver and exchange into the event", func() {
		wp := newPool(&Config{NumWorkers: 1})
		ex := exchange.New("busca árboles", "texto", exchange.CategorySearch, now)
		wp.Enqueue(Job{Exchange: ex, Resolver: "search_intent"})
		wp.Close()

		events := publisher.published()
		Expect(events).To(HaveLen(1))
		Expect(events[0].Resolver).To(Equal("search_intent"))
		Expect(events[0].Key()).To(Equal(ex.QuestionHash))
	})

	It("rejects jobs without an exchange", func() {
		wp := newPool(&Config{})
		defer wp.Close()
		Expect(wp.Enqueue(Job{Resolver: "general"})).To(BeFalse())
	})

	It("drops jobs when the queue is full", func() {
		publisher.block = make(chan struct{})
		wp := newPool(&Config{NumWorkers: 1, QueueSize: 1})

		ex := exchange.New("agua", "cierra el grifo", exchange.CategoryEnvironmental, now)

		// The first job is taken by the worker and blocks, the second fills
		// the queue.
		Expect(wp.Enqueue(Job{Exchange: ex})).To(BeTrue())
		Eventually(func() bool { return wp.Enqueue(Job{Exchange: ex}) }).Should(BeTrue())
		Expect(wp.Enqueue(Job{Exchange: ex})).To(BeFalse())

		close(publisher.block)
		wp.Close()
		Expect(publisher.published()).To(HaveLen(2))
	})

	It("keeps working after a publish error", func() {
		publisher.err = errors.New("broker down")
		wp := newPool(&Config{NumWorkers: 1})
		ex := exchange.New("agua", "x", exchange.CategoryEnvironmental, now)
		Expect(wp.Enqueue(Job{Exchange: ex})).To(BeTrue())
		Expect(wp.Enqueue(Job{Exchange: ex})).To(BeTrue())
		wp.Close()
		Expect(publisher.published()).To(BeEmpty())
	})

	It("tolerates repeated Close calls", func() {
		wp := newPool(&Config{})
		wp.Close()
		Expect(wp.Close).NotTo(Panic())
	})
})
