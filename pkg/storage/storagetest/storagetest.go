// Package storagetest provides shared ginkgo specs that every storage.Driver
// implementation is expected to pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/storage"
)

// DriverSpecs registers the driver contract specs. newDriver is invoked
// before every spec and must return an empty driver.
func DriverSpecs(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		now    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Upsert", func() {
		It("rejects a nil exchange", func() {
			Expect(driver.Upsert(ctx, nil)).To(MatchError(storage.ErrNilExchange))
		})

		It("assigns increasing ids", func() {
			first := exchange.New("hola", "¡Hola!", exchange.CategoryGeneral, now)
			second := exchange.New("agua", "Cierra el grifo", exchange.CategoryEnvironmental, now)

			Expect(driver.Upsert(ctx, first)).To(Succeed())
			Expect(driver.Upsert(ctx, second)).To(Succeed())

			Expect(first.ID).To(BeNumerically(">", 0))
			Expect(second.ID).To(BeNumerically(">", first.ID))
		})

		It("keeps one row when the same new question is stored concurrently", func() {
			const writers = 8

			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ex := exchange.New("¿qué es el compost?", fmt.Sprintf("respuesta %d", i), exchange.CategoryGeneral, now)
					errs <- driver.Upsert(ctx, ex)
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("keeps one row per question and overwrites the answer", func() {
			first := exchange.New("hola", "primera", exchange.CategoryGeneral, now)
			second := exchange.New("hola", "segunda", exchange.CategorySearch, now.Add(time.Minute))

			Expect(driver.Upsert(ctx, first)).To(Succeed())
			Expect(driver.Upsert(ctx, second)).To(Succeed())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			stored, err := driver.Get(ctx, exchange.HashQuestion("hola"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Answer).To(Equal("segunda"))
			Expect(stored.Category).To(Equal(exchange.CategorySearch))
			Expect(stored.Created.Equal(now.Add(time.Minute))).To(BeTrue())
		})

		It("moves a re-asked question to the front of Recent", func() {
			Expect(driver.Upsert(ctx, exchange.New("uno", "1", exchange.CategoryGeneral, now))).To(Succeed())
			Expect(driver.Upsert(ctx, exchange.New("dos", "2", exchange.CategoryGeneral, now))).To(Succeed())
			Expect(driver.Upsert(ctx, exchange.New("uno", "1b", exchange.CategoryGeneral, now))).To(Succeed())

			recent, err := driver.Recent(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(2))
			Expect(recent[0].Question).To(Equal("uno"))
			Expect(recent[0].Answer).To(Equal("1b"))
			Expect(recent[1].Question).To(Equal("dos"))
		})
	})

	Describe("Recent", func() {
		It("returns an empty slice for an empty store", func() {
			recent, err := driver.Recent(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(BeEmpty())
		})

		It("returns newest first and honours the limit", func() {
			for _, q := range []string{"a1", "b2", "c3", "d4"} {
				Expect(driver.Upsert(ctx, exchange.New(q, "r-"+q, exchange.CategoryGeneral, now))).To(Succeed())
			}

			recent, err := driver.Recent(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(3))
			Expect(recent[0].Question).To(Equal("d4"))
			Expect(recent[1].Question).To(Equal("c3"))
			Expect(recent[2].Question).To(Equal("b2"))
		})
	})

	Describe("Get", func() {
		It("returns NotFoundError for unknown hashes", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns every exchange newest first", func() {
			Expect(driver.Upsert(ctx, exchange.New("a1", "x", exchange.CategoryGeneral, now))).To(Succeed())
			Expect(driver.Upsert(ctx, exchange.New("b2", "y", exchange.CategoryGeneral, now))).To(Succeed())

			all, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Question).To(Equal("b2"))
		})
	})
}
