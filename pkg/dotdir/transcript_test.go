package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verde/pkg/dotdir"
	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/transcript"
)

var _ = Describe("dotdir.Manager transcript", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
		now    time.Time
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
		now = time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	})

	It("returns nil when no transcript was saved", func() {
		t, err := m.LoadTranscript(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeNil())
	})

	It("round-trips a transcript", func() {
		t := transcript.New()
		t.AddQuestion("agua", now)
		t.AddAnswer(rulesWater, exchange.CategoryEnvironmental, "environmental", now)

		Expect(m.SaveTranscript(t, tmpDir)).To(Succeed())

		loaded, err := m.LoadTranscript(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Turns()).To(Equal(t.Turns()))
	})

	It("returns an error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "transcript.json"), []byte("not json"), 0o600)).To(Succeed())
		t, err := m.LoadTranscript(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(t).To(BeNil())
	})

	It("rejects a nil transcript", func() {
		Expect(m.SaveTranscript(nil, tmpDir)).To(HaveOccurred())
	})

	It("clears the saved transcript", func() {
		Expect(m.SaveTranscript(transcript.New(), tmpDir)).To(Succeed())
		Expect(m.ClearTranscript(tmpDir)).To(Succeed())

		t, err := m.LoadTranscript(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeNil())
	})

	It("clears without error when nothing was saved", func() {
		Expect(m.ClearTranscript(tmpDir)).To(Succeed())
	})
})

const rulesWater = "💧 ahorra agua"
