package chatcmder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/pkg/dotdir"
	"github.com/papercomputeco/verde/pkg/exchange"
	"github.com/papercomputeco/verde/pkg/responder"
	"github.com/papercomputeco/verde/pkg/rules"
	"github.com/papercomputeco/verde/pkg/storage/inmemory"
	"github.com/papercomputeco/verde/pkg/transcript"
	testutils "github.com/papercomputeco/verde/pkg/utils/test"
)

var _ = Describe("converse", func() {
	var (
		out       *bytes.Buffer
		configDir string
		cmder     *chatCommander
		r         *responder.Responder
	)

	newCmd := func(input string) *cobra.Command {
		cmd := &cobra.Command{Use: "chat"}
		cmd.SetContext(context.Background())
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetErr(out)
		return cmd
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
		configDir = GinkgoT().TempDir()
		cmder = &chatCommander{
			configDir: configDir,
			logger:    zap.NewNop(),
			dotdir:    dotdir.NewManager(),
		}

		var err error
		r, err = responder.New(responder.Config{
			Driver:   &testutils.FailingDriver{Driver: inmemory.NewDriver(), FailUpsert: true},
			Searcher: testutils.NewMockSearcher("Resumen"),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("stops with an error when the answer cannot be stored", func() {
		err := cmder.converse(newCmd("hola\nreciclaje\n"), r)
		Expect(err).To(MatchError(ContainSubstring("answering question")))
		Expect(errors.Is(err, testutils.ErrStorageUnavailable)).To(BeTrue())
		Expect(out.String()).NotTo(ContainSubstring(rules.RecyclingTip))
	})

	It("saves the conversation so far before failing", func() {
		prior := transcript.New()
		prior.AddQuestion("agua", time.Now())
		prior.AddAnswer(rules.WaterTip, exchange.CategoryEnvironmental, responder.ResolverEnvironmental, time.Now())
		Expect(cmder.dotdir.SaveTranscript(prior, configDir)).To(Succeed())
		cmder.resume = true

		Expect(cmder.converse(newCmd("hola\n"), r)).NotTo(Succeed())

		t, err := cmder.dotdir.LoadTranscript(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).NotTo(BeNil())
		Expect(t.Len()).To(Equal(2))
		Expect(t.Turns()[0].Content).To(Equal("agua"))
	})
})
