package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		homeDir string
		cwdDir  string
	)

	BeforeEach(func() {
		origCwd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(os.Chdir(origCwd)).To(Succeed())
		})

		homeDir = GinkgoT().TempDir()
		cwdDir = GinkgoT().TempDir()

		GinkgoT().Setenv("HOME", homeDir)
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		GinkgoT().Setenv(EnvSQLite, "")
		GinkgoT().Setenv(EnvDB, "")
		Expect(os.Chdir(cwdDir)).To(Succeed())
	})

	It("prefers the explicit override", func() {
		GinkgoT().Setenv(EnvSQLite, "/tmp/env.db")

		path, err := ResolveSQLitePath("/tmp/flag.db")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/flag.db"))
	})

	It("prefers VERDE_SQLITE when set", func() {
		GinkgoT().Setenv(EnvSQLite, "/tmp/custom.db")
		GinkgoT().Setenv(EnvDB, "/tmp/other.db")

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("falls back to VERDE_DB", func() {
		GinkgoT().Setenv(EnvDB, "/tmp/other.db")

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/other.db"))
	})

	It("prefers a database in the working directory", func() {
		Expect(os.WriteFile(filepath.Join(cwdDir, "verde.db"), []byte("test"), 0o644)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(homeDir, ".verde"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(homeDir, ".verde", "verde.db"), []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("verde.db"))
	})

	It("resolves ~/.verde/verde.db when present", func() {
		dbPath := filepath.Join(homeDir, ".verde", "verde.db")
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("defaults to ~/.verde/verde.db and creates its directory", func() {
		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(homeDir, ".verde", "verde.db")))

		info, err := os.Stat(filepath.Join(homeDir, ".verde"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})
})
