package servecmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/clerk/cmd/clerk/serve"
)

var _ = Describe("NewServeCmd", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	newCmd := func(args ...string) *cobra.Command {
		cmd := servecmder.NewServeCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .clerk/ config directory")
		cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
		Expect(cmd.ParseFlags(append(args, "--config-dir", tmpDir))).To(Succeed())
		return cmd
	}

	get := func(cmd *cobra.Command, name string) string {
		value, err := cmd.Flags().GetString(name)
		Expect(err).NotTo(HaveOccurred())
		return value
	}

	It("registers the log file flag", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
	})

	It("uses defaults when nothing is configured", func() {
		cmd := newCmd()
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())

		Expect(get(cmd, "listen")).To(Equal(":8081"))
		Expect(get(cmd, "vector-store-provider")).To(Equal("sqlite"))
	})

	It("resolves flag over env over config file", func() {
		toml := "version = 0\n\n[completion]\nprovider = \"openai\"\n\n[embedding]\nmodel = \"from-file\"\n\n[api]\nlisten = \":7000\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(toml), 0o600)).To(Succeed())
		GinkgoT().Setenv("CLERK_EMBEDDING_MODEL", "from-env")

		cmd := newCmd("--listen", ":9999")
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())

		Expect(get(cmd, "listen")).To(Equal(":9999"))
		Expect(get(cmd, "embedding-model")).To(Equal("from-env"))
		Expect(get(cmd, "completion-provider")).To(Equal("openai"))
	})

	It("fails on an invalid config file", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not [[ toml"), 0o600)).To(Succeed())

		cmd := newCmd()
		Expect(cmd.PreRunE(cmd, nil)).NotTo(Succeed())
	})
})
