package initcmder_test

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/clerk/cmd/clerk/init"
	"github.com/papercomputeco/clerk/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
	})

	It("creates a .clerk directory without a config file", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".clerk"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())

		_, err = os.Stat(filepath.Join(tmpDir, ".clerk", "config.toml"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("keeps existing contents when already initialized", func() {
		clerkDir := filepath.Join(tmpDir, ".clerk")
		Expect(os.MkdirAll(clerkDir, 0o755)).To(Succeed())
		chatFile := filepath.Join(clerkDir, "chat.json")
		Expect(os.WriteFile(chatFile, []byte(`{"session_id":"abc"}`), 0o644)).To(Succeed())

		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())

		data, err := os.ReadFile(chatFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"session_id":"abc"}`))
	})

	It("writes the openai preset", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{"--preset", "openai"})
		Expect(cmd.Execute()).To(Succeed())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Completion.Provider).To(Equal("openai"))
		Expect(cfg.Embedding.Provider).To(Equal("openai"))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
		Expect(cfg.VectorStore.Dimensions).To(Equal(uint(1536)))
	})

	It("overwrites the config when re-run with another preset", func() {
		for _, preset := range []string{"openai", "ollama"} {
			cmd := initcmder.NewInitCmd()
			cmd.SetArgs([]string{"--preset", preset})
			Expect(cmd.Execute()).To(Succeed())
		}

		cfg := loadConfig(tmpDir)
		Expect(cfg.Completion.Provider).To(Equal("ollama"))
		Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
	})

	It("rejects unknown presets without creating the directory", func() {
		cmd := initcmder.NewInitCmd()
		cmd.SetArgs([]string{"--preset", "invalid-provider"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown preset"))

		_, err = os.Stat(filepath.Join(tmpDir, ".clerk"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

func loadConfig(baseDir string) *config.Config {
	data, err := os.ReadFile(filepath.Join(baseDir, ".clerk", "config.toml"))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	ExpectWithOffset(1, toml.Unmarshal(data, cfg)).To(Succeed())
	return cfg
}
