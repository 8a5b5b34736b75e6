package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent clerk configuration stored as config.toml
// in the .clerk/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Completion  CompletionConfig  `toml:"completion"`
	EventStream EventStreamConfig `toml:"event_stream"`
	Analysis    AnalysisConfig    `toml:"analysis"`
	Search      SearchConfig      `toml:"search"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// API server (e.g. clerk chat, clerk search, clerk analyze).
// Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// VectorStoreConfig holds record store backend settings. Target is a URL,
// DSN, file or directory depending on the provider.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// CompletionConfig holds text completion provider settings.
type CompletionConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// EventStreamConfig holds invoice event publishing settings.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// AnalysisConfig holds invoice batch analysis settings.
type AnalysisConfig struct {
	Workers uint `toml:"workers,omitempty"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	Limit uint `toml:"limit,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen":        stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),
	"vector_store.dimensions": uintKey("vector_store.dimensions", func(c *Config) *uint { return &c.VectorStore.Dimensions }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"completion.provider": stringKey(func(c *Config) *string { return &c.Completion.Provider }),
	"completion.target":   stringKey(func(c *Config) *string { return &c.Completion.Target }),
	"completion.model":    stringKey(func(c *Config) *string { return &c.Completion.Model }),

	"event_stream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"event_stream.brokers":  stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"event_stream.topic":    stringKey(func(c *Config) *string { return &c.EventStream.Topic }),

	"analysis.workers": uintKey("analysis.workers", func(c *Config) *uint { return &c.Analysis.Workers }),
	"search.limit":     uintKey("search.limit", func(c *Config) *uint { return &c.Search.Limit }),
}

// orderedKeys lists the keys in the TOML section layout order.
var orderedKeys = []string{
	"api.listen",
	"client.api_target",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"vector_store.dimensions",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"completion.provider",
	"completion.target",
	"completion.model",
	"event_stream.provider",
	"event_stream.brokers",
	"event_stream.topic",
	"analysis.workers",
	"search.limit",
}
