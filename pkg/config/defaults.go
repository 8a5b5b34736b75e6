package config

const (
	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultVectorProvider   = "sqlite"
	defaultVectorTarget     = "clerk.sqlite"
	defaultVectorCollection = "invoices"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768
	defaultEmbeddingTarget     = "http://localhost:11434"

	defaultCompletionProvider = "gemini"
	defaultCompletionModel    = "gemini-2.5-flash"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "clerk.invoices"

	defaultAnalysisWorkers = 4
	defaultSearchLimit     = 10
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Target:     defaultVectorTarget,
			Collection: defaultVectorCollection,
			Dimensions: defaultEmbeddingDimensions,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Completion: CompletionConfig{
			Provider: defaultCompletionProvider,
			Model:    defaultCompletionModel,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Analysis: AnalysisConfig{
			Workers: defaultAnalysisWorkers,
		},
		Search: SearchConfig{
			Limit: defaultSearchLimit,
		},
	}
}
