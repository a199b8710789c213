package inkbase

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedder turns text into a vector. Implement it to plug a custom
// embedding provider into the SDK.
type Embedder interface {
	Embed(ctx context.Context, text string, intent Intent) ([]float32, error)
}

// Generator produces a completion for a prompt. Implement it to plug a
// custom generation provider into the SDK.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "badger" or "redis"
	badgerPath string
	addrs      []string
	username   string
	password   string
	keyPrefix  string

	apiKey    string
	embedder  Embedder
	generator Generator

	dimensions      int
	hnswM           int
	hnswEFConstruct int
	prefixLen       int
	chatModel       string
	contextChars    int
	maxContextDocs  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBadger stores the knowledge base in an embedded badger database
// at dir. This is the default driver when no store option is given,
// with dir defaulting to ~/.inkbase/knowledge_base.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = dir
	})
}

// WithRedis stores the knowledge base in a Redis instance with the
// RediSearch module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces all redis keys. Default: "inkbase:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithGeminiKey sets the Gemini API key used by the default embedding
// and generation gateways. Required unless both WithEmbedder and
// WithGenerator are given.
func WithGeminiKey(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithEmbedder replaces the default Gemini embedding gateway.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator replaces the default Gemini generation gateway.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithVectorDimensions sets the vector dimension for the redis index.
// Defaults to 768 (text-embedding-004).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction)
// for the redis driver. Defaults: M=32, EFConstruct=400.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithIDPrefixLen bounds how many content runes feed the document id
// hash. Default: 500.
func WithIDPrefixLen(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.prefixLen = n
	})
}

// WithChatModel sets the generation model used by Chat.
// Default: gemini-2.5-flash.
func WithChatModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatModel = model
	})
}

// WithContextChars bounds each note's contribution to the chat prompt.
// Default: 2000 runes.
func WithContextChars(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.contextChars = n
	})
}

// WithMaxContextDocs caps how many notes a single Chat call may
// retrieve. Default: uncapped, the nContext argument is used as-is.
func WithMaxContextDocs(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxContextDocs = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
