// Package inkbase embeds the knowledge-base engine in a Go process:
// the same ingestion, retrieval and chat pipeline the HTTP server
// exposes, without the HTTP server.
package inkbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
	storeBadger "github.com/inkwell-ai/inkbase/internal/store/badger"
	storeRedis "github.com/inkwell-ai/inkbase/internal/store/redis"
	"github.com/inkwell-ai/inkbase/internal/transport/gemini"
	openaiGen "github.com/inkwell-ai/inkbase/internal/transport/openai"
	chatuc "github.com/inkwell-ai/inkbase/internal/usecase/chat"
	generateuc "github.com/inkwell-ai/inkbase/internal/usecase/generate"
	kbuc "github.com/inkwell-ai/inkbase/internal/usecase/kb"
	retrievaluc "github.com/inkwell-ai/inkbase/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the inkbase SDK entry point.
type Client struct {
	store   store.Store
	apiKey  string
	kbSvc   *kbuc.Service
	retrSvc *retrievaluc.Service
	chatSvc *chatuc.Service
	genSvc  *generateuc.Service
	obs     *observer
}

// New creates an inkbase Client and opens the document store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:          "badger",
		badgerPath:      "~/.inkbase/knowledge_base",
		keyPrefix:       "inkbase:",
		chatModel:       "gemini-2.5-flash",
		dimensions:      768,
		hnswM:           32,
		hnswEFConstruct: 400,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.apiKey == "" && (cfg.embedder == nil || cfg.generator == nil) {
		return nil, errors.New("inkbase: Gemini API key required (use WithGeminiKey, or provide WithEmbedder and WithGenerator)")
	}

	st, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		st.Close()
		return nil, err
	}

	return wireClient(st, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (store.Store, error) {
	nop := zap.NewNop()
	switch cfg.driver {
	case "badger":
		s, err := storeBadger.New(cfg.badgerPath, nop)
		if err != nil {
			return nil, fmt.Errorf("inkbase: open badger store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := storeRedis.New(ctx, storeRedis.Config{
			Addrs:      cfg.addrs,
			Username:   cfg.username,
			Password:   cfg.password,
			KeyPrefix:  cfg.keyPrefix,
			Dimensions: cfg.dimensions,
			HNSWM:      cfg.hnswM,
			HNSWEF:     cfg.hnswEFConstruct,
		}, nop)
		if err != nil {
			return nil, fmt.Errorf("inkbase: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("inkbase: redis not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("inkbase: unknown driver %q", cfg.driver)
	}
}

func wireClient(st store.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedder = gemini.NewEmbedder(gemini.DefaultEmbeddingModel, nop)
	}

	var generator domain.Generator
	if cfg.generator != nil {
		generator = &generatorAdapter{inner: cfg.generator}
	} else {
		generator = gemini.NewGenerator(nop)
	}

	kbSvc := kbuc.New(st, embedder, cfg.prefixLen, nop)
	retrSvc := retrievaluc.New(st, embedder, nop)
	chatSvc := chatuc.New(retrSvc, generator, cfg.chatModel, cfg.contextChars, cfg.maxContextDocs, nop)
	genSvc := generateuc.New(generator, openaiGen.NewGenerator("", nop), nop)

	return &Client{
		store:   st,
		apiKey:  cfg.apiKey,
		kbSvc:   kbSvc,
		retrSvc: retrSvc,
		chatSvc: chatSvc,
		genSvc:  genSvc,
		obs:     obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal
// contract. The per-call key is dropped: a custom embedder carries its
// own credentials.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, _, text string, intent domain.Intent) ([]float32, error) {
	vec, err := a.inner.Embed(ctx, text, Intent(intent))
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// generatorAdapter wraps the public Generator the same way.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, _, model, prompt string) (string, error) {
	out, err := a.inner.Generate(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}
