// Package knowledge answers questions with retrieval over an indexed
// collection of shop documents, falling back to a plain model answer.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"

	"github.com/DeyvidJesus/gomech-ai-service/internal/llm"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	DefaultCollection = "vector_store"
	DefaultTopK       = 5
	chunkSize         = 1000
	chunkOverlap      = 100
)

// EmbeddingFunc adapts a langchaingo embedder to chromem.
func EmbeddingFunc(e embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.EmbedQuery(ctx, text)
	}
}

type Options struct {
	// Dir persists the collection on disk; empty keeps it in memory.
	Dir           string
	Collection    string
	TopK          int
	EnhancedModel string
	StandardModel string
}

type Base struct {
	mu       sync.RWMutex
	col      *chromem.Collection
	embed    chromem.EmbeddingFunc
	provider llm.LLMProvider
	opts     Options
	log      *logger.Logger
}

func New(provider llm.LLMProvider, embed chromem.EmbeddingFunc, opts Options, log *logger.Logger) (*Base, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	db := chromem.NewDB()
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create knowledge dir: %w", err)
		}
		var err error
		if db, err = chromem.NewPersistentDB(opts.Dir, false); err != nil {
			return nil, fmt.Errorf("open knowledge store: %w", err)
		}
	}
	col, err := db.GetOrCreateCollection(opts.Collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open knowledge collection: %w", err)
	}
	return &Base{
		col:      col,
		embed:    embed,
		provider: provider,
		opts:     opts,
		log:      log.With("component", "knowledge_base"),
	}, nil
}

// Index splits text into chunks and stores them with the same metadata.
// It returns the chunk ids.
func (b *Base) Index(ctx context.Context, text string, metadata map[string]string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text é obrigatório", apierr.ErrInvalidInput)
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		id := uuid.NewString()
		meta := make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		docs = append(docs, chromem.Document{ID: id, Content: chunk, Metadata: meta})
		ids = append(ids, id)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		b.log.Error("failed to index document", "error", err)
		return nil, fmt.Errorf("%w: index document: %v", apierr.ErrUnavailable, err)
	}
	b.log.Info("📚 document indexed", "chunks", len(ids))
	return ids, nil
}

type Source struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float32           `json:"similarity"`
}

type Answer struct {
	Reply    string   `json:"reply"`
	Enhanced bool     `json:"enhanced"`
	Sources  []Source `json:"sources,omitempty"`
}

// Ask answers from the top matching documents. Retrieval or model failures
// degrade to a plain answer.
func (b *Base) Ask(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("%w: question é obrigatória", apierr.ErrInvalidInput)
	}

	sources, err := b.retrieve(ctx, question)
	if err == nil && len(sources) > 0 {
		reply, err := b.generate(ctx, ragSystemPrompt(sources), fmt.Sprintf(enhancedQuery, question), b.opts.EnhancedModel, 0)
		if err == nil {
			return Answer{Reply: reply, Enhanced: true, Sources: sources}, nil
		}
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		b.log.Warn("enhanced answer failed, using fallback", "error", err)
	} else if err != nil {
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		b.log.Warn("retrieval failed, using fallback", "error", err)
	}

	reply, err := b.generate(ctx, standardSystemPrompt, question, b.opts.StandardModel, 0.3)
	if err != nil {
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		b.log.Error("standard answer failed", "error", err)
		return Answer{Reply: replyFallback}, nil
	}
	return Answer{Reply: reply}, nil
}

func (b *Base) retrieve(ctx context.Context, question string) ([]Source, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := min(b.opts.TopK, b.col.Count())
	if n == 0 {
		return nil, nil
	}
	results, err := b.col.Query(ctx, question, n, nil, nil)
	if err != nil {
		return nil, err
	}
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{ID: r.ID, Content: r.Content, Metadata: r.Metadata, Similarity: r.Similarity})
	}
	return sources, nil
}

func (b *Base) generate(ctx context.Context, system, prompt, model string, temperature float64) (string, error) {
	resp, err := b.provider.Generate(ctx, &llm.LLMRequest{
		System:      system,
		Prompt:      prompt,
		Model:       model,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("empty answer")
	}
	return resp.Content, nil
}

type Status struct {
	StandardAI bool `json:"standard_ai"`
	EnhancedAI bool `json:"enhanced_ai"`
	Embeddings bool `json:"embeddings"`
	Documents  int  `json:"documents"`
}

// Status probes the model and the embedder concurrently.
func (b *Base) Status(ctx context.Context) Status {
	var st Status
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := b.generate(gctx, "", "teste", b.opts.StandardModel, 0)
		st.StandardAI = err == nil
		return nil
	})
	g.Go(func() error {
		_, err := b.embed(gctx, "teste")
		st.Embeddings = err == nil
		return nil
	})
	_ = g.Wait()

	b.mu.RLock()
	st.Documents = b.col.Count()
	b.mu.RUnlock()
	st.EnhancedAI = st.StandardAI && st.Embeddings && st.Documents > 0
	return st
}

func (b *Base) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.col.Count()
}
