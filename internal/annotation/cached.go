package annotation

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/mendel-inheritance-server/internal/domain"
)

// Lookuper is the remote lookup dependency of the cache tiers.
type Lookuper interface {
	Lookup(ctx context.Context, symbol string) (*domain.GeneAnnotation, error)
}

// Store is the persistent cache tier.
type Store interface {
	Get(ctx context.Context, symbol string) (*domain.GeneAnnotation, bool, error)
	Put(ctx context.Context, ann *domain.GeneAnnotation) error
}

// CachedClient layers an in-memory LRU and a persistent store in front of
// the remote client. Lookup order: LRU, store, remote. Remote hits are
// written back to both tiers.
type CachedClient struct {
	remote Lookuper
	store  Store
	memory *lru.Cache[string, *domain.GeneAnnotation]
	logger *logrus.Logger
}

// NewCachedClient creates the tiered client. store may be nil to run with
// the memory tier only.
func NewCachedClient(remote Lookuper, store Store, cacheSize int, logger *logrus.Logger) (*CachedClient, error) {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	memory, err := lru.New[string, *domain.GeneAnnotation](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation cache: %w", err)
	}
	return &CachedClient{
		remote: remote,
		store:  store,
		memory: memory,
		logger: logger,
	}, nil
}

// Lookup resolves a gene symbol through the cache tiers.
func (c *CachedClient) Lookup(ctx context.Context, symbol string) (*domain.GeneAnnotation, error) {
	if ann, ok := c.memory.Get(symbol); ok {
		return ann, nil
	}

	if c.store != nil {
		ann, found, err := c.store.Get(ctx, symbol)
		if err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Annotation store read failed")
		} else if found {
			c.memory.Add(symbol, ann)
			return ann, nil
		}
	}

	ann, err := c.remote.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.memory.Add(symbol, ann)
	if c.store != nil {
		if err := c.store.Put(ctx, ann); err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Warn("Annotation store write failed")
		}
	}
	return ann, nil
}

// AnnotateGenes resolves every distinct gene symbol across the results.
// Failures degrade to absent entries; the map only holds resolved symbols.
func (c *CachedClient) AnnotateGenes(ctx context.Context, symbols []string) map[string]*domain.GeneAnnotation {
	out := make(map[string]*domain.GeneAnnotation, len(symbols))
	for _, symbol := range symbols {
		if _, done := out[symbol]; done {
			continue
		}
		ann, err := c.Lookup(ctx, symbol)
		if err != nil {
			c.logger.WithError(err).WithField("symbol", symbol).Debug("Gene annotation unavailable")
			continue
		}
		out[symbol] = ann
	}
	return out
}
