package weather

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/briangreenhill/weatherinsight/cache"
)

// DefaultInsightTTL is how long generated insights are cached
const DefaultInsightTTL = 1800 * time.Second

// hashLen is the number of hex characters kept from the digest
const hashLen = 16

// Model is the language-model collaborator. It owns prompting, parsing and
// its own retries; every failure it returns should wrap ErrGeneration.
type Model interface {
	Generate(ctx context.Context, snap Snapshot) (Insight, error)
}

// Generator serves insights from the cache, falling back to the Model
type Generator struct {
	model Model
	p     *producer
}

// NewGenerator creates a Generator writing into c
func NewGenerator(c cache.ReadWriter, model Model, opts ...Option) *Generator {
	return &Generator{
		model: model,
		p:     &producer{cache: c, options: buildOptions(DefaultInsightTTL, opts)},
	}
}

// Generate returns the insight for snap. Snapshots that agree on city,
// temperature, humidity and description share one cached insight.
func (g *Generator) Generate(ctx context.Context, snap Snapshot) (Insight, error) {
	key := cache.InsightKey(snap.City, ContentHash(snap))
	return load(ctx, g.p, key, func(ctx context.Context) (Insight, error) {
		return g.model.Generate(ctx, snap)
	})
}

// ContentHash identifies a weather reading for insight reuse. Only city,
// temperature, humidity and description take part; wind speed, feels-like,
// observation time and units do not.
func ContentHash(snap Snapshot) string {
	data := fmt.Sprintf("%s:%s:%d:%s",
		snap.City,
		strconv.FormatFloat(snap.Temperature, 'f', -1, 64),
		snap.Humidity,
		snap.Description,
	)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:hashLen]
}
