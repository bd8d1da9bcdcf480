// Package cache decides whether persisted lake artifacts are reusable.
//
// The two policies are intentionally asymmetric: a staged price artifact for
// a closed historical window never changes, so existence at its exact key is
// permanently fresh; fundamentals are periodically restated and expire on a
// TTL measured from the record's own assembly timestamp.
package cache

import (
	"context"
	"time"

	"github.com/chevalinn/minilake/internal/common"
	"github.com/chevalinn/minilake/internal/interfaces"
	"github.com/chevalinn/minilake/internal/models"
)

// Resolver applies freshness policy over the artifact store.
type Resolver struct {
	store  interfaces.LakeStore
	logger *common.Logger
}

// NewResolver creates a cache resolver backed by the given store.
func NewResolver(store interfaces.LakeStore, logger *common.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// StagedFresh reports whether the staged artifact for the exact window key
// exists. Existence alone is sufficient; no TTL, no partial-window reuse.
func (r *Resolver) StagedFresh(key models.StagedKey) bool {
	fresh := r.store.HasStaged(key)
	r.logger.Debug().
		Str("ticker", key.Ticker).
		Str("start", key.Start).
		Str("end", key.End).
		Bool("hit", fresh).
		Msg("Staged cache probe")
	return fresh
}

// FundamentalsFresh loads the persisted record and reports whether it can be
// returned unchanged: it exists, its timestamp is within ttl, and no forced
// refresh was requested. The loaded record is returned so a hit costs one
// read.
func (r *Resolver) FundamentalsFresh(ctx context.Context, ticker string, ttl time.Duration, force bool) (*models.FundamentalsRecord, bool) {
	if force {
		return nil, false
	}
	rec, err := r.store.ReadFundamentals(ctx, ticker)
	if err != nil {
		return nil, false
	}
	if !common.IsFresh(rec.Timestamp, ttl) {
		r.logger.Debug().Str("ticker", ticker).Time("assembled", rec.Timestamp).Msg("Fundamentals cache stale")
		return rec, false
	}
	return rec, true
}
