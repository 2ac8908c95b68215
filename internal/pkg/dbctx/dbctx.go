package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos fall back to their own *gorm.DB when Tx is nil, so callers only
// populate Tx when several writes must commit together (e.g. persisting
// an AI message with its visualizations).
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background is a convenience for worker code that has no HTTP request.
func Background() Context {
	return Context{Ctx: context.Background()}
}
