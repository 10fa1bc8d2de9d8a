// Package providers defines the boundary between cloud SDKs and the
// pipeline: a collector produces raw, provider-shaped records; everything
// downstream is provider-agnostic.
package providers

import (
	"context"

	"github.com/jimmwu/stratus/types"
)

// RawBatch is one batch of raw records sharing a resource type and collect
// context. Records are untyped on purpose: the pipeline consumes them
// exactly as the provider API shaped them.
type RawBatch struct {
	Provider     string
	ResourceType string
	Records      []map[string]any
	Context      types.CollectContext
}

// Collector produces raw record batches for one configured account.
// Ownership of network sessions and credentials stays entirely on this side
// of the boundary.
type Collector interface {
	// Provider returns the provider tag ("aws", "cloudflare", "aliyun").
	Provider() string

	// Collect fetches all supported resource types for the account.
	Collect(ctx context.Context) ([]RawBatch, error)
}
