// Package normalize maps raw, provider-shaped records into the canonical
// resource schema. Dispatch is an explicit table keyed by
// "provider.resource_type", built once; unknown pairs degrade to the generic
// base mapping instead of failing, so every provider stays collectible before
// a specific rule exists.
package normalize

import (
	"sort"
	"strings"

	"github.com/jimmwu/stratus/types"
)

// Func maps one raw record plus collect context into a canonical resource.
// Implementations must not return errors: malformed input degrades to empty
// or null fields.
type Func func(raw map[string]any, ctx types.CollectContext) types.CanonicalResource

// Registry holds the dispatch table from (provider, resource type) to
// normalizer rules.
type Registry struct {
	rules map[string]Func
}

// NewRegistry builds the dispatch table with all known provider rules.
func NewRegistry() *Registry {
	return &Registry{rules: map[string]Func{
		"aws.dns_record":        normalizeDNSAWS,
		"cloudflare.dns_record": normalizeDNSCloudflare,
		"aliyun.dns_record":     normalizeDNSAliyun,

		"aws.vpc":    normalizeVPCAWS,
		"aliyun.vpc": normalizeVPCAliyun,

		"aws.ecs":    normalizeComputeAWS,
		"aliyun.ecs": normalizeComputeAliyun,

		"aws.slb":    normalizeSLBAWS,
		"aliyun.slb": normalizeSLBAliyun,
	}}
}

// Normalize dispatches to the registered rule for (provider, resourceType),
// falling back to the base mapping when none is registered.
func (r *Registry) Normalize(provider, resourceType string, raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	provider = strings.ToLower(provider)
	resourceType = strings.ToLower(resourceType)

	fn, ok := r.rules[provider+"."+resourceType]
	if !ok {
		fn = baseSchema
	}

	c := fn(raw, ctx)
	c.Provider = provider
	c.ResourceType = resourceType
	return c
}

// Rules returns the registered dispatch keys, sorted. Exposed so the table
// stays inspectable and testable.
func (r *Registry) Rules() []string {
	keys := make([]string, 0, len(r.rules))
	for k := range r.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// baseSchema copies only the common fields from context and preserves the raw
// record. Identity and name are left empty for the identity synthesizer or a
// future specific rule.
func baseSchema(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	tags := ctx.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	return types.CanonicalResource{
		Region:      ctx.Region,
		Status:      ctx.Status,
		CreatedAt:   ToISO8601(ctx.CreatedAt),
		UpdatedAt:   ToISO8601(ctx.UpdatedAt),
		Tags:        tags,
		Extra:       map[string]any{},
		ProviderRaw: raw,
	}
}

// stripTrailingDot removes the trailing dot authoritative DNS APIs append to
// fully qualified names. The dotted form must never leak into canonical
// display fields.
func stripTrailingDot(name string) string {
	return strings.TrimSuffix(name, ".")
}
