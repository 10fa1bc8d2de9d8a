package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/jimmwu/stratus/types"
)

// compareFields is the explicit contract of "fields that matter for change
// detection". Adding a column to the stored row does not silently widen the
// diff surface; it has to be added here.
var compareFields = []struct {
	name string
	get  func(*types.CloudResource) any
}{
	{"name", func(r *types.CloudResource) any { return r.Name }},
	{"status", func(r *types.CloudResource) any { return r.Status }},
	{"zone", func(r *types.CloudResource) any { return r.Zone }},
	{"domain_name", func(r *types.CloudResource) any { return r.DomainName }},
	{"vpc_id", func(r *types.CloudResource) any { return r.VPCID }},
	{"ip_addresses", func(r *types.CloudResource) any { return r.IPAddresses }},
	{"tags", func(r *types.CloudResource) any { return r.Tags }},
	{"resource_metadata", func(r *types.CloudResource) any { return r.ResourceMetadata }},
}

// computeDiff returns the per-field changes between the stored and incoming
// rows, keyed by field name. Empty map means no change.
func computeDiff(stored, incoming *types.CloudResource) map[string]types.FieldChange {
	changes := make(map[string]types.FieldChange)
	for _, field := range compareFields {
		oldVal := canonicalValue(field.get(stored))
		newVal := canonicalValue(field.get(incoming))
		if oldVal != newVal {
			changes[field.name] = types.FieldChange{Old: oldVal, New: newVal}
		}
	}
	return changes
}

// canonicalValue renders a field value as deterministic text. Structured
// values serialize as JSON, whose map keys are emitted in sorted order, so a
// key-order difference never registers as a change. Scalars compare as their
// plain textual form.
func canonicalValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return ""
		}
		b, _ := json.Marshal(t)
		return string(b)
	case map[string]string:
		if len(t) == 0 {
			return ""
		}
		b, _ := json.Marshal(t)
		return string(b)
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
