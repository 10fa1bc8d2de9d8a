package pipeline

import "github.com/jimmwu/stratus/types"

// loadBalancerTypes are the resource types whose addresses DNS records can
// point at.
var loadBalancerTypes = map[string]bool{
	"slb": true, "elb": true, "alb": true, "nlb": true,
}

// LinkDNSTargets derives tagged edges between dns_record items and the load
// balancers their values point at, matched by DNS name or address within the
// same batch set. This is the whole extent of cross-resource inference: a
// simple edge list, nothing transitive.
func LinkDNSTargets(items []types.Item) []types.ResourceRelationship {
	targets := make(map[string]string)
	for _, item := range items {
		if !loadBalancerTypes[item.ResourceType] || item.Unresolved {
			continue
		}
		if dnsName := extraString(item, "dns_name"); dnsName != "" {
			targets[dnsName] = item.ResourceID
		}
		if addr := extraString(item, "address"); addr != "" {
			targets[addr] = item.ResourceID
		}
		for _, ip := range item.IPAddresses {
			targets[ip] = item.ResourceID
		}
	}
	if len(targets) == 0 {
		return nil
	}

	var edges []types.ResourceRelationship
	for _, item := range items {
		if item.ResourceType != "dns_record" || item.Unresolved {
			continue
		}
		for _, value := range recordValues(item) {
			if targetID, ok := targets[value]; ok {
				edges = append(edges, types.ResourceRelationship{
					SourceID:     item.ResourceID,
					TargetID:     targetID,
					RelationType: "resolves_to",
				})
			}
		}
	}
	return edges
}

// recordValues pulls the record's value(s) out of the item metadata,
// tolerating both the scalar and list shapes the normalizers produce.
func recordValues(item types.Item) []string {
	extra, _ := item.ResourceMetadata["extra"].(map[string]any)
	switch v := extra["value"].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		var out []string
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func extraString(item types.Item, key string) string {
	extra, _ := item.ResourceMetadata["extra"].(map[string]any)
	s, _ := extra[key].(string)
	return s
}
