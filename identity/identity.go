// Package identity guarantees every canonical resource carries a stable
// identifier before reconciliation. Many DNS and network APIs return records
// with no durable id; without a synthesized key every poll would look like a
// brand-new resource and diffing would be meaningless.
package identity

import (
	"crypto/sha1" // #nosec G505 -- content addressing, not authentication
	"encoding/hex"
	"sort"
	"strings"

	"github.com/jimmwu/stratus/types"
)

// MaxIDLength bounds the reconciliation lookup key. Longer composed ids are
// replaced by their 40-character SHA-1 hex digest.
const MaxIDLength = 128

// Synthesize returns a stable resource id for the canonical record. A
// non-empty provider-native id always wins. Unsupported resource types
// return "" and the pipeline treats the record as unresolved.
func Synthesize(resourceType string, c types.CanonicalResource) string {
	if c.ResourceID != "" {
		return c.ResourceID
	}

	switch strings.ToLower(resourceType) {
	case "dns_record":
		return dnsID(c)
	case "vpc":
		return vpcID(c)
	case "ecs", "ec2":
		return computeID(c)
	case "slb", "elb", "alb", "nlb":
		return loadBalancerID(c)
	default:
		return ""
	}
}

// dnsID composes zone + name + record type. Value and TTL are deliberately
// excluded: changing a record's value is a diff, not a new identity.
func dnsID(c types.CanonicalResource) string {
	zone := strings.ToLower(c.ExtraString("zone_name"))
	name := strings.ToLower(c.ResourceName)
	rtype := strings.ToUpper(c.ExtraString("record_type"))
	return boundID(zone + "|" + name + "|" + rtype)
}

func vpcID(c types.CanonicalResource) string {
	region := strings.ToLower(c.Region)
	cidr := c.ExtraString("cidr_block")
	return boundID(region + "|" + cidr)
}

func computeID(c types.CanonicalResource) string {
	region := strings.ToLower(c.Region)
	name := strings.ToLower(c.ResourceName)
	itype := strings.ToLower(c.ExtraString("instance_type"))
	ip := firstAddress(c.Extra["private_ip"])
	return boundID(region + "|" + name + "|" + itype + "|" + ip)
}

func loadBalancerID(c types.CanonicalResource) string {
	region := strings.ToLower(c.Region)
	name := strings.ToLower(c.ResourceName)
	dnsName := c.ExtraString("dns_name")
	return boundID(region + "|" + name + "|" + dnsName)
}

// firstAddress pulls one representative address out of whatever shape the
// provider used for the private ip field.
func firstAddress(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			s, _ := t[0].(string)
			return s
		}
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	case map[string]any:
		if s, ok := t["PrivateIpAddress"].(string); ok {
			return s
		}
		// Sorted keys: map iteration order must not leak into identity.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
	}
	return ""
}

// boundID hashes composed ids that exceed the storage bound. The digest is a
// pure function of the input, so it stays reproducible across polls.
func boundID(raw string) string {
	if len(raw) <= MaxIDLength {
		return raw
	}
	sum := sha1.Sum([]byte(raw)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
