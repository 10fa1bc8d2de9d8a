// Package extract derives denormalized columns from canonical extras.
package extract

import (
	"net/netip"
	"regexp"
	"sort"
	"strings"

	"github.com/jimmwu/stratus/types"
)

// ipCandidate matches runs of characters that could form an IPv4 or IPv6
// address inside free-form text. Every match is validated by a real parse
// before it counts.
var ipCandidate = regexp.MustCompile(`[0-9a-fA-F:.]+`)

// IPAddresses walks the address-bearing extra fields for the resource type
// and returns a deduplicated, sorted set of valid IPs, or nil when none are
// found. DNS resource types are excluded: a record's value pointing at an
// address is not the same as the resource running on it.
func IPAddresses(c types.CanonicalResource, resourceType string) []string {
	var candidates []any
	switch strings.ToLower(resourceType) {
	case "ecs", "ec2":
		candidates = []any{c.Extra["public_ip"], c.Extra["private_ip"]}
	case "slb", "elb", "alb", "nlb":
		candidates = []any{c.Extra["address"], c.Extra["dns_name"]}
	default:
		return nil
	}

	set := make(map[string]struct{})
	for _, cand := range candidates {
		collect(cand, set)
	}
	if len(set) == 0 {
		return nil
	}

	ips := make([]string, 0, len(set))
	for ip := range set {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	return ips
}

// collect recursively flattens nested maps and sequences, harvesting every
// valid address. Malformed structures contribute nothing rather than failing.
func collect(v any, set map[string]struct{}) {
	switch t := v.(type) {
	case string:
		if isIP(t) {
			set[t] = struct{}{}
			return
		}
		for _, m := range ipCandidate.FindAllString(t, -1) {
			if isIP(m) {
				set[m] = struct{}{}
			}
		}
	case []any:
		for _, x := range t {
			collect(x, set)
		}
	case []string:
		for _, x := range t {
			collect(x, set)
		}
	case map[string]any:
		for _, x := range t {
			collect(x, set)
		}
	}
}

func isIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}
