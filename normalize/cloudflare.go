package normalize

import "github.com/jimmwu/stratus/types"

// normalizeDNSCloudflare maps a Cloudflare DNS record. Cloudflare records
// carry a durable id and flat content; proxied records surface a distinct
// status so proxy toggles show up as status diffs.
func normalizeDNSCloudflare(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)

	c.ResourceID = stringOf(raw["id"])
	c.ResourceName = stripTrailingDot(stringOf(raw["name"]))
	switch {
	case boolOf(raw["proxied"]):
		c.Status = "proxied"
	case stringOf(raw["status"]) != "":
		c.Status = stringOf(raw["status"])
	default:
		c.Status = "active"
	}

	putExtra(c.Extra, "record_type", raw["type"])
	putExtra(c.Extra, "value", raw["content"])
	putExtra(c.Extra, "ttl", raw["ttl"])
	zoneID := stringOf(raw["zone_id"])
	if zoneID == "" {
		zoneID = ctx.ZoneID
	}
	putExtra(c.Extra, "zone_id", zoneID)
	putExtra(c.Extra, "zone_name", ctx.ZoneName)
	putExtra(c.Extra, "proxied", raw["proxied"])
	putExtra(c.Extra, "priority", raw["priority"])
	return c
}
