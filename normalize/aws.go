package normalize

import "github.com/jimmwu/stratus/types"

// normalizeDNSAWS maps a Route53 resource record set. Values come from
// ResourceRecords[].Value plus the alias target's DNS name when present.
// Record sets have no durable native id unless SetIdentifier is set.
func normalizeDNSAWS(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)

	var values []string
	for _, rr := range sliceOf(raw["ResourceRecords"]) {
		if v := stringOf(mapOf(rr)["Value"]); v != "" {
			values = append(values, v)
		}
	}
	alias := mapOf(raw["AliasTarget"])
	if aliasName := stripTrailingDot(stringOf(alias["DNSName"])); aliasName != "" {
		values = append(values, aliasName)
	}

	c.ResourceID = stringOf(raw["SetIdentifier"])
	c.ResourceName = stripTrailingDot(stringOf(raw["Name"]))
	if c.Status == "" {
		c.Status = "active"
	}

	putExtra(c.Extra, "record_type", raw["Type"])
	switch len(values) {
	case 0:
	case 1:
		c.Extra["value"] = values[0]
	default:
		c.Extra["value"] = values
	}
	putExtra(c.Extra, "ttl", raw["TTL"])
	putExtra(c.Extra, "zone_id", ctx.ZoneID)
	putExtra(c.Extra, "zone_name", ctx.ZoneName)
	putExtra(c.Extra, "alias_target", raw["AliasTarget"])
	return c
}

// normalizeVPCAWS maps an EC2 VPC description.
func normalizeVPCAWS(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["VpcId"])
	c.ResourceName = stringOf(raw["VpcId"])
	c.Status = stringOf(raw["State"])
	putExtra(c.Extra, "cidr_block", raw["CidrBlock"])
	putExtra(c.Extra, "is_default", raw["IsDefault"])
	return c
}

// normalizeComputeAWS maps an EC2 instance. Address fields are preserved in
// whatever shape the collector delivered; the attribute extractor digs IPs
// out of either flat strings or nested structures.
func normalizeComputeAWS(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["InstanceId"])
	c.ResourceName = stringOf(raw["InstanceId"])
	c.Status = stringOf(mapOf(raw["State"])["Name"])
	putExtra(c.Extra, "instance_type", raw["InstanceType"])
	putExtra(c.Extra, "public_ip", raw["PublicIpAddress"])
	putExtra(c.Extra, "private_ip", raw["PrivateIpAddress"])
	putExtra(c.Extra, "vpc_id", raw["VpcId"])
	return c
}

// normalizeSLBAWS maps an elastic load balancer description.
func normalizeSLBAWS(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["LoadBalancerName"])
	c.ResourceName = stringOf(raw["LoadBalancerName"])
	c.Status = stringOf(mapOf(raw["State"])["Code"])
	putExtra(c.Extra, "dns_name", raw["DNSName"])
	putExtra(c.Extra, "vpc_id", raw["VpcId"])
	putExtra(c.Extra, "listeners", raw["ListenerDescriptions"])
	return c
}
