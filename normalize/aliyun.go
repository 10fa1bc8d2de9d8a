package normalize

import "github.com/jimmwu/stratus/types"

// normalizeDNSAliyun maps an Alidns record. Alidns splits the display name
// into RR + domain, so the canonical name is composed here; "@" means the
// zone apex.
func normalizeDNSAliyun(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)

	domain := stringOf(raw["DomainName"])
	if domain == "" {
		domain = ctx.ZoneName
	}
	domain = stripTrailingDot(domain)

	name := domain
	if rr := stringOf(raw["RR"]); rr != "" && rr != "@" {
		name = rr + "." + domain
	}

	c.ResourceID = stringOf(raw["RecordId"])
	c.ResourceName = name
	c.Status = stringOf(raw["Status"])
	if c.Status == "" {
		c.Status = "ENABLE"
	}

	putExtra(c.Extra, "record_type", raw["Type"])
	putExtra(c.Extra, "value", raw["Value"])
	putExtra(c.Extra, "ttl", raw["TTL"])
	putExtra(c.Extra, "zone_id", ctx.ZoneID)
	putExtra(c.Extra, "zone_name", domain)
	putExtra(c.Extra, "weight", raw["Weight"])
	return c
}

// normalizeVPCAliyun maps an Aliyun VPC description.
func normalizeVPCAliyun(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["VpcId"])
	c.ResourceName = stringOf(raw["VpcName"])
	c.Status = stringOf(raw["Status"])
	putExtra(c.Extra, "cidr_block", raw["CidrBlock"])
	putExtra(c.Extra, "vrouter_id", raw["VRouterId"])
	return c
}

// normalizeComputeAliyun maps an Aliyun ECS instance. Address lists sit under
// nested IpAddress wrappers.
func normalizeComputeAliyun(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["InstanceId"])
	c.ResourceName = stringOf(raw["InstanceName"])
	c.Status = stringOf(raw["Status"])
	putExtra(c.Extra, "instance_type", raw["InstanceType"])
	putExtra(c.Extra, "public_ip", mapOf(raw["PublicIpAddress"])["IpAddress"])
	private := mapOf(raw["InnerIpAddress"])["IpAddress"]
	if len(sliceOf(private)) == 0 {
		private = mapOf(mapOf(raw["VpcAttributes"])["PrivateIpAddress"])["IpAddress"]
	}
	putExtra(c.Extra, "private_ip", private)
	putExtra(c.Extra, "vpc_id", mapOf(raw["VpcAttributes"])["VpcId"])
	return c
}

// normalizeSLBAliyun maps an Aliyun SLB instance.
func normalizeSLBAliyun(raw map[string]any, ctx types.CollectContext) types.CanonicalResource {
	c := baseSchema(raw, ctx)
	c.ResourceID = stringOf(raw["LoadBalancerId"])
	c.ResourceName = stringOf(raw["LoadBalancerName"])
	c.Status = stringOf(raw["LoadBalancerStatus"])
	putExtra(c.Extra, "address", raw["Address"])
	putExtra(c.Extra, "vpc_id", raw["VpcId"])
	putExtra(c.Extra, "listeners", mapOf(raw["ListenerPortsAndProtocol"])["ListenerPortAndProtocol"])
	return c
}
