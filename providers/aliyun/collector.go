// Package aliyun collects raw resource records from Alibaba Cloud: Alidns
// records, VPCs, ECS instances, and SLB instances.
package aliyun

import (
	"context"
	"fmt"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/alidns"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/ecs"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/slb"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/vpc"

	"github.com/jimmwu/stratus/providers"
	"github.com/jimmwu/stratus/types"
)

const pageSize = 100

// Collector fetches raw records from one Alibaba Cloud account. The SDK is
// request/response based and does not take a context; cancellation is
// checked between pages instead.
type Collector struct {
	dnsClient DNSAPI
	vpcClient VPCAPI
	ecsClient ECSAPI
	slbClient SLBAPI

	accountID string
	region    string
	tags      map[string]string
}

// Options configures a collector against a configured account.
type Options struct {
	AccountID       string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Tags            map[string]string
}

// New creates a collector with real SDK clients.
func New(opts Options) (*Collector, error) {
	dnsClient, err := alidns.NewClientWithAccessKey(opts.Region, opts.AccessKeyID, opts.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create alidns client: %w", err)
	}
	vpcClient, err := vpc.NewClientWithAccessKey(opts.Region, opts.AccessKeyID, opts.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create vpc client: %w", err)
	}
	ecsClient, err := ecs.NewClientWithAccessKey(opts.Region, opts.AccessKeyID, opts.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create ecs client: %w", err)
	}
	slbClient, err := slb.NewClientWithAccessKey(opts.Region, opts.AccessKeyID, opts.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create slb client: %w", err)
	}

	return &Collector{
		dnsClient: dnsClient,
		vpcClient: vpcClient,
		ecsClient: ecsClient,
		slbClient: slbClient,
		accountID: opts.AccountID,
		region:    opts.Region,
		tags:      opts.Tags,
	}, nil
}

// NewWithClients creates a collector with injected clients, for tests.
func NewWithClients(dns DNSAPI, vpcc VPCAPI, ecsc ECSAPI, slbc SLBAPI, opts Options) *Collector {
	return &Collector{
		dnsClient: dns,
		vpcClient: vpcc,
		ecsClient: ecsc,
		slbClient: slbc,
		accountID: opts.AccountID,
		region:    opts.Region,
		tags:      opts.Tags,
	}
}

// Provider returns the provider tag.
func (c *Collector) Provider() string { return "aliyun" }

// Collect fetches DNS records per domain, then VPCs, instances, and load
// balancers for the region.
func (c *Collector) Collect(ctx context.Context) ([]providers.RawBatch, error) {
	var batches []providers.RawBatch

	dnsBatches, err := c.collectDNS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect alidns records: %w", err)
	}
	batches = append(batches, dnsBatches...)

	vpcs, err := c.collectVPCs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect vpcs: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aliyun", ResourceType: "vpc", Records: vpcs, Context: c.baseContext(),
	})

	instances, err := c.collectInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect instances: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aliyun", ResourceType: "ecs", Records: instances, Context: c.baseContext(),
	})

	loadBalancers, err := c.collectLoadBalancers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect load balancers: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aliyun", ResourceType: "slb", Records: loadBalancers, Context: c.baseContext(),
	})

	return batches, nil
}

func (c *Collector) baseContext() types.CollectContext {
	return types.CollectContext{
		AccountID: c.accountID,
		Region:    c.region,
		Tags:      c.tags,
	}
}

// collectDNS lists all domains, then all records per domain, one batch per
// domain so the zone context travels with the records.
func (c *Collector) collectDNS(ctx context.Context) ([]providers.RawBatch, error) {
	var batches []providers.RawBatch

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		request := alidns.CreateDescribeDomainsRequest()
		request.PageNumber = requests.NewInteger(page)
		request.PageSize = requests.NewInteger(pageSize)
		response, err := c.dnsClient.DescribeDomains(request)
		if err != nil {
			return nil, err
		}

		for _, domain := range response.Domains.Domain {
			records, err := c.collectDomainRecords(ctx, domain.DomainName)
			if err != nil {
				return nil, fmt.Errorf("domain %s: %w", domain.DomainName, err)
			}

			cctx := c.baseContext()
			cctx.ZoneID = domain.DomainId
			cctx.ZoneName = domain.DomainName
			batches = append(batches, providers.RawBatch{
				Provider:     "aliyun",
				ResourceType: "dns_record",
				Records:      records,
				Context:      cctx,
			})
		}

		if len(response.Domains.Domain) < pageSize {
			break
		}
	}
	return batches, nil
}

// collectDomainRecords pages through every record in one domain.
func (c *Collector) collectDomainRecords(ctx context.Context, domainName string) ([]map[string]any, error) {
	var records []map[string]any

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		request := alidns.CreateDescribeDomainRecordsRequest()
		request.DomainName = domainName
		request.PageNumber = requests.NewInteger(page)
		request.PageSize = requests.NewInteger(pageSize)
		response, err := c.dnsClient.DescribeDomainRecords(request)
		if err != nil {
			return nil, err
		}

		for _, record := range response.DomainRecords.Record {
			records = append(records, rawDomainRecord(record))
		}

		if len(response.DomainRecords.Record) < pageSize {
			break
		}
	}
	return records, nil
}

func (c *Collector) collectVPCs(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		request := vpc.CreateDescribeVpcsRequest()
		request.PageNumber = requests.NewInteger(page)
		request.PageSize = requests.NewInteger(pageSize)
		response, err := c.vpcClient.DescribeVpcs(request)
		if err != nil {
			return nil, err
		}

		for _, v := range response.Vpcs.Vpc {
			records = append(records, rawVPC(v))
		}

		if len(response.Vpcs.Vpc) < pageSize {
			break
		}
	}
	return records, nil
}

func (c *Collector) collectInstances(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		request := ecs.CreateDescribeInstancesRequest()
		request.PageNumber = requests.NewInteger(page)
		request.PageSize = requests.NewInteger(pageSize)
		response, err := c.ecsClient.DescribeInstances(request)
		if err != nil {
			return nil, err
		}

		for _, instance := range response.Instances.Instance {
			records = append(records, rawInstance(instance))
		}

		if len(response.Instances.Instance) < pageSize {
			break
		}
	}
	return records, nil
}

// collectLoadBalancers lists SLB instances and fetches listeners per
// instance, since the list call does not include them.
func (c *Collector) collectLoadBalancers(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		request := slb.CreateDescribeLoadBalancersRequest()
		request.PageNumber = requests.NewInteger(page)
		request.PageSize = requests.NewInteger(pageSize)
		response, err := c.slbClient.DescribeLoadBalancers(request)
		if err != nil {
			return nil, err
		}

		for _, lb := range response.LoadBalancers.LoadBalancer {
			raw := rawLoadBalancer(lb)

			attrRequest := slb.CreateDescribeLoadBalancerAttributeRequest()
			attrRequest.LoadBalancerId = lb.LoadBalancerId
			attr, err := c.slbClient.DescribeLoadBalancerAttribute(attrRequest)
			if err != nil {
				return nil, fmt.Errorf("load balancer %s: %w", lb.LoadBalancerId, err)
			}
			raw["ListenerPortsAndProtocol"] = rawListeners(attr)

			records = append(records, raw)
		}

		if len(response.LoadBalancers.LoadBalancer) < pageSize {
			break
		}
	}
	return records, nil
}

func rawDomainRecord(record alidns.Record) map[string]any {
	raw := map[string]any{
		"RecordId":   record.RecordId,
		"DomainName": record.DomainName,
		"RR":         record.RR,
		"Type":       record.Type,
		"Value":      record.Value,
		"TTL":        record.TTL,
		"Status":     record.Status,
		"Line":       record.Line,
	}
	if record.Weight != 0 {
		raw["Weight"] = record.Weight
	}
	return raw
}

func rawVPC(v vpc.Vpc) map[string]any {
	return map[string]any{
		"VpcId":        v.VpcId,
		"VpcName":      v.VpcName,
		"CidrBlock":    v.CidrBlock,
		"Status":       v.Status,
		"VRouterId":    v.VRouterId,
		"CreationTime": v.CreationTime,
	}
}

func rawInstance(instance ecs.Instance) map[string]any {
	return map[string]any{
		"InstanceId":   instance.InstanceId,
		"InstanceName": instance.InstanceName,
		"InstanceType": instance.InstanceType,
		"Status":       instance.Status,
		"ZoneId":       instance.ZoneId,
		"CreationTime": instance.CreationTime,
		"PublicIpAddress": map[string]any{
			"IpAddress": anyStrings(instance.PublicIpAddress.IpAddress),
		},
		"InnerIpAddress": map[string]any{
			"IpAddress": anyStrings(instance.InnerIpAddress.IpAddress),
		},
		"VpcAttributes": map[string]any{
			"VpcId": instance.VpcAttributes.VpcId,
			"PrivateIpAddress": map[string]any{
				"IpAddress": anyStrings(instance.VpcAttributes.PrivateIpAddress.IpAddress),
			},
		},
	}
}

func rawLoadBalancer(lb slb.LoadBalancer) map[string]any {
	return map[string]any{
		"LoadBalancerId":     lb.LoadBalancerId,
		"LoadBalancerName":   lb.LoadBalancerName,
		"LoadBalancerStatus": lb.LoadBalancerStatus,
		"Address":            lb.Address,
		"AddressType":        lb.AddressType,
		"VpcId":              lb.VpcId,
		"CreateTime":         lb.CreateTime,
	}
}

func rawListeners(attr *slb.DescribeLoadBalancerAttributeResponse) map[string]any {
	listeners := make([]any, 0, len(attr.ListenerPortsAndProtocol.ListenerPortAndProtocol))
	for _, l := range attr.ListenerPortsAndProtocol.ListenerPortAndProtocol {
		listeners = append(listeners, map[string]any{
			"ListenerPort":     l.ListenerPort,
			"ListenerProtocol": l.ListenerProtocol,
		})
	}
	return map[string]any{"ListenerPortAndProtocol": listeners}
}

// anyStrings widens a string list so downstream accessors see []any, the
// same shape a JSON round trip would produce.
func anyStrings(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
