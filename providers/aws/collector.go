// Package aws collects raw resource records from AWS: Route53 record sets,
// VPCs, EC2 instances, and load balancers.
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/jimmwu/stratus/providers"
	"github.com/jimmwu/stratus/types"
)

// Collector fetches raw records from one AWS account.
type Collector struct {
	route53Client Route53API
	ec2Client     EC2API
	elbClient     ELBAPI

	accountID string
	region    string
	tags      map[string]string
}

// Options configures a collector against a configured account.
type Options struct {
	AccountID string
	Region    string
	Profile   string
	Tags      map[string]string
}

// New creates a collector with real SDK clients.
func New(ctx context.Context, opts Options) (*Collector, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Collector{
		route53Client: route53.NewFromConfig(cfg),
		ec2Client:     ec2.NewFromConfig(cfg),
		elbClient:     elasticloadbalancingv2.NewFromConfig(cfg),
		accountID:     opts.AccountID,
		region:        opts.Region,
		tags:          opts.Tags,
	}, nil
}

// NewWithClients creates a collector with injected clients, for tests.
func NewWithClients(r53 Route53API, ec2c EC2API, elb ELBAPI, opts Options) *Collector {
	return &Collector{
		route53Client: r53,
		ec2Client:     ec2c,
		elbClient:     elb,
		accountID:     opts.AccountID,
		region:        opts.Region,
		tags:          opts.Tags,
	}
}

// Provider returns the provider tag.
func (c *Collector) Provider() string { return "aws" }

// Collect fetches DNS records per hosted zone, then VPCs, instances, and
// load balancers for the region.
func (c *Collector) Collect(ctx context.Context) ([]providers.RawBatch, error) {
	var batches []providers.RawBatch

	dnsBatches, err := c.collectDNS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect route53 records: %w", err)
	}
	batches = append(batches, dnsBatches...)

	vpcs, err := c.collectVPCs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect vpcs: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aws", ResourceType: "vpc", Records: vpcs, Context: c.baseContext(),
	})

	instances, err := c.collectInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect instances: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aws", ResourceType: "ecs", Records: instances, Context: c.baseContext(),
	})

	loadBalancers, err := c.collectLoadBalancers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect load balancers: %w", err)
	}
	batches = append(batches, providers.RawBatch{
		Provider: "aws", ResourceType: "slb", Records: loadBalancers, Context: c.baseContext(),
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

// collectDNS lists all hosted zones, then all record sets per zone, one
// batch per zone so the zone context travels with the records.
func (c *Collector) collectDNS(ctx context.Context) ([]providers.RawBatch, error) {
	var batches []providers.RawBatch

	input := &route53.ListHostedZonesInput{}
	for {
		out, err := c.route53Client.ListHostedZones(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, zone := range out.HostedZones {
			zoneID := trimZoneID(awssdk.ToString(zone.Id))
			zoneName := trimTrailingDot(awssdk.ToString(zone.Name))

			records, err := c.collectRecordSets(ctx, zoneID)
			if err != nil {
				return nil, fmt.Errorf("zone %s: %w", zoneID, err)
			}

			cctx := c.baseContext()
			cctx.ZoneID = zoneID
			cctx.ZoneName = zoneName
			batches = append(batches, providers.RawBatch{
				Provider:     "aws",
				ResourceType: "dns_record",
				Records:      records,
				Context:      cctx,
			})
		}

		if !out.IsTruncated {
			break
		}
		input.Marker = out.NextMarker
	}
	return batches, nil
}

// collectRecordSets pages through every record set in one hosted zone.
func (c *Collector) collectRecordSets(ctx context.Context, zoneID string) ([]map[string]any, error) {
	var records []map[string]any

	input := &route53.ListResourceRecordSetsInput{HostedZoneId: awssdk.String(zoneID)}
	for {
		out, err := c.route53Client.ListResourceRecordSets(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, rrs := range out.ResourceRecordSets {
			records = append(records, rawRecordSet(rrs))
		}

		if !out.IsTruncated {
			break
		}
		input.StartRecordName = out.NextRecordName
		input.StartRecordType = out.NextRecordType
		input.StartRecordIdentifier = out.NextRecordIdentifier
	}
	return records, nil
}

func (c *Collector) collectVPCs(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	input := &ec2.DescribeVpcsInput{}
	for {
		out, err := c.ec2Client.DescribeVpcs(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, vpc := range out.Vpcs {
			records = append(records, rawVPC(vpc))
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	return records, nil
}

// collectInstances flattens reservations into one record per instance.
func (c *Collector) collectInstances(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	input := &ec2.DescribeInstancesInput{}
	for {
		out, err := c.ec2Client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				records = append(records, rawInstance(instance))
			}
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	return records, nil
}

func (c *Collector) collectLoadBalancers(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any

	input := &elasticloadbalancingv2.DescribeLoadBalancersInput{}
	for {
		out, err := c.elbClient.DescribeLoadBalancers(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, lb := range out.LoadBalancers {
			records = append(records, rawLoadBalancer(lb))
		}
		if out.NextMarker == nil {
			break
		}
		input.Marker = out.NextMarker
	}
	return records, nil
}
