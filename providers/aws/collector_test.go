package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute53 struct {
	zones       []*route53.ListHostedZonesOutput
	records     []*route53.ListResourceRecordSetsOutput
	zoneCalls   int
	recordCalls int
}

func (f *fakeRoute53) ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	out := f.zones[f.zoneCalls]
	f.zoneCalls++
	return out, nil
}

func (f *fakeRoute53) ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	out := f.records[f.recordCalls]
	f.recordCalls++
	return out, nil
}

type fakeEC2 struct {
	vpcs      *ec2.DescribeVpcsOutput
	instances *ec2.DescribeInstancesOutput
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return f.vpcs, nil
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return f.instances, nil
}

type fakeELB struct {
	out *elasticloadbalancingv2.DescribeLoadBalancersOutput
}

func (f *fakeELB) DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error) {
	return f.out, nil
}

func testCollector(r53 *fakeRoute53, ec2c *fakeEC2, elb *fakeELB) *Collector {
	return NewWithClients(r53, ec2c, elb, Options{
		AccountID: "123456789012",
		Region:    "us-east-1",
		Tags:      map[string]string{"env": "prod"},
	})
}

func emptyEC2() *fakeEC2 {
	return &fakeEC2{
		vpcs:      &ec2.DescribeVpcsOutput{},
		instances: &ec2.DescribeInstancesOutput{},
	}
}

func emptyELB() *fakeELB {
	return &fakeELB{out: &elasticloadbalancingv2.DescribeLoadBalancersOutput{}}
}

func TestCollectBatchesPerZone(t *testing.T) {
	r53 := &fakeRoute53{
		zones: []*route53.ListHostedZonesOutput{{
			HostedZones: []r53types.HostedZone{
				{Id: awssdk.String("/hostedzone/Z111"), Name: awssdk.String("example.com.")},
				{Id: awssdk.String("/hostedzone/Z222"), Name: awssdk.String("other.org.")},
			},
		}},
		records: []*route53.ListResourceRecordSetsOutput{
			{ResourceRecordSets: []r53types.ResourceRecordSet{{
				Name: awssdk.String("web.example.com."),
				Type: r53types.RRTypeA,
				TTL:  awssdk.Int64(300),
				ResourceRecords: []r53types.ResourceRecord{
					{Value: awssdk.String("192.0.2.1")},
				},
			}}},
			{ResourceRecordSets: []r53types.ResourceRecordSet{}},
		},
	}

	c := testCollector(r53, emptyEC2(), emptyELB())
	batches, err := c.Collect(context.Background())
	require.NoError(t, err)

	// Two DNS batches plus vpc, ecs, slb.
	require.Len(t, batches, 5)

	dns := batches[0]
	assert.Equal(t, "aws", dns.Provider)
	assert.Equal(t, "dns_record", dns.ResourceType)
	assert.Equal(t, "Z111", dns.Context.ZoneID)
	assert.Equal(t, "example.com", dns.Context.ZoneName)
	assert.Equal(t, "123456789012", dns.Context.AccountID)
	assert.Equal(t, map[string]string{"env": "prod"}, dns.Context.Tags)

	require.Len(t, dns.Records, 1)
	record := dns.Records[0]
	assert.Equal(t, "web.example.com.", record["Name"])
	assert.Equal(t, "A", record["Type"])
	assert.Equal(t, int64(300), record["TTL"])
	assert.Equal(t, []any{map[string]any{"Value": "192.0.2.1"}}, record["ResourceRecords"])

	assert.Equal(t, "Z222", batches[1].Context.ZoneID)
	assert.Empty(t, batches[1].Records)

	assert.Equal(t, "vpc", batches[2].ResourceType)
	assert.Equal(t, "ecs", batches[3].ResourceType)
	assert.Equal(t, "slb", batches[4].ResourceType)
}

func TestCollectRecordSetPagination(t *testing.T) {
	r53 := &fakeRoute53{
		zones: []*route53.ListHostedZonesOutput{{
			HostedZones: []r53types.HostedZone{
				{Id: awssdk.String("/hostedzone/Z111"), Name: awssdk.String("example.com.")},
			},
		}},
		records: []*route53.ListResourceRecordSetsOutput{
			{
				ResourceRecordSets: []r53types.ResourceRecordSet{
					{Name: awssdk.String("a.example.com."), Type: r53types.RRTypeA},
				},
				IsTruncated:    true,
				NextRecordName: awssdk.String("b.example.com."),
				NextRecordType: r53types.RRTypeA,
			},
			{
				ResourceRecordSets: []r53types.ResourceRecordSet{
					{Name: awssdk.String("b.example.com."), Type: r53types.RRTypeA},
				},
			},
		},
	}

	c := testCollector(r53, emptyEC2(), emptyELB())
	batches, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, batches[0].Records, 2)
	assert.Equal(t, 2, r53.recordCalls)
}

func TestCollectComputeAndNetwork(t *testing.T) {
	r53 := &fakeRoute53{zones: []*route53.ListHostedZonesOutput{{}}}
	ec2c := &fakeEC2{
		vpcs: &ec2.DescribeVpcsOutput{Vpcs: []ec2types.Vpc{{
			VpcId:     awssdk.String("vpc-1"),
			CidrBlock: awssdk.String("10.0.0.0/16"),
			State:     ec2types.VpcStateAvailable,
			IsDefault: awssdk.Bool(false),
		}}},
		instances: &ec2.DescribeInstancesOutput{Reservations: []ec2types.Reservation{{
			Instances: []ec2types.Instance{{
				InstanceId:       awssdk.String("i-0abc"),
				InstanceType:     ec2types.InstanceTypeT3Micro,
				State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
				PrivateIpAddress: awssdk.String("10.0.1.5"),
				VpcId:            awssdk.String("vpc-1"),
			}},
		}}},
	}
	elb := &fakeELB{out: &elasticloadbalancingv2.DescribeLoadBalancersOutput{
		LoadBalancers: []elbv2types.LoadBalancer{{
			LoadBalancerName: awssdk.String("web-lb"),
			DNSName:          awssdk.String("web-lb.us-east-1.elb.amazonaws.com"),
			State:            &elbv2types.LoadBalancerState{Code: elbv2types.LoadBalancerStateEnumActive},
		}},
	}}

	c := testCollector(r53, ec2c, elb)
	batches, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 3)

	vpc := batches[0].Records[0]
	assert.Equal(t, "vpc-1", vpc["VpcId"])
	assert.Equal(t, "available", vpc["State"])

	instance := batches[1].Records[0]
	assert.Equal(t, "i-0abc", instance["InstanceId"])
	assert.Equal(t, "t3.micro", instance["InstanceType"])
	assert.Equal(t, map[string]any{"Name": "running"}, instance["State"])
	assert.Equal(t, "10.0.1.5", instance["PrivateIpAddress"])

	lb := batches[2].Records[0]
	assert.Equal(t, "web-lb", lb["LoadBalancerName"])
	assert.Equal(t, map[string]any{"Code": "active"}, lb["State"])
}

func TestProviderName(t *testing.T) {
	assert.Equal(t, "aws", (&Collector{}).Provider())
}

func TestTrimHelpers(t *testing.T) {
	assert.Equal(t, "Z123", trimZoneID("/hostedzone/Z123"))
	assert.Equal(t, "Z123", trimZoneID("Z123"))
	assert.Equal(t, "example.com", trimTrailingDot("example.com."))
	assert.Equal(t, "example.com", trimTrailingDot("example.com"))
}
