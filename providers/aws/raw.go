package aws

import (
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Converters from SDK structs to the untyped raw records the pipeline
// consumes. Field names mirror the AWS API wire shape, since that is what
// the normalizer rules dispatch on.

func rawRecordSet(rrs r53types.ResourceRecordSet) map[string]any {
	raw := map[string]any{
		"Name": awssdk.ToString(rrs.Name),
		"Type": string(rrs.Type),
	}
	if rrs.TTL != nil {
		raw["TTL"] = *rrs.TTL
	}
	if rrs.SetIdentifier != nil {
		raw["SetIdentifier"] = *rrs.SetIdentifier
	}
	if len(rrs.ResourceRecords) > 0 {
		values := make([]any, 0, len(rrs.ResourceRecords))
		for _, rr := range rrs.ResourceRecords {
			values = append(values, map[string]any{"Value": awssdk.ToString(rr.Value)})
		}
		raw["ResourceRecords"] = values
	}
	if rrs.AliasTarget != nil {
		raw["AliasTarget"] = map[string]any{
			"DNSName":      awssdk.ToString(rrs.AliasTarget.DNSName),
			"HostedZoneId": awssdk.ToString(rrs.AliasTarget.HostedZoneId),
		}
	}
	return raw
}

func rawVPC(vpc ec2types.Vpc) map[string]any {
	return map[string]any{
		"VpcId":     awssdk.ToString(vpc.VpcId),
		"CidrBlock": awssdk.ToString(vpc.CidrBlock),
		"State":     string(vpc.State),
		"IsDefault": awssdk.ToBool(vpc.IsDefault),
	}
}

func rawInstance(instance ec2types.Instance) map[string]any {
	raw := map[string]any{
		"InstanceId":   awssdk.ToString(instance.InstanceId),
		"InstanceType": string(instance.InstanceType),
	}
	if instance.State != nil {
		raw["State"] = map[string]any{"Name": string(instance.State.Name)}
	}
	if instance.PublicIpAddress != nil {
		raw["PublicIpAddress"] = *instance.PublicIpAddress
	}
	if instance.PrivateIpAddress != nil {
		raw["PrivateIpAddress"] = *instance.PrivateIpAddress
	}
	if instance.VpcId != nil {
		raw["VpcId"] = *instance.VpcId
	}
	if instance.LaunchTime != nil {
		raw["LaunchTime"] = instance.LaunchTime.UTC().Format(time.RFC3339)
	}
	return raw
}

func rawLoadBalancer(lb elbv2types.LoadBalancer) map[string]any {
	raw := map[string]any{
		"LoadBalancerName": awssdk.ToString(lb.LoadBalancerName),
		"LoadBalancerArn":  awssdk.ToString(lb.LoadBalancerArn),
		"DNSName":          awssdk.ToString(lb.DNSName),
		"Type":             string(lb.Type),
	}
	if lb.State != nil {
		raw["State"] = map[string]any{"Code": string(lb.State.Code)}
	}
	if lb.VpcId != nil {
		raw["VpcId"] = *lb.VpcId
	}
	if lb.CreatedTime != nil {
		raw["CreatedTime"] = lb.CreatedTime.UTC().Format(time.RFC3339)
	}
	return raw
}

// trimZoneID strips the "/hostedzone/" prefix Route53 puts on zone ids.
func trimZoneID(id string) string {
	return strings.TrimPrefix(id, "/hostedzone/")
}

func trimTrailingDot(name string) string {
	return strings.TrimSuffix(name, ".")
}
