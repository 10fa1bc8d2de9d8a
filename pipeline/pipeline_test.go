package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmwu/stratus/types"
)

func dnsRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"Name":            fmt.Sprintf("host%d.example.com.", i),
			"Type":            "A",
			"TTL":             int64(300),
			"ResourceRecords": []any{map[string]any{"Value": fmt.Sprintf("192.0.2.%d", i+1)}},
		})
	}
	return records
}

func dnsContext() types.CollectContext {
	return types.CollectContext{
		AccountID: "123456789012",
		ZoneID:    "Z123",
		ZoneName:  "example.com",
	}
}

func TestProcessAssemblesItems(t *testing.T) {
	p := New()

	items, failures, err := p.Process(context.Background(), "aws", "dns_record", dnsRecords(3), dnsContext(), nil)

	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "aws", first.Provider)
	assert.Equal(t, "123456789012", first.AccountID)
	assert.Equal(t, "dns_record", first.ResourceType)
	assert.Equal(t, "example.com|host0.example.com|A", first.ResourceID)
	assert.Equal(t, "host0.example.com", first.Name)
	assert.Equal(t, "Z123", first.Zone)
	assert.Equal(t, "example.com", first.DomainName)
	assert.False(t, first.Unresolved)
	assert.Nil(t, first.IPAddresses, "dns records never get denormalized addresses")

	extra := first.ResourceMetadata["extra"].(map[string]any)
	assert.Equal(t, "192.0.2.1", extra["value"])
	assert.NotNil(t, first.ResourceMetadata["provider_raw"], "raw retained by default")
}

func TestProcessOrderAndCompleteness(t *testing.T) {
	p := New()

	items, _, err := p.Process(context.Background(), "aws", "dns_record", dnsRecords(5), dnsContext(), nil)

	require.NoError(t, err)
	require.Len(t, items, 5, "every record yields exactly one item")
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("host%d.example.com", i), item.Name)
	}
}

func TestProcessUnresolvedReturnedNotSunk(t *testing.T) {
	p := New()

	var sunk int
	sink := func(ctx context.Context, item *types.Item) error {
		sunk++
		return nil
	}

	records := []map[string]any{
		{"CertificateArn": "arn:aws:acm:us-east-1:1:certificate/x"},
		{"CertificateArn": "arn:aws:acm:us-east-1:1:certificate/y"},
	}
	items, failures, err := p.Process(context.Background(), "aws", "certificate", records, dnsContext(), sink)

	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, items, 2)
	assert.Equal(t, 0, sunk)
	for _, item := range items {
		assert.True(t, item.Unresolved)
		assert.NotEmpty(t, item.UnresolvedReason)
	}
}

func TestProcessSinkFailureDoesNotAbortBatch(t *testing.T) {
	p := New()

	sinkErr := errors.New("insert failed")
	var sunk []string
	sink := func(ctx context.Context, item *types.Item) error {
		if item.Name == "host2.example.com" {
			return sinkErr
		}
		sunk = append(sunk, item.Name)
		return nil
	}

	items, failures, err := p.Process(context.Background(), "aws", "dns_record", dnsRecords(5), dnsContext(), sink)

	require.NoError(t, err)
	require.Len(t, items, 5, "failed record still yields its item")
	assert.Len(t, sunk, 4)

	require.Len(t, failures, 1)
	assert.Equal(t, 2, failures[0].Index)
	assert.Equal(t, "example.com|host2.example.com|A", failures[0].ResourceID)
	assert.ErrorIs(t, failures[0].Err, sinkErr)
}

func TestProcessCancellation(t *testing.T) {
	p := New()

	ctx, cancel := context.WithCancel(context.Background())
	sink := func(ctx context.Context, item *types.Item) error {
		cancel()
		return nil
	}

	items, _, err := p.Process(ctx, "aws", "dns_record", dnsRecords(5), dnsContext(), sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, items, 1, "items produced before cancellation are returned")
}

func TestProcessStripProviderRaw(t *testing.T) {
	p := New(StripProviderRaw())

	items, _, err := p.Process(context.Background(), "aws", "dns_record", dnsRecords(1), dnsContext(), nil)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotContains(t, items[0].ResourceMetadata, "provider_raw")
}

func TestProcessComputeItem(t *testing.T) {
	p := New()

	records := []map[string]any{{
		"InstanceId":       "i-0abc123",
		"InstanceType":     "t3.micro",
		"State":            map[string]any{"Name": "running"},
		"PublicIpAddress":  "198.51.100.4",
		"PrivateIpAddress": "10.0.1.5",
		"VpcId":            "vpc-0abc",
	}}
	cctx := types.CollectContext{AccountID: "123456789012", Region: "us-east-1"}

	items, _, err := p.Process(context.Background(), "aws", "ecs", records, cctx, nil)

	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "i-0abc123", item.ResourceID)
	assert.Equal(t, "us-east-1", item.Region)
	assert.Equal(t, "running", item.Status)
	assert.Equal(t, "vpc-0abc", item.VPCID)
	assert.Equal(t, []string{"10.0.1.5", "198.51.100.4"}, item.IPAddresses)
}
