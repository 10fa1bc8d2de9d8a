// Package cloudflare collects DNS records from Cloudflare zones.
package cloudflare

import (
	"context"
	"fmt"
	"time"

	cf "github.com/cloudflare/cloudflare-go"

	"github.com/jimmwu/stratus/providers"
	"github.com/jimmwu/stratus/types"
)

// API defines the Cloudflare operations used by the collector.
type API interface {
	ListZones(ctx context.Context, z ...string) ([]cf.Zone, error)
	ListDNSRecords(ctx context.Context, rc *cf.ResourceContainer, params cf.ListDNSRecordsParams) ([]cf.DNSRecord, *cf.ResultInfo, error)
}

// Collector fetches DNS records for every zone an API token can see.
type Collector struct {
	client    API
	accountID string
	tags      map[string]string
}

// Options configures a collector against a configured account.
type Options struct {
	AccountID string
	APIToken  string
	Tags      map[string]string
}

// New creates a collector with a real API client.
func New(opts Options) (*Collector, error) {
	api, err := cf.NewWithAPIToken(opts.APIToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
	}
	return &Collector{client: api, accountID: opts.AccountID, tags: opts.Tags}, nil
}

// NewWithClient creates a collector with an injected client, for tests.
func NewWithClient(client API, opts Options) *Collector {
	return &Collector{client: client, accountID: opts.AccountID, tags: opts.Tags}
}

// Provider returns the provider tag.
func (c *Collector) Provider() string { return "cloudflare" }

// Collect lists all zones and their records, one batch per zone.
func (c *Collector) Collect(ctx context.Context) ([]providers.RawBatch, error) {
	zones, err := c.client.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	var batches []providers.RawBatch
	for _, zone := range zones {
		records, err := c.collectRecords(ctx, zone)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", zone.Name, err)
		}

		batches = append(batches, providers.RawBatch{
			Provider:     "cloudflare",
			ResourceType: "dns_record",
			Records:      records,
			Context: types.CollectContext{
				AccountID: c.accountID,
				Tags:      c.tags,
				ZoneID:    zone.ID,
				ZoneName:  zone.Name,
			},
		})
	}
	return batches, nil
}

// collectRecords pages through every record in one zone.
func (c *Collector) collectRecords(ctx context.Context, zone cf.Zone) ([]map[string]any, error) {
	var records []map[string]any

	params := cf.ListDNSRecordsParams{}
	params.ResultInfo.Page = 1
	for {
		page, info, err := c.client.ListDNSRecords(ctx, cf.ZoneIdentifier(zone.ID), params)
		if err != nil {
			return nil, err
		}
		for _, record := range page {
			records = append(records, rawRecord(record, zone))
		}
		if info == nil || info.Page >= info.TotalPages {
			break
		}
		params.ResultInfo.Page = info.Page + 1
	}
	return records, nil
}

func rawRecord(record cf.DNSRecord, zone cf.Zone) map[string]any {
	raw := map[string]any{
		"id":      record.ID,
		"type":    record.Type,
		"name":    record.Name,
		"content": record.Content,
		"ttl":     record.TTL,
		"zone_id": zone.ID,
	}
	if record.Proxied != nil {
		raw["proxied"] = *record.Proxied
	}
	if record.Priority != nil {
		raw["priority"] = int(*record.Priority)
	}
	if !record.CreatedOn.IsZero() {
		raw["created_on"] = record.CreatedOn.UTC().Format(time.RFC3339)
	}
	if !record.ModifiedOn.IsZero() {
		raw["modified_on"] = record.ModifiedOn.UTC().Format(time.RFC3339)
	}
	return raw
}
