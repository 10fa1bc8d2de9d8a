// Package resolver runs authoritative DNS resolution over stored DNS record
// resources and persists the answers alongside the inventory.
package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/jimmwu/stratus/store"
	"github.com/jimmwu/stratus/telemetry"
	"github.com/jimmwu/stratus/types"
)

// Exchanger is the DNS client surface used by the resolver. *dns.Client
// satisfies it.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// queryTypes maps stored record types to query types. Other record types are
// skipped: their values are data, not names to chase.
var queryTypes = map[string]uint16{
	"A":     dns.TypeA,
	"AAAA":  dns.TypeAAAA,
	"CNAME": dns.TypeCNAME,
}

// Resolver resolves stored dns_record resources. For each record's zone the
// authoritative nameserver is discovered once via an NS query; when discovery
// fails the configured recursive server answers directly.
type Resolver struct {
	store  store.Store
	client Exchanger
	server string
	logger *telemetry.Logger
	now    func() time.Time

	// zone name -> authoritative server addr, filled during a run
	authoritative map[string]string
}

// New creates a resolver querying the given server ("host:port").
func New(st store.Store, server string) *Resolver {
	return &Resolver{
		store:         st,
		client:        &dns.Client{Timeout: 5 * time.Second},
		server:        server,
		logger:        telemetry.NewLogger("resolver"),
		now:           time.Now,
		authoritative: make(map[string]string),
	}
}

// NewWithClient creates a resolver with an injected DNS client, for tests.
func NewWithClient(st store.Store, client Exchanger, server string) *Resolver {
	r := New(st, server)
	r.client = client
	return r
}

// Summary reports one resolution run.
type Summary struct {
	Queried int
	Stored  int
	Failed  int
	Skipped int
}

// Run resolves every stored DNS record of a supported type across all known
// accounts and stores one ResolvedDNSRecord per answered query.
func (r *Resolver) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	accounts, err := r.store.ListAccounts()
	if err != nil {
		return summary, fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, account := range accounts {
		records, err := r.store.ListByAccountType(account.ID, "dns_record")
		if err != nil {
			return summary, fmt.Errorf("account %s: %w", account.AccountID, err)
		}

		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			recordType := metadataRecordType(record)
			qtype, ok := queryTypes[recordType]
			if !ok || record.Name == "" {
				summary.Skipped++
				continue
			}

			summary.Queried++
			server := r.serverForZone(ctx, record.DomainName)
			answers, err := r.resolve(ctx, record.Name, qtype, server)
			if err != nil {
				summary.Failed++
				r.logger.WithContext(ctx).Warn().
					Err(err).
					Str("domain", record.Name).
					Str("record_type", recordType).
					Msg("resolution failed")
				continue
			}

			resolved := &types.ResolvedDNSRecord{
				CloudResourceID: record.ID,
				DomainName:      record.Name,
				Region:          record.Region,
				RecordType:      recordType,
				ResolvedData:    answers,
				ResolvedAt:      r.now().UTC(),
			}
			if err := r.store.InsertResolved(resolved); err != nil {
				r.logger.LogStoreError(ctx, "insert_resolved", err)
				summary.Failed++
				continue
			}
			summary.Stored++
		}
	}

	return summary, nil
}

// serverForZone discovers the zone's authoritative nameserver, caching the
// answer for the rest of the run. Discovery failures fall back to the
// configured recursive server.
func (r *Resolver) serverForZone(ctx context.Context, zone string) string {
	if zone == "" {
		return r.server
	}
	if cached, ok := r.authoritative[zone]; ok {
		return cached
	}

	server := r.server
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(zone), dns.TypeNS)
	msg.RecursionDesired = true
	if in, _, err := r.client.ExchangeContext(ctx, msg, r.server); err == nil && in.Rcode == dns.RcodeSuccess {
		for _, rr := range in.Answer {
			if ns, ok := rr.(*dns.NS); ok {
				server = net.JoinHostPort(strings.TrimSuffix(ns.Ns, "."), "53")
				break
			}
		}
	}
	r.authoritative[zone] = server
	return server
}

// resolve performs one query and flattens the answer section.
func (r *Resolver) resolve(ctx context.Context, name string, qtype uint16, server string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query %s: rcode %s", name, dns.RcodeToString[in.Rcode])
	}

	var answers []string
	for _, rr := range in.Answer {
		switch a := rr.(type) {
		case *dns.A:
			answers = append(answers, a.A.String())
		case *dns.AAAA:
			answers = append(answers, a.AAAA.String())
		case *dns.CNAME:
			answers = append(answers, a.Target)
		}
	}
	return answers, nil
}

// metadataRecordType pulls the provider record type out of persisted
// metadata. Stored rows round-trip through JSON, so extra is map[string]any.
func metadataRecordType(res *types.CloudResource) string {
	extra, _ := res.ResourceMetadata["extra"].(map[string]any)
	recordType, _ := extra["record_type"].(string)
	return recordType
}
