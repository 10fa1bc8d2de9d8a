package types

import (
	"encoding/json"
	"time"
)

// CloudAccount groups resources under a (provider, native account id) pair.
// Created lazily on first resource observation for that pair.
type CloudAccount struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Provider  string            `json:"provider"`
	AccountID string            `json:"account_id"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CloudResource is the persisted entity. The natural key
// (CloudAccountID, ResourceType, ResourceID) is unique; ID is an opaque
// generated primary key.
type CloudResource struct {
	ID               string            `json:"id"`
	CloudAccountID   string            `json:"cloud_account_id"`
	Provider         string            `json:"provider"`
	ResourceType     string            `json:"resource_type"`
	ResourceID       string            `json:"resource_id"`
	Region           string            `json:"region,omitempty"`
	Zone             string            `json:"zone,omitempty"`
	Name             string            `json:"name,omitempty"`
	Status           string            `json:"status,omitempty"`
	DomainName       string            `json:"domain_name,omitempty"`
	VPCID            string            `json:"vpc_id,omitempty"`
	IPAddresses      []string          `json:"ip_addresses,omitempty"`
	Tags             map[string]string `json:"tags"`
	ResourceMetadata map[string]any    `json:"resource_metadata"`
	FetchedAt        time.Time         `json:"fetched_at"`
}

// FieldChange records one field's old and new value inside a diff log entry.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// DiffLogEntry is the append-only audit record emitted when reconciliation
// detects at least one changed field. Never mutated afterwards.
type DiffLogEntry struct {
	ID             int64                  `json:"id"`
	CloudAccountID string                 `json:"cloud_account_id"`
	Provider       string                 `json:"provider"`
	Region         string                 `json:"region,omitempty"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	ChangedFields  map[string]FieldChange `json:"changed_fields"`
	RawBefore      json.RawMessage        `json:"raw_before,omitempty"`
	RawAfter       json.RawMessage        `json:"raw_after,omitempty"`
	ChangedAt      time.Time              `json:"changed_at"`
}

// ResourceRelationship is a tagged edge between two stored resources.
type ResourceRelationship struct {
	ID           int64  `json:"id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	RelationType string `json:"relation_type"`
}

// ResolvedDNSRecord stores the answer of one authoritative DNS resolution for
// a stored dns_record resource. Written by the resolver batch job, not by
// reconciliation.
type ResolvedDNSRecord struct {
	ID              string    `json:"id"`
	CloudResourceID string    `json:"cloud_resource_id"`
	DomainName      string    `json:"domain_name"`
	Region          string    `json:"region,omitempty"`
	RecordType      string    `json:"record_type"`
	ResolvedData    []string  `json:"resolved_data"`
	Description     string    `json:"description,omitempty"`
	ResolvedAt      time.Time `json:"resolved_at"`
}
