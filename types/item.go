package types

// Item is the assembled output of the pipeline for one raw record. Its field
// set is the contract consumed by the persistence layer: everything the
// reconciler compares lives here.
type Item struct {
	Provider         string            `json:"provider"`
	AccountID        string            `json:"account_id"`
	ResourceType     string            `json:"resource_type"`
	ResourceID       string            `json:"resource_id"`
	Region           string            `json:"region,omitempty"`
	Status           string            `json:"status,omitempty"`
	Name             string            `json:"name,omitempty"`
	Zone             string            `json:"zone,omitempty"`
	DomainName       string            `json:"domain_name,omitempty"`
	VPCID            string            `json:"vpc_id,omitempty"`
	IPAddresses      []string          `json:"ip_addresses,omitempty"`
	Tags             map[string]string `json:"tags"`
	ResourceMetadata map[string]any    `json:"resource_metadata"`

	// Unresolved marks an item whose identity could not be established.
	// Unresolved items are returned to the caller but never sent to a sink.
	Unresolved       bool   `json:"unresolved,omitempty"`
	UnresolvedReason string `json:"unresolved_reason,omitempty"`
}

// CollectContext carries the contextual metadata a collector hands to the
// pipeline alongside each raw batch.
type CollectContext struct {
	AccountID string            `json:"account_id"`
	Region    string            `json:"region,omitempty"`
	Status    string            `json:"status,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	ZoneID    string            `json:"zone_id,omitempty"`
	ZoneName  string            `json:"zone_name,omitempty"`
	CreatedAt any               `json:"created_at,omitempty"`
	UpdatedAt any               `json:"updated_at,omitempty"`
}
