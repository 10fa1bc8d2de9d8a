package types

// CanonicalResource is the normalized, provider-agnostic form of one raw
// provider record. It is transient: the pipeline assembles it into an Item
// before anything touches the store.
type CanonicalResource struct {
	Provider     string            `json:"provider,omitempty"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	ResourceName string            `json:"resource_name,omitempty"`
	Region       string            `json:"region,omitempty"`
	Status       string            `json:"status,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
	Tags         map[string]string `json:"tags"`
	Extra        map[string]any    `json:"extra"`
	ProviderRaw  map[string]any    `json:"provider_raw,omitempty"`
}

// ExtraString returns a string-valued extra field, or "" when absent or
// not a string.
func (c *CanonicalResource) ExtraString(key string) string {
	if c.Extra == nil {
		return ""
	}
	s, _ := c.Extra[key].(string)
	return s
}

// Meta projects the canonical resource into the metadata blob persisted with
// the stored row. Empty scalar fields are dropped so that metadata comparison
// never flaps on absent-vs-empty; tags and extra are always present as maps.
func (c *CanonicalResource) Meta() map[string]any {
	m := make(map[string]any)
	put := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	put("resource_id", c.ResourceID)
	put("resource_name", c.ResourceName)
	put("resource_type", c.ResourceType)
	put("region", c.Region)
	put("status", c.Status)
	put("created_at", c.CreatedAt)
	put("updated_at", c.UpdatedAt)

	if c.Tags != nil {
		m["tags"] = c.Tags
	} else {
		m["tags"] = map[string]string{}
	}
	if c.Extra != nil {
		m["extra"] = c.Extra
	} else {
		m["extra"] = map[string]any{}
	}
	if c.ProviderRaw != nil {
		m["provider_raw"] = c.ProviderRaw
	}
	return m
}
