package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaDropsEmptyScalars(t *testing.T) {
	c := CanonicalResource{
		ResourceID:   "r1",
		ResourceName: "",
		Status:       "active",
	}

	m := c.Meta()

	assert.Equal(t, "r1", m["resource_id"])
	assert.Equal(t, "active", m["status"])
	assert.NotContains(t, m, "resource_name")
	assert.NotContains(t, m, "created_at")
}

func TestMetaAlwaysHasTagAndExtraMaps(t *testing.T) {
	m := (&CanonicalResource{}).Meta()

	assert.Equal(t, map[string]string{}, m["tags"])
	assert.Equal(t, map[string]any{}, m["extra"])
	assert.NotContains(t, m, "provider_raw")
}

func TestMetaKeepsProviderRaw(t *testing.T) {
	raw := map[string]any{"Name": "web.example.com."}
	m := (&CanonicalResource{ProviderRaw: raw}).Meta()

	assert.Equal(t, raw, m["provider_raw"])
}

func TestExtraString(t *testing.T) {
	c := CanonicalResource{Extra: map[string]any{"zone_id": "Z1", "ttl": 300}}

	assert.Equal(t, "Z1", c.ExtraString("zone_id"))
	assert.Equal(t, "", c.ExtraString("ttl"), "non-string values read as empty")
	assert.Equal(t, "", c.ExtraString("absent"))
	assert.Equal(t, "", (&CanonicalResource{}).ExtraString("zone_id"))
}
