package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jimmwu/stratus/types"
)

func TestSynthesizeNativeIDWins(t *testing.T) {
	c := types.CanonicalResource{
		ResourceID:   "cf-record-id",
		ResourceName: "web.example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "A"},
	}

	assert.Equal(t, "cf-record-id", Synthesize("dns_record", c))
}

func TestSynthesizeDNS(t *testing.T) {
	c := types.CanonicalResource{
		ResourceName: "Web.Example.Com",
		Extra:        map[string]any{"zone_name": "Example.Com", "record_type": "a"},
	}

	assert.Equal(t, "example.com|web.example.com|A", Synthesize("dns_record", c))
}

func TestSynthesizeDNSValueDoesNotChangeIdentity(t *testing.T) {
	a := types.CanonicalResource{
		ResourceName: "web.example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "A", "value": "192.0.2.1", "ttl": 300},
	}
	b := types.CanonicalResource{
		ResourceName: "web.example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "A", "value": "192.0.2.99", "ttl": 60},
	}

	assert.Equal(t, Synthesize("dns_record", a), Synthesize("dns_record", b))
}

func TestSynthesizeDNSTypeChangesIdentity(t *testing.T) {
	a := types.CanonicalResource{
		ResourceName: "web.example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "A"},
	}
	aaaa := types.CanonicalResource{
		ResourceName: "web.example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "AAAA"},
	}

	assert.NotEqual(t, Synthesize("dns_record", a), Synthesize("dns_record", aaaa))
}

func TestSynthesizeVPC(t *testing.T) {
	c := types.CanonicalResource{
		Region: "US-East-1",
		Extra:  map[string]any{"cidr_block": "10.0.0.0/16"},
	}

	assert.Equal(t, "us-east-1|10.0.0.0/16", Synthesize("vpc", c))
}

func TestSynthesizeCompute(t *testing.T) {
	c := types.CanonicalResource{
		Region:       "us-east-1",
		ResourceName: "Worker-1",
		Extra: map[string]any{
			"instance_type": "T3.Micro",
			"private_ip":    "10.0.1.5",
		},
	}

	assert.Equal(t, "us-east-1|worker-1|t3.micro|10.0.1.5", Synthesize("ecs", c))
}

func TestSynthesizeComputeAddressShapes(t *testing.T) {
	tests := []struct {
		name      string
		privateIP any
		want      string
	}{
		{"flat string", "10.0.1.5", "10.0.1.5"},
		{"any list", []any{"10.0.1.5", "10.0.1.6"}, "10.0.1.5"},
		{"string list", []string{"10.0.1.5"}, "10.0.1.5"},
		{"map with known key", map[string]any{"PrivateIpAddress": "10.0.1.5"}, "10.0.1.5"},
		{"absent", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.CanonicalResource{
				Region:       "us-east-1",
				ResourceName: "worker",
				Extra:        map[string]any{"instance_type": "t3.micro", "private_ip": tt.privateIP},
			}
			assert.Equal(t, "us-east-1|worker|t3.micro|"+tt.want, Synthesize("ecs", c))
		})
	}
}

func TestSynthesizeComputeMapOrderIndependent(t *testing.T) {
	// Identity must not depend on map iteration order.
	c := types.CanonicalResource{
		Region:       "us-east-1",
		ResourceName: "worker",
		Extra: map[string]any{
			"instance_type": "t3.micro",
			"private_ip":    map[string]any{"b": "10.0.0.2", "a": "10.0.0.1", "c": "10.0.0.3"},
		},
	}

	first := Synthesize("ecs", c)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Synthesize("ecs", c))
	}
	assert.True(t, strings.HasSuffix(first, "|10.0.0.1"))
}

func TestSynthesizeLoadBalancer(t *testing.T) {
	c := types.CanonicalResource{
		Region:       "us-east-1",
		ResourceName: "Web-LB",
		Extra:        map[string]any{"dns_name": "web-lb.us-east-1.elb.amazonaws.com"},
	}

	assert.Equal(t, "us-east-1|web-lb|web-lb.us-east-1.elb.amazonaws.com", Synthesize("slb", c))
}

func TestSynthesizeUnknownTypeIsEmpty(t *testing.T) {
	c := types.CanonicalResource{ResourceName: "something"}
	assert.Equal(t, "", Synthesize("certificate", c))
}

func TestSynthesizeLongIDHashed(t *testing.T) {
	c := types.CanonicalResource{
		ResourceName: strings.Repeat("a", 200) + ".example.com",
		Extra:        map[string]any{"zone_name": "example.com", "record_type": "TXT"},
	}

	id := Synthesize("dns_record", c)
	assert.Len(t, id, 40)
	assert.NotContains(t, id, "|")

	// Hashing is deterministic across calls.
	assert.Equal(t, id, Synthesize("dns_record", c))
}

func TestSynthesizeAtBoundaryNotHashed(t *testing.T) {
	// Exactly MaxIDLength stays verbatim.
	name := strings.Repeat("a", MaxIDLength-len("zone|")-len("|A"))
	c := types.CanonicalResource{
		ResourceName: name,
		Extra:        map[string]any{"zone_name": "zone", "record_type": "A"},
	}

	id := Synthesize("dns_record", c)
	assert.Len(t, id, MaxIDLength)
	assert.Contains(t, id, "|")
}
