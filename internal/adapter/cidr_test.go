package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netinventory/internal/domain"
)

func TestExpandCIDR(t *testing.T) {
	tests := []struct {
		name          string
		cidr          string
		maxHosts      int
		wantCount     int
		wantFirst     string
		wantLast      string
		wantTruncated bool
	}{
		{"slash 30", "192.168.1.0/30", 254, 2, "192.168.1.1", "192.168.1.2", false},
		{"slash 24", "10.0.0.0/24", 254, 254, "10.0.0.1", "10.0.0.254", false},
		{"host bits are masked", "10.0.0.77/24", 254, 254, "10.0.0.1", "10.0.0.254", false},
		{"slash 23 capped", "10.0.0.0/23", 254, 254, "10.0.0.1", "10.0.0.254", true},
		{"slash 23 uncapped", "10.0.0.0/23", 0, 510, "10.0.0.1", "10.0.1.254", false},
		{"slash 8 capped", "10.0.0.0/8", 100, 100, "10.0.0.1", "10.0.0.100", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosts, truncated, err := ExpandCIDR(tt.cidr, tt.maxHosts)
			require.NoError(t, err)
			require.Len(t, hosts, tt.wantCount)
			assert.Equal(t, tt.wantFirst, hosts[0])
			assert.Equal(t, tt.wantLast, hosts[len(hosts)-1])
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestExpandCIDRRejects(t *testing.T) {
	for _, cidr := range []string{
		"10.0.0.0/7",
		"10.0.0.0/31",
		"10.0.0.1/32",
		"10.0.0.0",
		"garbage",
		"fd00::/64",
	} {
		t.Run(cidr, func(t *testing.T) {
			hosts, _, err := ExpandCIDR(cidr, 254)
			assert.ErrorIs(t, err, domain.ErrInvalidCIDR)
			assert.Nil(t, hosts)
		})
	}
}

func TestParseIPv4(t *testing.T) {
	ip, err := ParseIPv4(" 192.168.0.10 ")
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.10", ip)

	for _, bad := range []string{"", "300.1.1.1", "::1", "host.example"} {
		_, err := ParseIPv4(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidIP, bad)
	}
}
