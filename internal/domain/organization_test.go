package domain

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "sw", []string{"sw"}},
		{"trims and lowercases", " SW , Switch,,router ", []string{"sw", "switch", "router"}},
		{"only separators", " , ,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitKeywords(tt.input))
		})
	}
}

func TestJoinKeywords(t *testing.T) {
	assert.Equal(t, "sw,switch", JoinKeywords([]string{" SW", "", "Switch "}))
	assert.Equal(t, "", JoinKeywords(nil))
}

func TestUnitMatchesName(t *testing.T) {
	unit := Unit{Name: "Network Equipment", Keywords: "sw, router,ap"}

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.True(t, unit.MatchesName("SW-Core1"))
		assert.True(t, unit.MatchesName("edge-ROUTER-2"))
	})

	t.Run("no keyword present", func(t *testing.T) {
		assert.False(t, unit.MatchesName("printer-3"))
	})

	t.Run("unit without keywords never matches", func(t *testing.T) {
		assert.False(t, Unit{Name: "Empty"}.MatchesName("anything"))
	})
}

func TestIPRangeContains(t *testing.T) {
	r := IPRange{CIDR: "10.1.2.0/24"}

	assert.True(t, r.Contains(netip.MustParseAddr("10.1.2.77")))
	assert.False(t, r.Contains(netip.MustParseAddr("10.1.3.1")))

	t.Run("unmasked prefix is normalized", func(t *testing.T) {
		assert.True(t, IPRange{CIDR: "10.1.2.9/24"}.Contains(netip.MustParseAddr("10.1.2.1")))
	})

	t.Run("invalid range contains nothing", func(t *testing.T) {
		assert.False(t, IPRange{CIDR: "garbage"}.Contains(netip.MustParseAddr("10.1.2.1")))
	})
}

func TestReservedNames(t *testing.T) {
	for _, name := range []string{"Unknown Unit", "unknown unit", "  UNKNOWN UNIT "} {
		assert.True(t, IsReservedUnitName(name), name)
	}
	for _, name := range []string{"Unknown", "Unknown Units", "Servers"} {
		assert.False(t, IsReservedUnitName(name), name)
	}

	assert.True(t, IsReservedDepartmentName(" unknown department"))
	assert.False(t, IsReservedDepartmentName("Unknown Unit"))
}
