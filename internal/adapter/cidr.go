package adapter

import (
	"fmt"
	"net/netip"
	"strings"

	"netinventory/internal/domain"
)

const (
	minPrefixBits = 8
	maxPrefixBits = 30
)

// ExpandCIDR lists the host addresses of an IPv4 block, excluding the network and
// broadcast addresses. Prefix lengths outside /8../30 are rejected with
// domain.ErrInvalidCIDR. At most maxHosts addresses are returned (0 = no cap);
// truncated reports whether the block held more.
func ExpandCIDR(cidr string, maxHosts int) (hosts []string, truncated bool, err error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q: %v", domain.ErrInvalidCIDR, cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, false, fmt.Errorf("%w: %q: only IPv4 is supported", domain.ErrInvalidCIDR, cidr)
	}
	bits := prefix.Bits()
	if bits < minPrefixBits || bits > maxPrefixBits {
		return nil, false, fmt.Errorf("%w: %q: prefix length must be between /%d and /%d",
			domain.ErrInvalidCIDR, cidr, minPrefixBits, maxPrefixBits)
	}

	prefix = prefix.Masked()
	total := uint64(1)<<(32-bits) - 2

	limit := total
	if maxHosts > 0 && uint64(maxHosts) < total {
		limit = uint64(maxHosts)
		truncated = true
	}

	hosts = make([]string, 0, limit)
	addr := prefix.Addr().Next()
	for i := uint64(0); i < limit; i++ {
		hosts = append(hosts, addr.String())
		addr = addr.Next()
	}
	return hosts, truncated, nil
}

// ParseIPv4 validates a single IPv4 address and returns its canonical form
func ParseIPv4(ip string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil || !addr.Is4() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidIP, ip)
	}
	return addr.String(), nil
}

// IsCIDR reports whether target looks like a CIDR block rather than one address
func IsCIDR(target string) bool {
	return strings.Contains(target, "/")
}
