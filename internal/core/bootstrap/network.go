package bootstrap

import (
	"net"
	"net/netip"
	"strings"
)

// Subnet is an IPv4 network attached to a local interface
type Subnet struct {
	Interface string `json:"interface" yaml:"interface"`
	Address   string `json:"address" yaml:"address"`
	CIDR      string `json:"cidr" yaml:"cidr"`
	Private   bool   `json:"private" yaml:"private"`
}

// virtualPrefixes name interfaces created by container runtimes
var virtualPrefixes = []string{"veth", "docker", "br-", "cni", "flannel"}

func isVirtual(name string) bool {
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// DetectSubnets lists the IPv4 subnets of every up, non-loopback, non-virtual interface
func DetectSubnets() ([]Subnet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var subnets []Subnet
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 || isVirtual(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		subnets = append(subnets, subnetsFrom(iface.Name, addrs)...)
	}
	return subnets, nil
}

// subnetsFrom converts interface addresses to subnets, ignoring IPv6
func subnetsFrom(iface string, addrs []net.Addr) []Subnet {
	var out []Subnet
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipnet.IP.To4())
		if !ok {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		prefix := netip.PrefixFrom(addr, ones).Masked()

		out = append(out, Subnet{
			Interface: iface,
			Address:   addr.String(),
			CIDR:      prefix.String(),
			Private:   addr.IsPrivate(),
		})
	}
	return out
}

// SuggestTargets returns the distinct private subnets a sweep can expand
// (/8 to /30)
func SuggestTargets(subnets []Subnet) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range subnets {
		if !s.Private || seen[s.CIDR] {
			continue
		}
		p, err := netip.ParsePrefix(s.CIDR)
		if err != nil || p.Bits() < 8 || p.Bits() > 30 {
			continue
		}
		seen[s.CIDR] = true
		out = append(out, s.CIDR)
	}
	return out
}
