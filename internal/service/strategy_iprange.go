package service

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// IPRangeStrategy places devices by the most specific owning IP range and a
// device type inferred from sysDescr/sysName
type IPRangeStrategy struct {
	repo        *sqlite.Repository
	deviceTypes []string
}

// NewIPRangeStrategy creates the strategy with a device-type vocabulary, tried in order
func NewIPRangeStrategy(repo *sqlite.Repository, deviceTypes []string) *IPRangeStrategy {
	if len(deviceTypes) == 0 {
		deviceTypes = config.DefaultDeviceTypes()
	}
	return &IPRangeStrategy{repo: repo, deviceTypes: deviceTypes}
}

// Name returns the strategy identifier
func (s *IPRangeStrategy) Name() string {
	return config.StrategyIPRange
}

// Department returns the owner of the longest configured prefix containing the address
func (s *IPRangeStrategy) Department(ctx context.Context, rec *domain.DiscoveryRecord) (*domain.Department, error) {
	addr, err := netip.ParseAddr(rec.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIP, rec.IPAddress)
	}

	ranges, err := s.repo.ListIPRanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ip ranges: %w", err)
	}

	best := -1
	var owner int64
	for _, r := range ranges {
		p, ok := r.Prefix()
		if !ok || !p.Contains(addr) {
			continue
		}
		if p.Bits() > best {
			best = p.Bits()
			owner = r.DepartmentID
		}
	}
	if best < 0 {
		return nil, nil
	}

	d, err := s.repo.GetDepartment(ctx, owner)
	if err != nil {
		return nil, err
	}
	if d == nil || d.IsSentinel {
		return nil, nil
	}
	return d, nil
}

// DeviceType returns the first vocabulary term found in sysDescr or sysName, or ""
func (s *IPRangeStrategy) DeviceType(info domain.SystemInfo) string {
	text := strings.ToLower(info.Description + " " + info.Name)
	for _, t := range s.deviceTypes {
		if t != "" && strings.Contains(text, strings.ToLower(t)) {
			return t
		}
	}
	return ""
}

// Unit returns the first unit of dept whose name or keywords mention the device type
func (s *IPRangeStrategy) Unit(ctx context.Context, rec *domain.DiscoveryRecord, dept *domain.Department) (*domain.Unit, error) {
	deviceType := s.DeviceType(rec.System)
	if deviceType == "" {
		return nil, nil
	}

	units, err := s.repo.ListUnits(ctx, dept.ID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	for i := range units {
		u := &units[i]
		if u.IsSentinel {
			continue
		}
		if containsFold(u.Name, deviceType) {
			return u, nil
		}
		for _, kw := range u.KeywordList() {
			if containsFold(kw, deviceType) {
				return u, nil
			}
		}
	}
	return nil, nil
}
