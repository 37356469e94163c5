package domain

import (
	"net/netip"
	"strings"
)

// Sentinel names used when no real match is found
const (
	UnknownDepartmentName = "Unknown Department"
	UnknownUnitName       = "Unknown Unit"
	UnknownUser           = "Unknown User"

	// SentinelUnitKeywords are the baseline keywords stored on sentinel units
	SentinelUnitKeywords = "unknown,unclassified,unassigned"
)

// IsReservedDepartmentName reports whether name would shadow the sentinel
// department. The comparison ignores case and surrounding space.
func IsReservedDepartmentName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), UnknownDepartmentName)
}

// IsReservedUnitName reports whether name would take the slot of a
// department's sentinel unit
func IsReservedUnitName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), UnknownUnitName)
}

// Department is the top level of the placement hierarchy
type Department struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IsSentinel  bool   `json:"is_sentinel,omitempty" yaml:"is_sentinel,omitempty"`
}

// Unit is an equipment unit owned by a department
type Unit struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	DepartmentID int64  `json:"department_id" yaml:"department_id"`
	Keywords     string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	IsSentinel   bool   `json:"is_sentinel,omitempty" yaml:"is_sentinel,omitempty"`
}

// KeywordList splits the comma separated keywords into lowercase tokens,
// skipping empty entries
func (u Unit) KeywordList() []string {
	return SplitKeywords(u.Keywords)
}

// MatchesName reports whether any keyword is a case-insensitive substring of name
func (u Unit) MatchesName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range u.KeywordList() {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SplitKeywords normalizes a comma separated keyword list
func SplitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinKeywords is the inverse of SplitKeywords
func JoinKeywords(keywords []string) string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return strings.Join(out, ",")
}

// IPRange assigns ownership of an address block to a department
type IPRange struct {
	ID           int64  `json:"id" yaml:"id"`
	CIDR         string `json:"cidr" yaml:"cidr"`
	DepartmentID int64  `json:"department_id" yaml:"department_id"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Prefix parses the range. Invalid ranges return ok=false.
func (r IPRange) Prefix() (netip.Prefix, bool) {
	p, err := netip.ParsePrefix(strings.TrimSpace(r.CIDR))
	if err != nil {
		return netip.Prefix{}, false
	}
	return p.Masked(), true
}

// Contains reports whether ip falls inside the range
func (r IPRange) Contains(ip netip.Addr) bool {
	p, ok := r.Prefix()
	return ok && p.Contains(ip)
}
