package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"netinventory/internal/config"
	"netinventory/internal/domain"
	"netinventory/internal/repository/sqlite"
)

// KeywordStrategy places devices by matching the SNMP location against
// department names and location rules, and the SNMP name against unit keywords
type KeywordStrategy struct {
	repo  *sqlite.Repository
	mu    sync.RWMutex
	rules []config.DepartmentRule
}

// NewKeywordStrategy creates a keyword strategy with ordered location rules
func NewKeywordStrategy(repo *sqlite.Repository, rules []config.DepartmentRule) *KeywordStrategy {
	s := &KeywordStrategy{repo: repo}
	s.SetRules(rules)
	return s
}

// Name returns the strategy identifier
func (s *KeywordStrategy) Name() string {
	return config.StrategyKeyword
}

// SetRules replaces the location rules
func (s *KeywordStrategy) SetRules(rules []config.DepartmentRule) {
	copied := make([]config.DepartmentRule, len(rules))
	copy(copied, rules)

	s.mu.Lock()
	s.rules = copied
	s.mu.Unlock()
}

// Rules returns the current location rules
func (s *KeywordStrategy) Rules() []config.DepartmentRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// Department tries, in order: a department whose name or description contains
// the location, then the first location rule with a whole-word keyword hit whose
// department exists.
func (s *KeywordStrategy) Department(ctx context.Context, rec *domain.DiscoveryRecord) (*domain.Department, error) {
	location := strings.TrimSpace(rec.System.Location)
	if location == "" {
		return nil, nil
	}

	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	for i := range departments {
		d := &departments[i]
		if d.IsSentinel {
			continue
		}
		if containsFold(d.Name, location) || containsFold(d.Description, location) {
			return d, nil
		}
	}

	for _, rule := range s.Rules() {
		if !ruleMatches(rule, location) {
			continue
		}
		d, err := s.repo.FindDepartmentByName(ctx, rule.Department)
		if err != nil {
			return nil, fmt.Errorf("find department %q: %w", rule.Department, err)
		}
		if d != nil && !d.IsSentinel {
			return d, nil
		}
	}

	return nil, nil
}

func ruleMatches(rule config.DepartmentRule, location string) bool {
	for _, kw := range rule.Keywords {
		if containsWords(location, kw) {
			return true
		}
	}
	return false
}

// Unit returns the first unit with a keyword found in the SNMP name. Units of the
// resolved department are searched, or every unit when the department is the
// sentinel.
func (s *KeywordStrategy) Unit(ctx context.Context, rec *domain.DiscoveryRecord, dept *domain.Department) (*domain.Unit, error) {
	name := strings.TrimSpace(rec.System.Name)
	if name == "" {
		return nil, nil
	}

	var scope int64
	if !dept.IsSentinel {
		scope = dept.ID
	}
	units, err := s.repo.ListUnits(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	for i := range units {
		u := &units[i]
		if u.IsSentinel {
			continue
		}
		if u.MatchesName(name) {
			return u, nil
		}
	}
	return nil, nil
}
