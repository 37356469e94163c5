package service

import (
	"regexp"
	"strings"

	"netinventory/internal/domain"
)

var (
	contactPrefix   = regexp.MustCompile(`(?i)^(contact|administrator|admin|owner|responsable|tech|support|user)\s*:\s*`)
	contactTrailing = regexp.MustCompile(`\s*(<[^<>]*>|\([^()]*\)|\[[^\[\]]*\])\s*$`)
)

// CleanContact extracts a user name from an SNMP sysContact value: a leading role
// prefix ("Admin:", "Owner:" ...) and one trailing bracketed fragment such as an
// e-mail address are removed. Blank results become domain.UnknownUser.
func CleanContact(contact string) string {
	s := strings.TrimSpace(contact)
	s = contactPrefix.ReplaceAllString(s, "")
	s = contactTrailing.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.UnknownUser
	}
	return s
}
