package adapter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"netinventory/internal/domain"
)

// System group OIDs
const (
	oidSysDescr    = ".1.3.6.1.2.1.1.1.0"
	oidSysObjectID = ".1.3.6.1.2.1.1.2.0"
	oidSysContact  = ".1.3.6.1.2.1.1.4.0"
	oidSysName     = ".1.3.6.1.2.1.1.5.0"
	oidSysLocation = ".1.3.6.1.2.1.1.6.0"
)

var systemOIDs = []string{oidSysDescr, oidSysObjectID, oidSysContact, oidSysName, oidSysLocation}

var (
	ErrSNMPGetFailed      = errors.New("SNMP GET failed")
	ErrSNMPError          = errors.New("SNMP agent returned an error")
	ErrNoSNMPDataReturned = errors.New("no SNMP data returned")
)

// SNMPConfig holds v2c client settings
type SNMPConfig struct {
	Community string
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// DefaultSNMPConfig returns community "public" on port 161 with a 5s timeout
func DefaultSNMPConfig() SNMPConfig {
	return SNMPConfig{
		Community: "public",
		Port:      161,
		Timeout:   5 * time.Second,
	}
}

// SNMPQuerier reads the system group with one SNMPv2c GET
type SNMPQuerier struct {
	config SNMPConfig
}

// NewSNMPQuerier creates a querier, filling unset fields from DefaultSNMPConfig
func NewSNMPQuerier(config SNMPConfig) *SNMPQuerier {
	def := DefaultSNMPConfig()
	if config.Community == "" {
		config.Community = def.Community
	}
	if config.Port == 0 {
		config.Port = def.Port
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &SNMPQuerier{config: config}
}

// Query issues the GET. A host that answers with nothing but
// NoSuchObject/NoSuchInstance/EndOfMibView is reported as ErrNoSNMPDataReturned.
func (q *SNMPQuerier) Query(ctx context.Context, ip string) (domain.SystemInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, q.config.Timeout*time.Duration(q.config.Retries+1)+time.Second)
	defer cancel()

	client := &gosnmp.GoSNMP{
		Target:    ip,
		Port:      q.config.Port,
		Community: q.config.Community,
		Version:   gosnmp.Version2c,
		Timeout:   q.config.Timeout,
		Retries:   q.config.Retries,
		Context:   ctx,
	}

	if err := client.Connect(); err != nil {
		return domain.SystemInfo{}, fmt.Errorf("connect %s: %w", ip, err)
	}
	defer client.Conn.Close()

	result, err := client.Get(systemOIDs)
	if err != nil {
		return domain.SystemInfo{}, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}
	if result.Error != gosnmp.NoError {
		return domain.SystemInfo{}, fmt.Errorf("%w: %s", ErrSNMPError, result.Error)
	}

	info, found := systemInfoFromPDUs(result.Variables)
	if !found {
		return domain.SystemInfo{}, ErrNoSNMPDataReturned
	}
	return info, nil
}

// systemInfoFromPDUs maps GET variables onto SystemInfo. found is false when every
// variable was an exception value.
func systemInfoFromPDUs(variables []gosnmp.SnmpPDU) (info domain.SystemInfo, found bool) {
	for _, v := range variables {
		switch v.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
			continue
		}
		found = true

		value := CleanValue(pduString(v))
		switch normalizeOID(v.Name) {
		case oidSysDescr:
			info.Description = value
		case oidSysObjectID:
			info.ObjectID = value
		case oidSysContact:
			info.Contact = value
		case oidSysName:
			info.Name = value
		case oidSysLocation:
			info.Location = value
		}
	}
	return info, found
}

func normalizeOID(oid string) string {
	if !strings.HasPrefix(oid, ".") {
		return "." + oid
	}
	return oid
}

// pduString renders a variable as text
func pduString(v gosnmp.SnmpPDU) string {
	switch v.Type {
	case gosnmp.OctetString:
		if b, ok := v.Value.([]byte); ok {
			return string(b)
		}
	case gosnmp.ObjectIdentifier:
		if s, ok := v.Value.(string); ok {
			return s
		}
	}
	return fmt.Sprint(v.Value)
}

var typePrefix = regexp.MustCompile(`(?i)^(STRING|OID|Hex-STRING|IpAddress|Timeticks|INTEGER|Gauge32|Counter32|Counter64|BITS):\s*`)

// CleanValue strips a textual type prefix ("STRING: ", "OID: " ...), surrounding
// quotes and the leading dot of an OID. Blank input yields "".
func CleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = typePrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if len(s) > 1 && s[0] == '.' && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}
	return s
}
