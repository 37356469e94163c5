package adapter

import (
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
)

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`STRING: "IT Department"`, "IT Department"},
		{`STRING: sw-42`, "sw-42"},
		{`OID: .1.3.6.1.4.1.9.1.1208`, "1.3.6.1.4.1.9.1.1208"},
		{`.1.3.6.1.4.1.9`, "1.3.6.1.4.1.9"},
		{`Hex-STRING: 00 1A 2B`, "00 1A 2B"},
		{`IpAddress: 10.0.0.1`, "10.0.0.1"},
		{`  "quoted"  `, "quoted"},
		{`""`, ""},
		{`   `, ""},
		{`.hidden`, ".hidden"},
		{"Contact: J. Doe", "Contact: J. Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanValue(tt.in))
		})
	}
}

func TestSystemInfoFromPDUs(t *testing.T) {
	t.Run("maps every system OID", func(t *testing.T) {
		info, found := systemInfoFromPDUs([]gosnmp.SnmpPDU{
			{Name: oidSysDescr, Type: gosnmp.OctetString, Value: []byte("Cisco IOS Software, C2960 switch")},
			{Name: oidSysObjectID, Type: gosnmp.ObjectIdentifier, Value: ".1.3.6.1.4.1.9.1.716"},
			{Name: oidSysContact, Type: gosnmp.OctetString, Value: []byte("Admin: J. Doe")},
			{Name: "1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: []byte("sw-42")},
			{Name: oidSysLocation, Type: gosnmp.OctetString, Value: []byte(`"IT Department"`)},
		})

		assert.True(t, found)
		assert.Equal(t, "Cisco IOS Software, C2960 switch", info.Description)
		assert.Equal(t, "1.3.6.1.4.1.9.1.716", info.ObjectID)
		assert.Equal(t, "Admin: J. Doe", info.Contact)
		assert.Equal(t, "sw-42", info.Name)
		assert.Equal(t, "IT Department", info.Location)
	})

	t.Run("exception values are skipped", func(t *testing.T) {
		info, found := systemInfoFromPDUs([]gosnmp.SnmpPDU{
			{Name: oidSysDescr, Type: gosnmp.NoSuchObject},
			{Name: oidSysName, Type: gosnmp.NoSuchInstance},
			{Name: oidSysLocation, Type: gosnmp.EndOfMibView},
		})
		assert.False(t, found)
		assert.True(t, info.IsEmpty())
	})

	t.Run("partial answers", func(t *testing.T) {
		info, found := systemInfoFromPDUs([]gosnmp.SnmpPDU{
			{Name: oidSysName, Type: gosnmp.OctetString, Value: []byte("printer-3")},
			{Name: oidSysContact, Type: gosnmp.NoSuchInstance},
		})
		assert.True(t, found)
		assert.Equal(t, "printer-3", info.Name)
		assert.Empty(t, info.Contact)
	})
}

func TestNewSNMPQuerierDefaults(t *testing.T) {
	q := NewSNMPQuerier(SNMPConfig{})
	assert.Equal(t, "public", q.config.Community)
	assert.Equal(t, uint16(161), q.config.Port)
	assert.Equal(t, 5*time.Second, q.config.Timeout)

	q = NewSNMPQuerier(SNMPConfig{Community: "private", Port: 1161, Timeout: time.Second, Retries: 2})
	assert.Equal(t, "private", q.config.Community)
	assert.Equal(t, uint16(1161), q.config.Port)
	assert.Equal(t, 2, q.config.Retries)
}
