package adapter

import (
	"context"

	"netinventory/internal/domain"
)

// Pinger reports whether an address answers an echo request
type Pinger interface {
	Ping(ctx context.Context, ip string) bool
}

// Querier reads the SNMP system group of a host
type Querier interface {
	Query(ctx context.Context, ip string) (domain.SystemInfo, error)
}

// DiscoveryStore is the part of the staging store the prober writes to
type DiscoveryStore interface {
	UpsertDiscovery(ctx context.Context, rec *domain.DiscoveryRecord, preserveProcessed bool) error
}

// EventPublisher allows the prober to publish scan events
type EventPublisher interface {
	PublishDiscoveryEvent(eventType string, payload interface{})
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context, ip string) bool

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context, ip string) bool {
	return f(ctx, ip)
}
