package domain

import "errors"

var (
	// ErrInvalidCIDR is a configuration error: the scan never starts
	ErrInvalidCIDR = errors.New("invalid CIDR")
	// ErrInvalidIP reports an unparsable IPv4 address
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrNotFound is returned when a looked-up row does not exist
	ErrNotFound = errors.New("not found")
	// ErrSentinelMissing means the Unknown Department row is gone and no fallback exists
	ErrSentinelMissing = errors.New("sentinel department missing")
	// ErrClassifierBusy is returned when a classification run is already in progress
	ErrClassifierBusy = errors.New("classification run already in progress")
	// ErrReservedName rejects a catalog entry named after a sentinel
	ErrReservedName = errors.New("name is reserved for the sentinel")
	// ErrInvalidStatus reports an unknown discovery status
	ErrInvalidStatus = errors.New("invalid discovery status")
)
