// Package adapter implements the network probes behind discovery.
//
// # Probes
//
// Pinger decides reachability. ExecPinger runs one echo through the OS ping
// utility; NmapPinger runs an nmap host-discovery scan and is selected with
// probe.ping_method: nmap.
//
// Querier reads the five SNMP system-group values (sysDescr, sysObjectID,
// sysContact, sysName, sysLocation) from a reachable host. SNMPQuerier issues a
// single v2c GET.
//
// # Prober
//
// Prober expands a CIDR block, splits it into batches and probes each batch on a
// bounded worker pool, pausing between batches. Every address gets its own
// deadline; a timeout is recorded as unreachable or protocol unavailable and
// never fails the scan. Results are upserted into the discovery staging store
// and a scan-completed event is published.
package adapter
