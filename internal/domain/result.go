package domain

import "time"

// ItemError is a per-item failure inside a batch result
type ItemError struct {
	Key     string `json:"key" yaml:"key"`
	Message string `json:"message" yaml:"message"`
}

// ProbeResult is the verdict for one probed address
type ProbeResult struct {
	IPAddress         string `json:"ip_address" yaml:"ip_address"`
	IsAlive           bool   `json:"is_alive" yaml:"is_alive"`
	ProtocolAvailable bool   `json:"protocol_available" yaml:"protocol_available"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ScanResult aggregates a subnet scan
type ScanResult struct {
	ScanID        string        `json:"scan_id" yaml:"scan_id"`
	Target        string        `json:"target" yaml:"target"`
	TotalScanned  int           `json:"total_scanned" yaml:"total_scanned"`
	AliveCount    int           `json:"alive_count" yaml:"alive_count"`
	ProtocolCount int           `json:"protocol_count" yaml:"protocol_count"`
	Truncated     bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Results       []ProbeResult `json:"results" yaml:"results"`
	Failures      []ItemError   `json:"failures,omitempty" yaml:"failures,omitempty"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time     `json:"finished_at" yaml:"finished_at"`
}

// OutcomeStatus is the terminal state of one classification
type OutcomeStatus string

const (
	OutcomeProcessed OutcomeStatus = "processed"
	OutcomeFailed    OutcomeStatus = "failed"
)

// ClassificationOutcome is the result of classifying a single discovery
type ClassificationOutcome struct {
	IPAddress    string        `json:"ip_address" yaml:"ip_address"`
	Status       OutcomeStatus `json:"status" yaml:"status"`
	Scenario     Scenario      `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	DeviceID     int64         `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	Created      bool          `json:"created,omitempty" yaml:"created,omitempty"`
	DepartmentID int64         `json:"department_id,omitempty" yaml:"department_id,omitempty"`
	UnitID       int64         `json:"unit_id,omitempty" yaml:"unit_id,omitempty"`
	UserName     string        `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunStats summarizes one classifier run
type RunStats struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Strategy   string           `json:"strategy" yaml:"strategy"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time        `json:"finished_at" yaml:"finished_at"`
	Processed  int              `json:"processed" yaml:"processed"`
	Created    int              `json:"created" yaml:"created"`
	Updated    int              `json:"updated" yaml:"updated"`
	Failed     int              `json:"failed" yaml:"failed"`
	Scenarios  map[Scenario]int `json:"scenarios" yaml:"scenarios"`
	Errors     []ItemError      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewRunStats creates empty stats with an initialized histogram
func NewRunStats(runID, strategy string, startedAt time.Time) *RunStats {
	return &RunStats{
		RunID:     runID,
		Strategy:  strategy,
		StartedAt: startedAt,
		Scenarios: make(map[Scenario]int),
	}
}

// Record folds one outcome into the stats, keeping at most maxErrors messages
func (s *RunStats) Record(o ClassificationOutcome, maxErrors int) {
	if o.Status == OutcomeFailed {
		s.Failed++
		if len(s.Errors) < maxErrors {
			s.Errors = append(s.Errors, ItemError{Key: o.IPAddress, Message: o.Error})
		}
		return
	}
	s.Processed++
	if o.Created {
		s.Created++
	} else {
		s.Updated++
	}
	s.Scenarios[o.Scenario]++
}

// LivenessResult is the outcome of re-checking one device
type LivenessResult struct {
	DeviceID  int64        `json:"device_id" yaml:"device_id"`
	IPAddress string       `json:"ip_address" yaml:"ip_address"`
	IsAlive   bool         `json:"is_alive" yaml:"is_alive"`
	Changed   bool         `json:"changed" yaml:"changed"`
	Status    DeviceStatus `json:"status" yaml:"status"`
	CheckedAt time.Time    `json:"checked_at" yaml:"checked_at"`
}

// RecheckSummary aggregates a batch liveness re-check
type RecheckSummary struct {
	Checked  int         `json:"checked" yaml:"checked"`
	Online   int         `json:"online" yaml:"online"`
	Offline  int         `json:"offline" yaml:"offline"`
	Changed  int         `json:"changed" yaml:"changed"`
	Failures []ItemError `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// StagingStats are aggregate counts over the staging store
type StagingStats struct {
	Total             int64         `json:"total" yaml:"total"`
	Pending           int64         `json:"pending" yaml:"pending"`
	Processed         int64         `json:"processed" yaml:"processed"`
	Failed            int64         `json:"failed" yaml:"failed"`
	Alive             int64         `json:"alive" yaml:"alive"`
	Dead              int64         `json:"dead" yaml:"dead"`
	ProtocolAvailable int64         `json:"protocol_available" yaml:"protocol_available"`
	Recent            int64         `json:"recent" yaml:"recent"`
	RecentWindow      time.Duration `json:"recent_window" yaml:"recent_window"`
	Devices           int64         `json:"devices" yaml:"devices"`
	HistoryEntries    int64         `json:"history_entries" yaml:"history_entries"`
}

// PruneResult reports rows removed by a retention sweep
type PruneResult struct {
	DiscoveriesRemoved int64     `json:"discoveries_removed" yaml:"discoveries_removed"`
	HistoryRemoved     int64     `json:"history_removed" yaml:"history_removed"`
	DiscoveryCutoff    time.Time `json:"discovery_cutoff" yaml:"discovery_cutoff"`
	HistoryCutoff      time.Time `json:"history_cutoff" yaml:"history_cutoff"`
}

// Total returns the number of rows removed
func (p PruneResult) Total() int64 {
	return p.DiscoveriesRemoved + p.HistoryRemoved
}
