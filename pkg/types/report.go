package types

import "time"

// Report is the federation document served at /api/v3/json.
type Report struct {
	Metrics     Metrics       `json:"metrics"`
	Images      []CheckResult `json:"images"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Metrics summarises a result set by status.
//
// Unknown results only count towards MonitoredImages and Unknown.
type Metrics struct {
	MonitoredImages  int `json:"monitored_images"`
	UpToDate         int `json:"up_to_date"`
	UpdatesAvailable int `json:"updates_available"`
	MajorUpdates     int `json:"major_updates"`
	MinorUpdates     int `json:"minor_updates"`
	PatchUpdates     int `json:"patch_updates"`
	OtherUpdates     int `json:"other_updates"`
	Unknown          int `json:"unknown"`
}
