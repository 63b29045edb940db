package types

import "time"

// Mode names the comparison used to decide an image's status.
type Mode string

const (
	// ModeVersion compares parsed version tags.
	ModeVersion Mode = "version"
	// ModeDigest compares local and remote manifest digests.
	ModeDigest Mode = "digest"
)

// CheckResult is the outcome of checking a single image.
//
// The exported JSON form is the image entry of the federation report; Status and Mode are
// rebuilt from it by StatusFromResult when the entry comes from a peer instance.
type CheckResult struct {
	Reference string        `json:"reference"`
	Parts     Parts         `json:"parts"`
	Result    UpdateResult  `json:"result"`
	Time      int64         `json:"time"` // Milliseconds spent checking the image.
	Server    string        `json:"server,omitempty"`
	UsedBy    []string      `json:"used_by,omitempty"`
	Status    Status        `json:"-"`
	Mode      Mode          `json:"-"`
	Elapsed   time.Duration `json:"-"`
}

// UpdateResult carries the tri-state update flag and its details.
type UpdateResult struct {
	HasUpdate *bool       `json:"has_update"`
	Info      *UpdateInfo `json:"info"`
	Error     string      `json:"error,omitempty"`
}

// UpdateInfo describes an available update.
//
// Type is "version" or "digest"; only the fields belonging to that type are populated.
type UpdateInfo struct {
	Type string `json:"type"`

	VersionUpdateType string `json:"version_update_type,omitempty"`
	NewTag            string `json:"new_tag,omitempty"`
	CurrentVersion    string `json:"current_version,omitempty"`
	NewVersion        string `json:"new_version,omitempty"`

	LocalDigests []string `json:"local_digests,omitempty"`
	RemoteDigest string   `json:"remote_digest,omitempty"`
}

// Unknown builds a result with StatusUnknown and the given reason.
func Unknown(reference string, parts Parts, reason string) CheckResult {
	return CheckResult{
		Reference: reference,
		Parts:     parts,
		Status:    StatusUnknown,
		Result: UpdateResult{
			HasUpdate: nil,
			Error:     reason,
		},
	}
}

// Finalize fills the serialised fields (has_update, time) from Status and Elapsed.
func (r *CheckResult) Finalize() {
	r.Result.HasUpdate = r.Status.HasUpdate()
	r.Time = r.Elapsed.Milliseconds()

	if r.Status == StatusUnknown || r.Status == StatusUpToDate {
		r.Result.Info = nil
	}
}

// StatusFromResult reconstructs the status of a report entry from its serialised result.
//
// Parameters:
//   - result: The update result as decoded from a report.
//
// Returns:
//   - Status: The matching status, StatusUnknown if the entry is inconsistent.
//   - Mode: The comparison mode recorded in the entry's info, empty if none.
func StatusFromResult(result UpdateResult) (Status, Mode) {
	if result.HasUpdate == nil {
		return StatusUnknown, ""
	}

	if !*result.HasUpdate {
		if result.Info != nil {
			return StatusUpToDate, Mode(result.Info.Type)
		}

		return StatusUpToDate, ""
	}

	if result.Info == nil {
		return StatusUnknown, ""
	}

	switch Mode(result.Info.Type) {
	case ModeDigest:
		return StatusAvailable, ModeDigest
	case ModeVersion:
		switch result.Info.VersionUpdateType {
		case "major":
			return StatusMajor, ModeVersion
		case "minor":
			return StatusMinor, ModeVersion
		case "patch":
			return StatusPatch, ModeVersion
		}
	}

	return StatusUnknown, ""
}
