package notifications

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var _ json.Marshaler = &Data{}

// Errors for JSON marshaling.
var (
	// errMarshalFailed indicates a failure to marshal notification data to JSON.
	errMarshalFailed = errors.New("failed to marshal notification data")
)

// jsonMap is a type alias for a JSON-compatible map.
type jsonMap = map[string]any

// MarshalJSON implements json.Marshaler for Data.
//
// Returns:
//   - []byte: JSON-encoded data.
//   - error: Non-nil if marshaling fails, nil on success.
func (d Data) MarshalJSON() ([]byte, error) {
	data := jsonMap{
		"title":   d.Title,
		"host":    d.Host,
		"metrics": d.Report.Metrics,
		"updates": d.Updates,
	}

	if !d.Report.LastUpdated.IsZero() {
		data["last_updated"] = d.Report.LastUpdated
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		logrus.WithError(err).WithField("title", d.Title).Error("Failed to marshal notification data to JSON")

		return nil, fmt.Errorf("%w: %w", errMarshalFailed, err)
	}

	return bytes, nil
}
