package notifications

import "github.com/nicholas-fedor/cup/pkg/types"

// StaticData is the part of the notification template data model set upon initialization.
type StaticData struct {
	Title string
	Host  string
}

// Data is the notification template data model.
type Data struct {
	StaticData
	Report types.Report
	// Updates holds the report entries with an available update, in report order.
	Updates []types.CheckResult
}

// NewData builds the template data for a report.
func NewData(static StaticData, report types.Report) Data {
	var updates []types.CheckResult

	for _, image := range report.Images {
		if has := image.Result.HasUpdate; has != nil && *has {
			updates = append(updates, image)
		}
	}

	return Data{StaticData: static, Report: report, Updates: updates}
}
