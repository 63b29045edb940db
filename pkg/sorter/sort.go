package sorter

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// ByStatus implements sort.Interface ordering results by status, then reference.
type ByStatus []types.CheckResult

// Len returns the number of results.
func (r ByStatus) Len() int { return len(r) }

// Swap exchanges two results by index.
func (r ByStatus) Swap(i, j int) { r[i], r[j] = r[j], r[i] }

// Less orders by status precedence and breaks ties by reference.
//
// Parameters:
//   - i, j: Indices to compare.
//
// Returns:
//   - bool: True if result i sorts before result j.
func (r ByStatus) Less(i, j int) bool {
	if r[i].Status != r[j].Status {
		return r[i].Status < r[j].Status
	}

	if r[i].Reference != r[j].Reference {
		return r[i].Reference < r[j].Reference
	}

	return r[i].Server < r[j].Server
}

// SortByStatus sorts results in place: major, minor and patch updates first, then digest updates,
// up-to-date images and finally unknown ones.
//
// Parameters:
//   - results: Results to sort.
func SortByStatus(results []types.CheckResult) {
	sort.Stable(ByStatus(results))

	logrus.WithField("result_count", len(results)).Trace("Sorted results by status")
}
