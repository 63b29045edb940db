package sorter_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/cup/pkg/sorter"
	"github.com/nicholas-fedor/cup/pkg/types"
)

func result(reference string, status types.Status) types.CheckResult {
	return types.CheckResult{Reference: reference, Status: status}
}

func references(results []types.CheckResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Reference)
	}

	return out
}

var _ = ginkgo.Describe("SortByStatus", func() {
	ginkgo.It("should order by status precedence, then reference", func() {
		results := []types.CheckResult{
			result("z-unknown", types.StatusUnknown),
			result("b-current", types.StatusUpToDate),
			result("a-current", types.StatusUpToDate),
			result("digest", types.StatusAvailable),
			result("patch", types.StatusPatch),
			result("minor", types.StatusMinor),
			result("major", types.StatusMajor),
		}

		sorter.SortByStatus(results)

		gomega.Expect(references(results)).To(gomega.Equal([]string{
			"major", "minor", "patch", "digest", "a-current", "b-current", "z-unknown",
		}))
	})

	ginkgo.It("should break reference ties by server", func() {
		results := []types.CheckResult{
			{Reference: "nginx:1", Status: types.StatusUpToDate, Server: "peer"},
			{Reference: "nginx:1", Status: types.StatusUpToDate},
		}

		sorter.SortByStatus(results)

		gomega.Expect(results[0].Server).To(gomega.BeEmpty())
		gomega.Expect(results[1].Server).To(gomega.Equal("peer"))
	})

	ginkgo.It("should handle empty input", func() {
		var results []types.CheckResult

		sorter.SortByStatus(results)
		gomega.Expect(results).To(gomega.BeEmpty())
	})

	ginkgo.DescribeTable("should order equal statuses alphabetically by reference",
		func(first, second types.CheckResult, expected []string) {
			results := []types.CheckResult{first, second}

			sorter.SortByStatus(results)
			gomega.Expect(references(results)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("two minor updates",
			result("rust:1.80.1-alpine", types.StatusMinor),
			result("mysql:8.0", types.StatusMinor),
			[]string{"mysql:8.0", "rust:1.80.1-alpine"},
		),
		ginkgo.Entry("already ordered",
			result("mysql:8.0", types.StatusMinor),
			result("rust:1.80.1-alpine", types.StatusMinor),
			[]string{"mysql:8.0", "rust:1.80.1-alpine"},
		),
		ginkgo.Entry("status before reference",
			result("mysql:8.0", types.StatusPatch),
			result("rust:1.80.1-alpine", types.StatusMinor),
			[]string{"rust:1.80.1-alpine", "mysql:8.0"},
		),
	)
})
