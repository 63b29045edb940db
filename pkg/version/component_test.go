package version_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/cup/pkg/version"
)

var _ = ginkgo.Describe("Component", func() {
	ginkgo.DescribeTable("parsing keeps the zero padding",
		func(text string, value uint64, width int) {
			component, err := version.ParseComponent(text)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(component).To(gomega.Equal(version.Component{Value: value, Width: width}))
			gomega.Expect(component.String()).To(gomega.Equal(text))
		},
		ginkgo.Entry("unpadded", "21", uint64(21), 0),
		ginkgo.Entry("padded", "0021", uint64(21), 4),
		ginkgo.Entry("padded zero", "00", uint64(0), 2),
		ginkgo.Entry("literal zero", "0", uint64(0), 0),
	)

	ginkgo.It("rejects non-numeric text", func() {
		_, err := version.ParseComponent("O")
		gomega.Expect(err).To(gomega.MatchError(version.ErrParseComponent))
	})

	ginkgo.It("orders components with equal widths", func() {
		order, ok := version.Component{Value: 5, Width: 2}.Compare(version.Component{Value: 7, Width: 2})
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(order).To(gomega.Equal(-1))
	})

	ginkgo.It("never compares components with different widths", func() {
		two, _ := version.ParseComponent("2")
		paddedTwo, _ := version.ParseComponent("02")

		_, ok := two.Compare(paddedTwo)
		gomega.Expect(ok).To(gomega.BeFalse())

		_, ok = paddedTwo.Compare(two)
		gomega.Expect(ok).To(gomega.BeFalse())
	})
})
