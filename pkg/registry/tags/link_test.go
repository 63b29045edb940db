package tags

import (
	"net/url"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("nextLink", func() {
	base, _ := url.Parse("https://registry.example.com/v2/app/tags/list?n=100")

	ginkgo.DescribeTable("should resolve the next page",
		func(values []string, expected string) {
			link, ok := nextLink(values, base)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(link.String()).To(gomega.Equal(expected))
		},
		ginkgo.Entry("relative path",
			[]string{`</v2/app/tags/list?last=b&n=100>; rel="next"`},
			"https://registry.example.com/v2/app/tags/list?last=b&n=100"),
		ginkgo.Entry("absolute url",
			[]string{`<https://cdn.example.com/page2>; rel="next"`},
			"https://cdn.example.com/page2"),
		ginkgo.Entry("unquoted rel",
			[]string{`</page2>; rel=next`},
			"https://registry.example.com/page2"),
		ginkgo.Entry("several relations and entries",
			[]string{`</first>; rel="first", </page2>; rel="prefetch next"`},
			"https://registry.example.com/page2"),
		ginkgo.Entry("second header value",
			[]string{`</first>; rel="first"`, `</page2>; rel="next"`},
			"https://registry.example.com/page2"),
		ginkgo.Entry("comma inside the uri",
			[]string{`</page?tags=a,b>; rel="next"`},
			"https://registry.example.com/page?tags=a,b"),
	)

	ginkgo.DescribeTable("should report no next page",
		func(values []string) {
			_, ok := nextLink(values, base)
			gomega.Expect(ok).To(gomega.BeFalse())
		},
		ginkgo.Entry("no header", nil),
		ginkgo.Entry("other relation", []string{`</prev>; rel="prev"`}),
		ginkgo.Entry("missing brackets", []string{`/page2; rel="next"`}),
	)
})
