package check_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/cup/pkg/check"
	"github.com/nicholas-fedor/cup/pkg/filters"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

const (
	localDigest  = "sha256:d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
	remoteDigest = "sha256:1111111111111111111111111111111111111111111111111111111111111111"
)

var _ = ginkgo.Describe("NewImage", func() {
	ginkgo.It("should prepare a versioned image", func() {
		img, err := check.NewImage(types.LocalImage{
			Reference: "nginx:1.25.2",
			Digests:   []string{"nginx@" + localDigest},
			UsedBy:    []string{"web"},
		}, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(img.Mode()).To(gomega.Equal(types.ModeVersion))
		gomega.Expect(img.Parts.Repository).To(gomega.Equal("library/nginx"))
		gomega.Expect(img.Tag.Template).To(gomega.Equal("{}.{}.{}"))
		gomega.Expect(img.Digests).To(gomega.Equal([]string{localDigest}))
		gomega.Expect(img.UsedBy).To(gomega.Equal([]string{"web"}))
	})

	ginkgo.It("should fall back to digests for unversioned tags", func() {
		img, err := check.NewImage(types.LocalImage{
			Reference: "redis:latest",
			Digests:   []string{"redis@" + localDigest},
		}, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(img.Mode()).To(gomega.Equal(types.ModeDigest))
		gomega.Expect(img.Tag).To(gomega.BeNil())
	})

	ginkgo.It("should fail fast without version and digest", func() {
		_, err := check.NewImage(types.LocalImage{Reference: "redis:latest"}, nil)
		gomega.Expect(err).To(gomega.MatchError(check.ErrNoVersionOrDigest))
	})

	ginkgo.It("should skip invalid local digests", func() {
		_, err := check.NewImage(types.LocalImage{
			Reference: "redis:latest",
			Digests:   []string{"redis@sha256:broken"},
		}, nil)
		gomega.Expect(err).To(gomega.MatchError(check.ErrNoVersionOrDigest))
	})

	ginkgo.It("should reject invalid references", func() {
		_, err := check.NewImage(types.LocalImage{Reference: "Not A Reference"}, nil)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should use the scheme of the first matching rule", func() {
		rules, err := filters.NewVersionRules([]types.VersionRule{
			{Match: filters.MatchExact, Reference: "postgres:16.2", Type: "digest"},
			{Reference: "ghcr.io/org/nightly", Type: "date"},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		img, err := check.NewImage(types.LocalImage{
			Reference: "postgres:16.2",
			Digests:   []string{"postgres@" + localDigest},
		}, rules)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(img.Strategy.Kind()).To(gomega.Equal(version.KindDigest))
		gomega.Expect(img.Mode()).To(gomega.Equal(types.ModeDigest))

		img, err = check.NewImage(types.LocalImage{Reference: "ghcr.io/org/nightly:2024.03.15"}, rules)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(img.Strategy.Kind()).To(gomega.Equal(version.KindDate))
		gomega.Expect(img.Mode()).To(gomega.Equal(types.ModeVersion))
	})

	ginkgo.It("should report invalid scheme configuration", func() {
		rules, err := filters.NewVersionRules([]types.VersionRule{{Reference: "app", Type: "calendar"}})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = check.NewImage(types.LocalImage{Reference: "app:1.0"}, rules)
		gomega.Expect(err).To(gomega.MatchError(version.ErrUnknownScheme))
	})
})
