package check_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/cup/pkg/check"
	"github.com/nicholas-fedor/cup/pkg/check/mocks"
	"github.com/nicholas-fedor/cup/pkg/registry"
	"github.com/nicholas-fedor/cup/pkg/registry/digest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

func mustImage(local types.LocalImage) *check.Image {
	img, err := check.NewImage(local, nil)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	return img
}

func mustTag(text string) version.Tag {
	tag, err := version.NewStandard().Parse(text)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	return tag
}

var _ = ginkgo.Describe("ParseIgnoreLevel", func() {
	ginkgo.DescribeTable("should map configuration values",
		func(value string, expected types.Status) {
			level, err := check.ParseIgnoreLevel(value)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(level).To(gomega.Equal(expected))
		},
		ginkgo.Entry("empty", "", types.StatusAvailable),
		ginkgo.Entry("none", "none", types.StatusAvailable),
		ginkgo.Entry("major", "major", types.StatusMajor),
		ginkgo.Entry("minor", "Minor", types.StatusMinor),
		ginkgo.Entry("patch", "patch", types.StatusPatch),
	)

	ginkgo.It("should reject unknown values", func() {
		_, err := check.ParseIgnoreLevel("all")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("Checker", func() {
	var (
		reg *mocks.Registry
		ctx context.Context
	)

	ginkgo.BeforeEach(func() {
		reg = mocks.NewRegistry(ginkgo.GinkgoT())
		ctx = context.Background()
	})

	ginkgo.Describe("version comparison", func() {
		ginkgo.DescribeTable("should classify the newest remote tag",
			func(remote string, expected types.Status) {
				img := mustImage(types.LocalImage{Reference: "nginx:1.25.2"})
				reg.On("LatestTag", mock.Anything, img.Parts, "token", mock.Anything, *img.Tag).
					Return(mustTag(remote), true, nil)

				result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "token")
				gomega.Expect(result.Status).To(gomega.Equal(expected))
				gomega.Expect(result.Mode).To(gomega.Equal(types.ModeVersion))
				gomega.Expect(*result.Result.HasUpdate).To(gomega.BeTrue())
				gomega.Expect(result.Result.Info).To(gomega.Equal(&types.UpdateInfo{
					Type:              "version",
					VersionUpdateType: expected.UpdateType(),
					NewTag:            remote,
					CurrentVersion:    "1.25.2",
					NewVersion:        remote,
				}))
			},
			ginkgo.Entry("major", "2.0.0", types.StatusMajor),
			ginkgo.Entry("minor", "1.26.0", types.StatusMinor),
			ginkgo.Entry("patch", "1.25.3", types.StatusPatch),
		)

		ginkgo.It("should report an equal tag without digests as up to date", func() {
			img := mustImage(types.LocalImage{Reference: "nginx:1.25.2"})
			reg.On("LatestTag", mock.Anything, mock.Anything, "", mock.Anything, mock.Anything).
				Return(mustTag("1.25.2"), true, nil)

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusUpToDate))
			gomega.Expect(*result.Result.HasUpdate).To(gomega.BeFalse())
			gomega.Expect(result.Result.Info).To(gomega.BeNil())
		})

		ginkgo.It("should fall back to digests when the tag is unchanged", func() {
			img := mustImage(types.LocalImage{
				Reference: "nginx:1.25",
				Digests:   []string{"nginx@" + localDigest},
			})
			reg.On("LatestTag", mock.Anything, mock.Anything, "", mock.Anything, mock.Anything).
				Return(mustTag("1.25"), true, nil)
			reg.On("Digest", mock.Anything, img.Parts, "").Return(remoteDigest, nil)

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusAvailable))
			gomega.Expect(result.Mode).To(gomega.Equal(types.ModeDigest))
			gomega.Expect(result.Result.Info.RemoteDigest).To(gomega.Equal(remoteDigest))
			gomega.Expect(result.Result.Info.LocalDigests).To(gomega.Equal([]string{localDigest}))
		})

		ginkgo.It("should report unknown when no tag is comparable", func() {
			img := mustImage(types.LocalImage{Reference: "nginx:1.25.2"})
			reg.On("LatestTag", mock.Anything, mock.Anything, "", mock.Anything, mock.Anything).
				Return(version.Tag{}, false, nil)

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusUnknown))
			gomega.Expect(result.Result.HasUpdate).To(gomega.BeNil())
			gomega.Expect(result.Result.Error).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should report registry failures as unknown", func() {
			img := mustImage(types.LocalImage{Reference: "nginx:1.25.2", UsedBy: []string{"web"}})
			reg.On("LatestTag", mock.Anything, mock.Anything, "", mock.Anything, mock.Anything).
				Return(version.Tag{}, false, transport.ErrNotFound)

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusUnknown))
			gomega.Expect(result.Result.Error).To(gomega.Equal(transport.ErrNotFound.Error()))
			gomega.Expect(result.UsedBy).To(gomega.Equal([]string{"web"}))
		})

		ginkgo.DescribeTable("should suppress ignored update types",
			func(ignore string, remote string, expected types.Status) {
				level, err := check.ParseIgnoreLevel(ignore)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				img := mustImage(types.LocalImage{Reference: "nginx:1.25.2"})
				reg.On("LatestTag", mock.Anything, mock.Anything, "", mock.Anything, mock.Anything).
					Return(mustTag(remote), true, nil)

				result := check.NewChecker(reg, level).Check(ctx, img, "")
				gomega.Expect(result.Status).To(gomega.Equal(expected))
			},
			ginkgo.Entry("major ignores patch", "major", "1.25.3", types.StatusUpToDate),
			ginkgo.Entry("major ignores major", "major", "2.0.0", types.StatusUpToDate),
			ginkgo.Entry("minor ignores minor", "minor", "1.26.0", types.StatusUpToDate),
			ginkgo.Entry("minor keeps major", "minor", "2.0.0", types.StatusMajor),
			ginkgo.Entry("patch keeps minor", "patch", "1.26.0", types.StatusMinor),
			ginkgo.Entry("patch ignores patch", "patch", "1.25.3", types.StatusUpToDate),
		)
	})

	ginkgo.Describe("digest comparison", func() {
		var img *check.Image

		ginkgo.BeforeEach(func() {
			img = mustImage(types.LocalImage{
				Reference: "redis:latest",
				Digests:   []string{"redis@" + remoteDigest, "redis@" + localDigest},
			})
		})

		ginkgo.It("should be up to date when the remote digest is local", func() {
			reg.On("Digest", mock.Anything, img.Parts, "").Return(localDigest, nil)

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusUpToDate))
			gomega.Expect(result.Mode).To(gomega.Equal(types.ModeDigest))
		})

		ginkgo.It("should report an available update otherwise", func() {
			other := "sha256:2222222222222222222222222222222222222222222222222222222222222222"
			reg.On("Digest", mock.Anything, img.Parts, "").Return(other, nil)

			result := check.NewChecker(reg, types.StatusMajor).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusAvailable))
			gomega.Expect(result.Result.Info.Type).To(gomega.Equal("digest"))
		})

		ginkgo.It("should report digest failures as unknown", func() {
			reg.On("Digest", mock.Anything, img.Parts, "").Return("", errors.New("boom"))

			result := check.NewChecker(reg, types.StatusAvailable).Check(ctx, img, "")
			gomega.Expect(result.Status).To(gomega.Equal(types.StatusUnknown))
			gomega.Expect(result.Result.Error).To(gomega.Equal("boom"))
		})
	})
})

var _ = ginkgo.Describe("Checking against a registry", func() {
	var (
		server  *ghttp.Server
		host    string
		checker *check.Checker
	)

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()
		host = strings.TrimPrefix(server.URL(), "http://")
		client := registry.NewClient(transport.New(transport.Options{
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: time.Millisecond,
			Timeout:      time.Second,
		}), &types.Config{Registries: map[string]types.RegistryConfig{host: {Insecure: true}}})
		checker = check.NewChecker(client, types.StatusAvailable)
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	respondTags := func(tagList ...string) http.HandlerFunc {
		return ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodGet, "/v2/library/nginx/tags/list"),
			ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"tags": tagList}),
		)
	}

	ginkgo.It("should find a minor update across unrelated tags", func() {
		server.AppendHandlers(respondTags("1.25.2", "1.25.3", "1.26.0", "latest"))

		img := mustImage(types.LocalImage{Reference: host + "/library/nginx:1.25.2"})
		result := checker.Check(context.Background(), img, "")
		gomega.Expect(result.Status).To(gomega.Equal(types.StatusMinor))
		gomega.Expect(result.Result.Info.NewTag).To(gomega.Equal("1.26.0"))
	})

	ginkgo.It("should find a patch update", func() {
		server.AppendHandlers(respondTags("1.25.2", "1.25.3"))

		img := mustImage(types.LocalImage{Reference: host + "/library/nginx:1.25.2"})
		result := checker.Check(context.Background(), img, "")
		gomega.Expect(result.Status).To(gomega.Equal(types.StatusPatch))
		gomega.Expect(result.Result.Info.NewTag).To(gomega.Equal("1.25.3"))
	})

	ginkgo.It("should detect a re-pushed floating tag", func() {
		server.AppendHandlers(
			respondTags("1.24", "1.25"),
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodHead, "/v2/library/nginx/manifests/1.25"),
				ghttp.RespondWith(http.StatusOK, nil, http.Header{
					digest.ContentDigestHeader: []string{remoteDigest},
				}),
			),
		)

		img := mustImage(types.LocalImage{
			Reference: host + "/library/nginx:1.25",
			Digests:   []string{host + "/library/nginx@" + localDigest},
		})
		result := checker.Check(context.Background(), img, "")
		gomega.Expect(result.Status).To(gomega.Equal(types.StatusAvailable))
	})
})
