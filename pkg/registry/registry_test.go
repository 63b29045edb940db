package registry_test

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/nicholas-fedor/cup/pkg/registry"
	"github.com/nicholas-fedor/cup/pkg/registry/auth"
	"github.com/nicholas-fedor/cup/pkg/registry/digest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

const mockDigest = "sha256:d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"

var _ = ginkgo.Describe("Registry client", func() {
	var (
		server *ghttp.Server
		host   string
		client *registry.Client
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		ginkgo.GinkgoT().Setenv("DOCKER_CONFIG", ginkgo.GinkgoT().TempDir())

		server = ghttp.NewServer()
		host = strings.TrimPrefix(server.URL(), "http://")
		ctx = context.Background()

		config := &types.Config{
			Registries: map[string]types.RegistryConfig{
				host: {Insecure: true, Authentication: "dXNlcjpwYXNz"},
			},
		}
		client = registry.NewClient(transport.New(transport.Options{
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: time.Millisecond,
			Timeout:      time.Second,
		}), config)
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("should read insecure registries from the configuration", func() {
		gomega.Expect(client.Insecure(host)).To(gomega.BeTrue())
		gomega.Expect(client.Insecure("ghcr.io")).To(gomega.BeFalse())
	})

	ginkgo.It("should exchange a challenge for a token and use it", func() {
		server.AppendHandlers(
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/v2/"),
				ghttp.RespondWith(http.StatusUnauthorized, "", http.Header{
					auth.ChallengeHeader: []string{`Bearer realm="` + server.URL() + `/token",service="test"`},
				}),
			),
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/token"),
				ghttp.VerifyHeaderKV("Authorization", "Basic dXNlcjpwYXNz"),
				ghttp.RespondWith(http.StatusOK, `{"token":"secret"}`),
			),
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodHead, "/v2/org/app/manifests/1.0"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer secret"),
				ghttp.RespondWith(http.StatusOK, nil, http.Header{
					digest.ContentDigestHeader: []string{mockDigest},
				}),
			),
		)

		token, err := client.Authenticate(ctx, host, []string{"org/app"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).To(gomega.Equal("secret"))

		remote, err := client.Digest(ctx, types.Parts{Registry: host, Repository: "org/app", Tag: "1.0"}, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(remote).To(gomega.Equal(mockDigest))
	})

	ginkgo.It("should skip the token exchange for anonymous registries", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "{}"))

		token, err := client.Authenticate(ctx, host, []string{"org/app"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).To(gomega.BeEmpty())
		gomega.Expect(server.ReceivedRequests()).To(gomega.HaveLen(1))
	})

	ginkgo.It("should return the newest comparable tag", func() {
		server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
			"tags": []string{"1.25.2", "1.25.3", "latest"},
		}))

		strategy := version.NewStandard()
		local, err := strategy.Parse("1.25.2")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		best, ok, err := client.LatestTag(ctx,
			types.Parts{Registry: host, Repository: "library/nginx", Tag: "1.25.2"}, "", strategy, local)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(best.Text).To(gomega.Equal("1.25.3"))
	})
})
