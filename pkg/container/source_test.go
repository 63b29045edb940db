package container_test

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	dockerContainerType "github.com/docker/docker/api/types/container"
	dockerImageType "github.com/docker/docker/api/types/image"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/cup/pkg/container"
	"github.com/nicholas-fedor/cup/pkg/container/mocks"
	"github.com/nicholas-fedor/cup/pkg/types"
)

const (
	nginxID     = "sha256:4dbc5f9c07028a985e14d1393e849ea07f68804c4293050d5a641b138db72daa"
	redisID     = "sha256:19d07168491a3f9e2798a9bed96544e34d57ddc4757a4ac5bb199dea896c87fd"
	nginxDigest = "nginx@sha256:d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
)

var _ = ginkgo.Describe("the image source", func() {
	var (
		server *ghttp.Server
		client *container.Client
	)

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()

		api, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(server.URL()),
			dockerClient.WithHTTPClient(server.HTTPTestServer.Client()),
		)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		client = container.NewClientWithAPI(api, container.ClientOptions{})
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("should list tagged images with digests and the containers using them", func() {
		server.AppendHandlers(
			mocks.ListImagesHandler(
				dockerImageType.Summary{
					ID:          nginxID,
					RepoTags:    []string{"nginx:1.25", "nginx:latest"},
					RepoDigests: []string{nginxDigest},
				},
				dockerImageType.Summary{ID: redisID, RepoTags: []string{"<none>:<none>"}},
			),
			mocks.ListContainersHandler(
				dockerContainerType.Summary{Names: []string{"/web"}, ImageID: nginxID},
				dockerContainerType.Summary{Names: []string{"/proxy"}, ImageID: nginxID},
				dockerContainerType.Summary{Names: []string{"/cache"}, ImageID: redisID},
			),
		)

		images, err := client.Images(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(images).To(gomega.Equal([]types.LocalImage{{
			Reference: "nginx:1.25",
			Digests:   []string{nginxDigest},
			UsedBy:    []string{"proxy", "web"},
		}}))
	})

	ginkgo.It("should resolve requested references against the local store", func() {
		server.AppendHandlers(
			mocks.ListImagesHandler(dockerImageType.Summary{ID: nginxID, RepoTags: []string{"nginx:1.25"}}),
			mocks.ListContainersHandler(),
			mocks.InspectImageHandler("redis:7", dockerImageType.InspectResponse{
				ID:          redisID,
				RepoDigests: []string{"redis@sha256:0000000000000000000000000000000000000000000000000000000000000000"},
			}),
			mocks.MissingImageHandler("alpine:3.20"),
		)

		images, err := client.Images(context.Background(), []string{"nginx:1.25", "redis:7", "alpine:3.20"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(images).To(gomega.HaveLen(3))
		gomega.Expect(images[1].Reference).To(gomega.Equal("redis:7"))
		gomega.Expect(images[1].Digests).To(gomega.HaveLen(1))
		gomega.Expect(images[2]).To(gomega.Equal(types.LocalImage{Reference: "alpine:3.20"}))
		gomega.Expect(server.ReceivedRequests()).To(gomega.HaveLen(4))
	})

	ginkgo.It("should fail when the engine cannot list images", func() {
		server.AppendHandlers(mocks.ErrorHandler())

		_, err := client.Images(context.Background(), nil)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to list images")))
	})

	ginkgo.It("should fail when the engine cannot list containers", func() {
		server.AppendHandlers(mocks.ListImagesHandler(), mocks.ErrorHandler())

		_, err := client.Images(context.Background(), nil)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to list containers")))
	})

	ginkgo.It("should keep a requested image the engine fails to inspect as reference-only", func() {
		server.AppendHandlers(
			mocks.ListImagesHandler(dockerImageType.Summary{ID: nginxID, RepoTags: []string{"nginx:1.25"}}),
			mocks.ListContainersHandler(),
			mocks.ErrorHandler(),
			mocks.MissingImageHandler("alpine:3.20"),
		)

		images, err := client.Images(context.Background(), []string{"Foo:1", "alpine:3.20"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(images).To(gomega.Equal([]types.LocalImage{
			{Reference: "nginx:1.25"},
			{Reference: "Foo:1"},
			{Reference: "alpine:3.20"},
		}))
	})
})
