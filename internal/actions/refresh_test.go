package actions_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/nicholas-fedor/cup/internal/actions"
	"github.com/nicholas-fedor/cup/pkg/check"
	"github.com/nicholas-fedor/cup/pkg/federation"
	"github.com/nicholas-fedor/cup/pkg/registry"
	"github.com/nicholas-fedor/cup/pkg/registry/auth"
	"github.com/nicholas-fedor/cup/pkg/registry/digest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
)

const (
	toolDigest = "sha256:d68e1e532088964195ad3a0a71526bc2f11a78de0def85629beb75e2265f0547"
	peerReport = `{"metrics":{},"images":[{"reference":"nginx:1","parts":{"registry":"registry-1.docker.io",` +
		`"repository":"library/nginx","tag":"1"},"result":{"has_update":false,"info":null},"time":4}],` +
		`"last_updated":"2024-05-01T12:00:00Z"}`
)

// staticSource serves a fixed worklist.
type staticSource struct {
	images    []types.LocalImage
	err       error
	requested []string
}

func (s *staticSource) Images(_ context.Context, references []string) ([]types.LocalImage, error) {
	s.requested = references

	return s.images, s.err
}

// recordingNotifier keeps the last report sent.
type recordingNotifier struct {
	reports []types.Report
}

func (n *recordingNotifier) Send(report types.Report) { n.reports = append(n.reports, report) }
func (n *recordingNotifier) GetNames() []string        { return []string{"test"} }
func (n *recordingNotifier) Close()                     {}

func hostOf(server *ghttp.Server) string {
	return strings.TrimPrefix(server.URL(), "http://")
}

func references(report types.Report) []string {
	out := make([]string, 0, len(report.Images))
	for _, image := range report.Images {
		out = append(out, image.Reference)
	}

	return out
}

var _ = ginkgo.Describe("the orchestrator", func() {
	var (
		good, bad, peer *ghttp.Server
		tokenRequests   atomic.Int32
		tokenScopes     atomic.Int32
		source          *staticSource
		config          *types.Config
	)

	newOrchestrator := func() *actions.Orchestrator {
		t := transport.New(transport.Options{
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: time.Millisecond,
			Timeout:      time.Second,
		})
		client := registry.NewClient(t, config)

		orchestrator, err := actions.NewOrchestrator(actions.Params{
			Source:   source,
			Registry: client,
			Checker:  check.NewChecker(client, types.StatusAvailable),
			Peers:    federation.NewFetcher(t),
			Config:   config,
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		return orchestrator
	}

	ginkgo.BeforeEach(func() {
		ginkgo.GinkgoT().Setenv("DOCKER_CONFIG", ginkgo.GinkgoT().TempDir())
		tokenRequests.Store(0)

		good = ghttp.NewServer()
		bad = ghttp.NewServer()
		peer = ghttp.NewServer()

		good.RouteToHandler(http.MethodGet, "/v2/", ghttp.RespondWith(http.StatusUnauthorized, "", http.Header{
			auth.ChallengeHeader: []string{`Bearer realm="` + good.URL() + `/token",service="good"`},
		}))
		good.RouteToHandler(http.MethodGet, "/token", func(w http.ResponseWriter, r *http.Request) {
			defer ginkgo.GinkgoRecover()
			tokenRequests.Add(1)
			tokenScopes.Store(int32(len(r.URL.Query()["scope"])))
			ghttp.RespondWith(http.StatusOK, `{"token":"t"}`)(w, r)
		})
		good.RouteToHandler(http.MethodGet, "/v2/org/app/tags/list", ghttp.CombineHandlers(
			ghttp.VerifyHeaderKV("Authorization", "Bearer t"),
			ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"tags": []string{"1.0.0", "1.1.0"}}),
		))
		good.RouteToHandler(http.MethodGet, "/v2/org/lib/tags/list", ghttp.RespondWithJSONEncoded(
			http.StatusOK, map[string]any{"tags": []string{"2.1", "2.2", "3.0", "latest"}},
		))
		good.RouteToHandler(http.MethodHead, "/v2/org/tool/manifests/latest", ghttp.RespondWith(
			http.StatusOK, nil, http.Header{digest.ContentDigestHeader: []string{toolDigest}},
		))

		bad.RouteToHandler(http.MethodGet, "/v2/", ghttp.RespondWith(http.StatusUnauthorized, "", http.Header{
			auth.ChallengeHeader: []string{`Basic realm="bad"`},
		}))

		peer.RouteToHandler(http.MethodGet, federation.ReportPath, ghttp.RespondWith(http.StatusOK, peerReport))

		source = &staticSource{images: []types.LocalImage{
			{Reference: hostOf(good) + "/org/app:1.0.0", UsedBy: []string{"app"}},
			{Reference: hostOf(good) + "/org/lib:2.1"},
			{
				Reference: hostOf(good) + "/org/tool:latest",
				Digests:   []string{hostOf(good) + "/org/tool@" + toolDigest},
			},
			{Reference: hostOf(bad) + "/org/blocked:1.0"},
		}}

		config = &types.Config{
			Registries: map[string]types.RegistryConfig{
				hostOf(good): {Insecure: true},
				hostOf(bad):  {Insecure: true},
			},
			Servers: map[string]string{"peer": peer.URL()},
		}
	})

	ginkgo.AfterEach(func() {
		good.Close()
		bad.Close()
		peer.Close()
	})

	ginkgo.It("should check all images, scope registry failures and merge peers", func() {
		report, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(tokenRequests.Load()).To(gomega.Equal(int32(1)))
		gomega.Expect(tokenScopes.Load()).To(gomega.Equal(int32(3)))
		gomega.Expect(references(report)).To(gomega.Equal([]string{
			hostOf(good) + "/org/lib:2.1",
			hostOf(good) + "/org/app:1.0.0",
			hostOf(good) + "/org/tool:latest",
			"nginx:1",
			hostOf(bad) + "/org/blocked:1.0",
		}))

		statuses := make([]types.Status, 0, len(report.Images))
		for _, image := range report.Images {
			statuses = append(statuses, image.Status)
		}

		gomega.Expect(statuses).To(gomega.Equal([]types.Status{
			types.StatusMajor,
			types.StatusMinor,
			types.StatusUpToDate,
			types.StatusUpToDate,
			types.StatusUnknown,
		}))

		gomega.Expect(report.Images[1].UsedBy).To(gomega.Equal([]string{"app"}))
		gomega.Expect(report.Images[3].Server).To(gomega.Equal("peer"))
		gomega.Expect(report.Images[4].Result.Error).To(gomega.ContainSubstring("unsupported challenge"))
		gomega.Expect(bad.ReceivedRequests()).To(gomega.HaveLen(1))

		gomega.Expect(report.Metrics).To(gomega.Equal(types.Metrics{
			MonitoredImages:  5,
			UpToDate:         2,
			UpdatesAvailable: 2,
			MajorUpdates:     1,
			MinorUpdates:     1,
			Unknown:          1,
		}))
	})

	ginkgo.It("should not fetch peers in agent mode", func() {
		config.Agent = true

		report, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.Images).To(gomega.HaveLen(4))
		gomega.Expect(peer.ReceivedRequests()).To(gomega.BeEmpty())
	})

	ginkgo.It("should pass explicit references or configured extras to the source", func() {
		config.Agent = true
		config.Images.Extra = []string{"nginx:1.25"}
		source.images = nil

		_, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(source.requested).To(gomega.Equal([]string{"nginx:1.25"}))

		_, err = newOrchestrator().Refresh(context.Background(), []string{"redis:7"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(source.requested).To(gomega.Equal([]string{"redis:7"}))
	})

	ginkgo.It("should check only explicitly requested references", func() {
		config.Agent = true

		report, err := newOrchestrator().Refresh(context.Background(), []string{hostOf(good) + "/org/app:1.0.0"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(references(report)).To(gomega.Equal([]string{hostOf(good) + "/org/app:1.0.0"}))
		gomega.Expect(bad.ReceivedRequests()).To(gomega.BeEmpty())
	})

	ginkgo.It("should apply exclusions and ignored registries", func() {
		config.Agent = true
		config.Images.Exclude = []string{hostOf(good) + "/org/lib"}
		config.Registries[hostOf(bad)] = types.RegistryConfig{Ignore: true}

		report, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(references(report)).To(gomega.Equal([]string{
			hostOf(good) + "/org/app:1.0.0",
			hostOf(good) + "/org/tool:latest",
		}))
		gomega.Expect(bad.ReceivedRequests()).To(gomega.BeEmpty())
	})

	ginkgo.It("should report images without version or digest as unknown", func() {
		config.Agent = true
		source.images = append(source.images, types.LocalImage{Reference: "redis:latest"})
		config.Registries[hostOf(bad)] = types.RegistryConfig{Ignore: true}

		report, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		last := report.Images[len(report.Images)-1]
		gomega.Expect(last.Reference).To(gomega.Equal("redis:latest"))
		gomega.Expect(last.Status).To(gomega.Equal(types.StatusUnknown))
		gomega.Expect(last.Result.HasUpdate).To(gomega.BeNil())
	})

	ginkgo.It("should fail when the image source fails", func() {
		source.err = errors.New("daemon unreachable")

		_, err := newOrchestrator().Refresh(context.Background(), nil)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("daemon unreachable")))
	})

	ginkgo.It("should reject invalid version rules", func() {
		config.Images.Versions = []types.VersionRule{{Match: "regex", Reference: "("}}

		_, err := actions.NewOrchestrator(actions.Params{Source: source, Config: config})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.Describe("RunRefreshWithNotifications", func() {
		ginkgo.It("should notify about updates and return a metric", func() {
			notifier := &recordingNotifier{}

			report, metric, err := actions.RunRefreshWithNotifications(
				context.Background(), newOrchestrator(), notifier, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(notifier.reports).To(gomega.HaveLen(1))
			gomega.Expect(metric.Monitored).To(gomega.Equal(report.Metrics.MonitoredImages))
			gomega.Expect(metric.Major).To(gomega.Equal(1))
		})

		ginkgo.It("should stay quiet without updates", func() {
			notifier := &recordingNotifier{}
			config.Agent = true
			source.images = source.images[2:3]

			_, _, err := actions.RunRefreshWithNotifications(
				context.Background(), newOrchestrator(), notifier, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(notifier.reports).To(gomega.BeEmpty())
		})

		ginkgo.It("should return the source error", func() {
			source.err = errors.New("daemon unreachable")

			_, metric, err := actions.RunRefreshWithNotifications(
				context.Background(), newOrchestrator(), nil, nil)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(metric).To(gomega.BeNil())
		})
	})
})
