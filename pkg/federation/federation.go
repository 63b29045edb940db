// Package federation merges the reports of peer Cup instances into local results.
// Peers are fetched concurrently; a failing peer is logged and contributes nothing.
package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// ReportPath is the path of the JSON report served by every instance.
const ReportPath = "/api/v3/json"

// Fetcher retrieves reports from peer instances.
type Fetcher struct {
	client *transport.Client
}

// NewFetcher creates a fetcher using the shared transport.
func NewFetcher(client *transport.Client) *Fetcher {
	return &Fetcher{client: client}
}

// ReportURL returns the report URL of a peer's base URL.
func ReportURL(base string) string {
	return strings.TrimRight(base, "/") + ReportPath
}

// FetchAll retrieves every peer's results.
//
// Entries are tagged with the peer's name and keep the status computed by the peer.
//
// Parameters:
//   - ctx: Context for the requests.
//   - servers: Peer base URLs keyed by name.
//
// Returns:
//   - []types.CheckResult: Entries of all reachable peers, ordered by peer name.
func (f *Fetcher) FetchAll(ctx context.Context, servers map[string]string) []types.CheckResult {
	if len(servers) == 0 {
		return nil
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}

	slices.Sort(names)

	perPeer := make([][]types.CheckResult, len(names))

	var group errgroup.Group

	for i, name := range names {
		group.Go(func() error {
			results, err := f.Fetch(ctx, name, servers[name])
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"server": name,
					"url":    servers[name],
				}).Warn("Failed to fetch updates from server")

				return nil
			}

			perPeer[i] = results

			return nil
		})
	}

	_ = group.Wait()

	var merged []types.CheckResult
	for _, results := range perPeer {
		merged = append(merged, results...)
	}

	return merged
}

// Fetch retrieves one peer's results.
//
// Parameters:
//   - ctx: Context for the request.
//   - name: Peer name recorded on each entry.
//   - base: Peer base URL.
//
// Returns:
//   - []types.CheckResult: The peer's entries.
//   - error: Transport, status or transport.ErrMalformedResponse errors.
func (f *Fetcher) Fetch(ctx context.Context, name, base string) ([]types.CheckResult, error) {
	url := ReportURL(base)

	resp, err := f.client.Do(ctx, http.MethodGet, url, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := transport.CheckStatus(resp, false); err != nil {
		return nil, err
	}

	var report types.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: report from %s: %w", transport.ErrMalformedResponse, name, err)
	}

	results := make([]types.CheckResult, 0, len(report.Images))

	for _, image := range report.Images {
		image.Server = name
		image.Status, image.Mode = types.StatusFromResult(image.Result)
		results = append(results, image)
	}

	logrus.WithFields(logrus.Fields{
		"server": name,
		"images": len(results),
	}).Debug("Fetched updates from server")

	return results, nil
}
