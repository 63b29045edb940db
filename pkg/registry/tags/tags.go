// Package tags lists repository tags from a registry and selects the newest comparable version.
// It follows Link-header pagination until the registry stops advertising a next page.
package tags

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/manifest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

// tagList is the body of a tag-list page.
type tagList struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Request describes a tag listing.
type Request struct {
	Parts    types.Parts
	Insecure bool
	Token    string
	// Strategy parses candidate tags.
	Strategy version.Strategy
	// Local is the parsed local tag; only candidates comparable with it are kept.
	Local version.Tag
}

// List fetches every page of the repository's tag list.
//
// Each page's tags are parsed with the request strategy, filtered to those comparable with the local
// tag and deduplicated. Pagination stops when a page has no next link or the next link was already visited.
//
// Parameters:
//   - ctx: Context for the requests.
//   - client: Shared registry transport.
//   - req: The listing request.
//
// Returns:
//   - []version.Tag: Comparable candidates in first-seen order.
//   - error: Transport, status or transport.ErrMalformedResponse errors.
func List(ctx context.Context, client *transport.Client, req Request) ([]version.Tag, error) {
	fields := logrus.Fields{
		"registry":   req.Parts.Registry,
		"repository": req.Parts.Repository,
	}

	next, err := url.Parse(manifest.BuildTagsURL(req.Parts, req.Insecure))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrMalformedResponse, err)
	}

	var (
		candidates []version.Tag
		seen       = make(map[string]struct{})
		visited    = make(map[string]struct{})
		pages      int
	)

	for next != nil {
		visited[next.String()] = struct{}{}
		pages++

		page, link, err := fetchPage(ctx, client, next, req.Token)
		if err != nil {
			return nil, err
		}

		for _, text := range page {
			if _, ok := seen[text]; ok {
				continue
			}

			seen[text] = struct{}{}

			tag, err := req.Strategy.Parse(text)
			if err != nil || !tag.Comparable(req.Local) {
				continue
			}

			candidates = append(candidates, tag)
		}

		next = nil

		if link != nil {
			if _, ok := visited[link.String()]; ok {
				logrus.WithFields(fields).WithField("url", link.String()).
					Debug("Tag list links to an already visited page, stopping")
			} else {
				next = link
			}
		}
	}

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"pages":      pages,
		"candidates": len(candidates),
	}).Debug("Listed tags")

	return candidates, nil
}

// fetchPage retrieves one tag-list page and its next link.
func fetchPage(
	ctx context.Context,
	client *transport.Client,
	pageURL *url.URL,
	token string,
) ([]string, *url.URL, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(ctx, http.MethodGet, pageURL.String(), header)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if err := transport.CheckStatus(resp, token != ""); err != nil {
		return nil, nil, err
	}

	var body tagList
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf(
			"%w: tag list %s: %w",
			transport.ErrMalformedResponse,
			pageURL.String(),
			err,
		)
	}

	link, _ := nextLink(resp.Header.Values("Link"), pageURL)

	return body.Tags, link, nil
}

// Best lists the repository's tags and returns the newest candidate.
//
// Returns:
//   - version.Tag: The newest comparable tag.
//   - bool: false if no tag is comparable with the local tag.
//   - error: Listing errors.
func Best(ctx context.Context, client *transport.Client, req Request) (version.Tag, bool, error) {
	candidates, err := List(ctx, client, req)
	if err != nil {
		return version.Tag{}, false, err
	}

	best, ok := version.Latest(req.Local, candidates)

	return best, ok, nil
}
