package tags

import (
	"net/url"
	"strings"
)

// nextLink returns the target of the rel="next" entry in Link header values, resolved against base.
//
// Values follow RFC 8288: comma-separated "<uri-reference>; param=value" entries. The rel parameter
// may hold several space-separated relation types and may be quoted.
//
// Parameters:
//   - values: All Link header values of a response.
//   - base: The request URL the response answered.
//
// Returns:
//   - *url.URL: Absolute URL of the next page.
//   - bool: false when no usable next link is present.
func nextLink(values []string, base *url.URL) (*url.URL, bool) {
	for _, value := range values {
		for _, entry := range splitEntries(value) {
			target, params, ok := parseEntry(entry)
			if !ok || !hasRel(params, "next") {
				continue
			}

			ref, err := url.Parse(target)
			if err != nil {
				continue
			}

			return base.ResolveReference(ref), true
		}
	}

	return nil, false
}

// splitEntries splits a Link header value on commas outside of <...> and quoted strings.
func splitEntries(value string) []string {
	var (
		entries []string
		start   int
		inURI   bool
		inQuote bool
	)

	for i, r := range value {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case r == '"':
			inQuote = true
		case r == '<':
			inURI = true
		case r == '>':
			inURI = false
		case r == ',' && !inURI:
			entries = append(entries, value[start:i])
			start = i + 1
		}
	}

	return append(entries, value[start:])
}

// parseEntry splits one link entry into its target and lowercased parameters.
func parseEntry(entry string) (string, map[string]string, bool) {
	entry = strings.TrimSpace(entry)
	if !strings.HasPrefix(entry, "<") {
		return "", nil, false
	}

	end := strings.Index(entry, ">")
	if end < 0 {
		return "", nil, false
	}

	target := entry[1:end]
	params := make(map[string]string)

	for _, param := range strings.Split(entry[end+1:], ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found {
			continue
		}

		params[strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	return target, params, true
}

// hasRel reports whether the rel parameter lists the relation type.
func hasRel(params map[string]string, rel string) bool {
	for _, value := range strings.Fields(params["rel"]) {
		if strings.EqualFold(value, rel) {
			return true
		}
	}

	return false
}
