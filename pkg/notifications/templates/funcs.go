// Package templates provides the helper functions available in notification templates.
package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// shortDigestLength is the number of hex characters kept by ShortDigest.
const shortDigestLength = 12

// Funcs are the helpers available to notification templates.
//
// Title capitalizes update types ("minor" -> "Minor"), ShortDigest abbreviates remote digests
// and ToJSON renders the whole data model for machine consumers.
var Funcs = template.FuncMap{
	"ToUpper":     strings.ToUpper,
	"ToLower":     strings.ToLower,
	"ToJSON":      toJSON,
	"Title":       cases.Title(language.AmericanEnglish).String,
	"ShortDigest": ShortDigest,
}

// ShortDigest drops the algorithm prefix of a digest and keeps the first twelve hex characters,
// the form the engine CLI prints image IDs in.
func ShortDigest(digest string) string {
	if _, hex, found := strings.Cut(digest, ":"); found {
		digest = hex
	}

	if len(digest) > shortDigestLength {
		return digest[:shortDigestLength]
	}

	return digest
}

// toJSON renders a report for the json.v1 template.
// Marshalling failures are logged and rendered in place of the report.
func toJSON(v any) string {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"value": fmt.Sprintf("%v", v),
		}).Warn("Failed to marshal JSON in notification template")

		return fmt.Sprintf("failed to marshal JSON in notification template: %v", err)
	}

	return string(bytes)
}
