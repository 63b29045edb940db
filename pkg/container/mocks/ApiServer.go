// Package mocks provides engine API handlers for container tests.
package mocks

import (
	"net/http"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// ListImagesHandler responds to an image list request with the given summaries.
func ListImagesHandler(summaries ...image.Summary) http.HandlerFunc {
	if summaries == nil {
		summaries = []image.Summary{}
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, gomega.HaveSuffix("/images/json")),
		ghttp.RespondWithJSONEncoded(http.StatusOK, summaries),
	)
}

// ListContainersHandler responds to a container list request with the given summaries.
func ListContainersHandler(summaries ...container.Summary) http.HandlerFunc {
	if summaries == nil {
		summaries = []container.Summary{}
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, gomega.HaveSuffix("/containers/json")),
		ghttp.RespondWithJSONEncoded(http.StatusOK, summaries),
	)
}

// InspectImageHandler responds to an inspect request for reference with the given image.
func InspectImageHandler(reference string, info image.InspectResponse) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, gomega.HaveSuffix("/images/"+reference+"/json")),
		ghttp.RespondWithJSONEncoded(http.StatusOK, info),
	)
}

// MissingImageHandler responds to an inspect request for reference as the engine does for unknown images.
func MissingImageHandler(reference string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodGet, gomega.HaveSuffix("/images/"+reference+"/json")),
		ghttp.RespondWithJSONEncoded(http.StatusNotFound, map[string]string{
			"message": "No such image: " + reference,
		}),
	)
}

// ErrorHandler fails any request with an internal server error.
func ErrorHandler() http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(http.StatusInternalServerError, map[string]string{
		"message": "engine failure",
	})
}
