// Package http provides the HTTP handler serving the capability metadata endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	capabilityUseCase "github.com/fhirflare/capfilter/internal/capability/usecase"
	"github.com/fhirflare/capfilter/internal/httputil"
)

// FHIRContentType is the content-type for FHIR JSON payloads.
const FHIRContentType = "application/fhir+json"

// MetadataHandler handles HTTP requests for the server's self-description.
type MetadataHandler struct {
	capabilityUseCase capabilityUseCase.CapabilityUseCase
	logger            *slog.Logger
}

// NewMetadataHandler creates a new metadata handler with required dependencies.
func NewMetadataHandler(
	useCase capabilityUseCase.CapabilityUseCase,
	logger *slog.Logger,
) *MetadataHandler {
	return &MetadataHandler{
		capabilityUseCase: useCase,
		logger:            logger,
	}
}

// GetHandler serves the capability statement.
// GET /metadata - returns the (possibly filtered) self-description.
// Filtering itself never fails a request; the only error path is the
// document source, which maps to 502 per the host contract.
func (h *MetadataHandler) GetHandler(c *gin.Context) {
	document, err := h.capabilityUseCase.Metadata(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, FHIRContentType, document)
}
