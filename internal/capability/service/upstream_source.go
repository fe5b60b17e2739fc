// Package service provides capability document sources. A source stands in
// for the host FHIR runtime: it produces the unfiltered self-description the
// filter post-processes.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// fhirJSONContentType is the media type for FHIR JSON payloads.
const fhirJSONContentType = "application/fhir+json"

// UpstreamSource fetches the unfiltered capability document from the
// backing FHIR server's metadata endpoint.
type UpstreamSource struct {
	metadataURL string
	client      *http.Client
}

// Fetch retrieves the upstream capability document. Failures map to
// ErrUpstreamUnavailable and propagate to the caller: producing the base
// document is the host's contract, not the filter's.
func (u *UpstreamSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.metadataURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build upstream metadata request")
	}
	req.Header.Set("Accept", fhirJSONContentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned status %d",
			apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}

	return body, nil
}

// NewUpstreamSource creates a source that fetches {baseURL}/metadata with
// the given timeout.
func NewUpstreamSource(baseURL string, timeout time.Duration) *UpstreamSource {
	return &UpstreamSource{
		metadataURL: strings.TrimRight(baseURL, "/") + "/metadata",
		client: &http.Client{
			Timeout: timeout,
		},
	}
}
