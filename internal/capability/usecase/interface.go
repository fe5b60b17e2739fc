// Package usecase implements the capability filtering decision logic.
package usecase

import (
	"context"
)

// DocumentSource produces the unfiltered capability document. It stands in
// for the host FHIR runtime's own metadata generation.
type DocumentSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// CapabilityUseCase defines the interface for serving the (possibly
// filtered) capability document.
type CapabilityUseCase interface {
	// Metadata returns the capability document for one metadata request.
	// The only error it can return comes from the document source; the
	// filtering step itself has no failure mode and degrades to passing
	// the original document through.
	Metadata(ctx context.Context) ([]byte, error)
}
