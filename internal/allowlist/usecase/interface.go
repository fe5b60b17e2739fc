// Package usecase implements the allow-list loading logic for capability filtering.
package usecase

import (
	"context"

	allowlistDomain "github.com/fhirflare/capfilter/internal/allowlist/domain"
)

// AllowlistRepository defines the interface for allow-list persistence reads.
type AllowlistRepository interface {
	ListResourceTypes(ctx context.Context) ([]string, error)
}

// AllowlistUseCase defines the interface for loading the current allow-list.
type AllowlistUseCase interface {
	// Load returns a fresh snapshot of the allow-list. It never fails: any
	// store error is logged and recovered as an empty allow-list, which the
	// capability filter treats as "apply no filtering".
	Load(ctx context.Context) allowlistDomain.Allowlist
}
