package content

import "errors"

// Error taxonomy for the resolution engine and its collaborators.
//
// Search-path failures degrade to empty contributions; detail-fetch failures
// surface one of these, wrapped with context. Storage failures are never
// absorbed.
var (
	// ErrNotFound: the id is well formed but neither the store nor the
	// originating source knows it.
	ErrNotFound = errors.New("resource not found")

	// ErrMalformedID: the id matches no known prefix grammar. Distinct from
	// ErrNotFound.
	ErrMalformedID = errors.New("malformed resource id")

	// ErrAdapterUnavailable: transient network or parse failure talking to an
	// external source.
	ErrAdapterUnavailable = errors.New("source adapter unavailable")

	// ErrStorage: the persistence layer is unreachable or rejected a write.
	ErrStorage = errors.New("storage failure")
)
