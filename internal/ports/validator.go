package ports

import (
	"context"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// Station identifies the operator station against the remote server.
type Station struct {
	// BaseURL is the server root, without trailing slash.
	BaseURL string

	// PIN is the fixed station identifier sent with every validation.
	PIN string

	// Sector is the access area resolved for the PIN at login.
	Sector string
}

// Validator submits a credential to the remote access-control server.
type Validator interface {
	// Validate issues exactly one request for the presentation.
	// Transport errors, non-2xx statuses and responses without a result are
	// all returned as *domain.ValidationError.
	Validate(ctx context.Context, p domain.Presentation) (domain.Outcome, error)
}
