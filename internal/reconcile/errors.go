package reconcile

import "errors"

var (
	// ErrBusy is returned when another reconciliation operation already
	// holds the domain's lock. The caller may retry later.
	ErrBusy = errors.New("another sync operation is in progress for this domain")

	// ErrZoneNotResolved is returned when the domain has no provider zone
	// and no zone in the account matches its name.
	ErrZoneNotResolved = errors.New("no matching Cloudflare zone for domain")

	// ErrInvalidOperation is returned for operations rejected before any
	// network call, e.g. a proxy toggle on a non-proxyable record type.
	ErrInvalidOperation = errors.New("invalid operation")
)
