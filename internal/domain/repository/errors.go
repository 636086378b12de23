package repository

import "errors"

var (
	// ErrDisabled means the data source is switched off or has no API key.
	ErrDisabled = errors.New("data source disabled")
	// ErrNoData means the upstream answered but returned nothing usable.
	ErrNoData = errors.New("no data available")
	// ErrUpstream wraps transport and vendor failures.
	ErrUpstream = errors.New("upstream request failed")
)
