package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain operations
var (
	ErrEmptyPatch        = goerr.New("nothing to update")
	ErrIncidentIDMissing = goerr.New("incident ID is required")
)
