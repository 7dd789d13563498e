package models

import "errors"

var (
	// ErrAuthentication means no valid token could be obtained
	ErrAuthentication = errors.New("authentication failed")

	// ErrSubscriptionResolution means no usable subscription could be selected
	ErrSubscriptionResolution = errors.New("subscription resolution failed")

	// ErrResourceEnumeration means the VM inventory could not be established
	ErrResourceEnumeration = errors.New("resource enumeration failed")

	// ErrMetricQuery means a metrics call for a single VM failed
	ErrMetricQuery = errors.New("metric query failed")
)
