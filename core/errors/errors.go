// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package errors defines the failure classes reported by a deployment
// run. Failures are wrapped with the matching constant and identified
// with errors.Is.
package errors

import (
	"github.com/juju/errors"
)

const (
	// ConfigurationError is a fatal pre-flight failure: the deployment
	// description cannot be acted upon as written.
	ConfigurationError = errors.ConstError("configuration error")

	// LoginFailure is raised when no credential could be obtained, or a
	// credential is bound to a cloud other than the configured one.
	LoginFailure = errors.ConstError("login failure")

	// SubscriptionNotFound is raised when the configured subscription is
	// not visible to the signed in account.
	SubscriptionNotFound = errors.ConstError("subscription not found")

	// PackagingError is a local filesystem failure while staging or
	// archiving artifacts.
	PackagingError = errors.ConstError("packaging error")
)

// Configurationf returns a ConfigurationError with the given message.
func Configurationf(format string, args ...any) error {
	return errors.WithType(errors.Errorf(format, args...), ConfigurationError)
}

// LoginFailuref returns a LoginFailure with the given message.
func LoginFailuref(format string, args ...any) error {
	return errors.WithType(errors.Errorf(format, args...), LoginFailure)
}

// Packaging annotates err as a PackagingError.
func Packaging(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithType(errors.Annotate(err, message), PackagingError)
}
