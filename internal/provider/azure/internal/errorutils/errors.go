// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package errorutils

import (
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("webappdeploy.provider.azure.errorutils")

// IsNotFoundError returns true if the error is
// an Azure response error with a 404 status.
func IsNotFoundError(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status code of an Azure
// response error, or 0 if err is not a response error.
func StatusCode(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

// ErrorCode returns the Azure error code of a
// response error, or "" if there is none.
func ErrorCode(err error) string {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.ErrorCode
	}
	return ""
}

// MaybeNotFound converts an Azure 404 response into a juju NotFound
// error describing what was looked up. Any other error is returned
// traced.
func MaybeNotFound(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if IsNotFoundError(err) {
		what := fmt.Sprintf(format, args...)
		logger.Tracef("%s not found: %v", what, err)
		return errors.NewNotFound(err, what+" not found")
	}
	return errors.Trace(err)
}
