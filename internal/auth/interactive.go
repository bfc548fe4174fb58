// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"
	"github.com/juju/webbrowser"
)

// The interactive sources sign the user in when the token is first
// requested, which happens when the chain validates the credential.

func oauth2Source() Source {
	return Source{
		Method: OAuth2,
		Available: func(req Request) bool {
			return req.Explicit || req.BrowserAvailable
		},
		Retrieve: func(_ context.Context, req Request) (*Credential, error) {
			env := req.TargetEnvironment()
			token, err := azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
				ClientOptions: clientOptions(env),
				TenantID:      req.Config.TenantID,
				ClientID:      req.Config.ClientID,
			})
			if err != nil {
				return nil, errors.Trace(err)
			}
			return &Credential{
				Token:       token,
				Environment: env,
				TenantID:    req.Config.TenantID,
			}, nil
		},
	}
}

func deviceCodeSource() Source {
	return Source{
		Method: DeviceCode,
		Available: func(req Request) bool {
			return req.Explicit || req.Interactive
		},
		Retrieve: func(_ context.Context, req Request) (*Credential, error) {
			env := req.TargetEnvironment()
			token, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
				ClientOptions: clientOptions(env),
				TenantID:      req.Config.TenantID,
				ClientID:      req.Config.ClientID,
				UserPrompt:    deviceCodePrompt(req),
			})
			if err != nil {
				return nil, errors.Trace(err)
			}
			return &Credential{
				Token:       token,
				Environment: env,
				TenantID:    req.Config.TenantID,
			}, nil
		},
	}
}

// deviceCodePrompt shows the sign in instructions and, if possible,
// opens the verification page.
func deviceCodePrompt(req Request) func(context.Context, azidentity.DeviceCodeMessage) error {
	return func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
		fmt.Fprintln(req.Stderr, msg.Message)
		if !req.BrowserAvailable {
			return nil
		}
		u, err := url.Parse(msg.VerificationURL)
		if err != nil {
			logger.Debugf("invalid verification URL %q: %v", msg.VerificationURL, err)
			return nil
		}
		if err := webbrowser.Open(u); err != nil {
			logger.Debugf("cannot open browser: %v", err)
		}
		return nil
	}
}
