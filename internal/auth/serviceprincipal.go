// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"context"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"
)

// servicePrincipal is a client id with a secret or certificate, taken
// from the deployment configuration or the AZURE_* environment
// variables.
type servicePrincipal struct {
	tenantID            string
	clientID            string
	clientSecret        string
	certificatePath     string
	certificatePassword string
}

func servicePrincipalFromRequest(req Request) servicePrincipal {
	cfg := req.Config
	if cfg.ClientID != "" {
		return servicePrincipal{
			tenantID:            cfg.TenantID,
			clientID:            cfg.ClientID,
			clientSecret:        cfg.ClientSecret,
			certificatePath:     cfg.CertificatePath,
			certificatePassword: cfg.CertificatePassword,
		}
	}
	return servicePrincipal{
		tenantID:            req.Getenv("AZURE_TENANT_ID"),
		clientID:            req.Getenv("AZURE_CLIENT_ID"),
		clientSecret:        req.Getenv("AZURE_CLIENT_SECRET"),
		certificatePath:     req.Getenv("AZURE_CLIENT_CERTIFICATE_PATH"),
		certificatePassword: req.Getenv("AZURE_CLIENT_CERTIFICATE_PASSWORD"),
	}
}

func (sp servicePrincipal) complete() bool {
	return sp.tenantID != "" && sp.clientID != "" &&
		(sp.clientSecret != "" || sp.certificatePath != "")
}

func servicePrincipalSource() Source {
	return Source{
		Method: ServicePrincipal,
		Available: func(req Request) bool {
			return servicePrincipalFromRequest(req).complete()
		},
		Retrieve: retrieveServicePrincipal,
	}
}

func retrieveServicePrincipal(_ context.Context, req Request) (*Credential, error) {
	sp := servicePrincipalFromRequest(req)
	env := req.TargetEnvironment()

	var (
		token azcore.TokenCredential
		err   error
	)
	if sp.clientSecret != "" {
		token, err = azidentity.NewClientSecretCredential(
			sp.tenantID, sp.clientID, sp.clientSecret,
			&azidentity.ClientSecretCredentialOptions{ClientOptions: clientOptions(env)},
		)
	} else {
		token, err = certificateCredential(sp, env)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Credential{
		Token:       token,
		Environment: env,
		TenantID:    sp.tenantID,
		Identity:    Mask(sp.clientID),
	}, nil
}

func certificateCredential(sp servicePrincipal, env Environment) (azcore.TokenCredential, error) {
	data, err := os.ReadFile(sp.certificatePath)
	if err != nil {
		return nil, errors.Annotate(err, "reading client certificate")
	}
	var password []byte
	if sp.certificatePassword != "" {
		password = []byte(sp.certificatePassword)
	}
	certs, key, err := azidentity.ParseCertificates(data, password)
	if err != nil {
		return nil, errors.Annotatef(err, "parsing client certificate %q", sp.certificatePath)
	}
	return azidentity.NewClientCertificateCredential(
		sp.tenantID, sp.clientID, certs, key,
		&azidentity.ClientCertificateCredentialOptions{ClientOptions: clientOptions(env)},
	)
}
