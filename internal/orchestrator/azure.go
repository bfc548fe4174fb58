// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package orchestrator

import (
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/internal/auth"
	"github.com/juju/webappdeploy/internal/provider/azure"
	"github.com/juju/webappdeploy/internal/subscription"
)

func azureConfig(cred *auth.Credential, subscriptionID string) azure.Config {
	return azure.Config{
		SubscriptionID: subscriptionID,
		Credential:     cred.Token,
		Cloud:          cred.Environment.Cloud,
	}
}

// NewAzureLister lists the subscriptions visible to the credential.
func NewAzureLister(cred *auth.Credential) (subscription.Lister, error) {
	subs, err := azure.NewSubscriptions(azureConfig(cred, ""))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return subs, nil
}

// NewAzureCloud binds the Azure provider to the subscription.
func NewAzureCloud(cred *auth.Credential, subscriptionID string) (*Cloud, error) {
	provider, err := azure.NewProvider(azureConfig(cred, subscriptionID))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Cloud{
		ResourceGroups: provider,
		Plans:          provider,
		Sites:          provider,
		Apps:           provider,
		Files:          provider.FileTransfer(),
	}, nil
}
