// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
)

// Subscriptions lists the subscriptions visible to a credential.
type Subscriptions struct {
	client *armsubscriptions.Client
}

// NewSubscriptions returns a Subscriptions for the credential in the
// configuration. No subscription needs to be selected.
func NewSubscriptions(cfg Config) (*Subscriptions, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	client, err := armsubscriptions.NewClient(cfg.Credential, cfg.clientOptions())
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Subscriptions{client: client}, nil
}

// ListSubscriptions returns the enabled subscriptions.
func (s *Subscriptions) ListSubscriptions(ctx context.Context) ([]webapp.Subscription, error) {
	var subs []webapp.Subscription
	pager := s.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Annotate(err, "listing subscriptions")
		}
		for _, sub := range page.Value {
			if sub == nil || sub.SubscriptionID == nil {
				continue
			}
			if sub.State != nil && *sub.State != armsubscriptions.SubscriptionStateEnabled {
				logger.Debugf("skipping subscription %s in state %s", *sub.SubscriptionID, *sub.State)
				continue
			}
			subs = append(subs, webapp.Subscription{
				ID:          *sub.SubscriptionID,
				DisplayName: deref(sub.DisplayName),
			})
		}
	}
	return subs, nil
}
