// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package subscription picks the one subscription a deployment runs in.
package subscription

import (
	"context"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/naturalsort"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

var logger = loggo.GetLogger("webappdeploy.subscription")

// Lister lists the subscriptions visible to the signed in account.
type Lister interface {
	ListSubscriptions(ctx context.Context) ([]webapp.Subscription, error)
}

// Prompter asks the user to pick one subscription.
type Prompter interface {
	SelectSubscription(subs []webapp.Subscription) (webapp.Subscription, error)
}

// Hints carry what is known about the wanted subscription before the
// account is consulted.
type Hints struct {
	// Explicit is the configured subscription id.
	Explicit string
	// Default is the default subscription of the credential source.
	Default string
	// Filter restricts the candidates to these ids.
	Filter []string
}

// Resolver picks a subscription id.
type Resolver struct {
	Lister Lister
	// Prompter is nil when no user can be asked.
	Prompter Prompter
}

// rule picks a subscription, or returns false to defer to the next
// rule.
type rule struct {
	name  string
	apply func(r *Resolver, hints Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error)
}

var rules = []rule{
	{"configured", explicitRule},
	{"default", defaultRule},
	{"filter", filterRule},
	{"only", onlyRule},
	{"prompt", promptRule},
}

// Resolve returns the subscription id to deploy into. An account with
// no subscriptions yields an empty id and a warning; the first
// operation that needs a subscription fails.
func (r *Resolver) Resolve(ctx context.Context, hints Hints) (string, error) {
	subs, err := r.Lister.ListSubscriptions(ctx)
	if err != nil {
		return "", errors.Annotate(err, "listing subscriptions")
	}
	if len(subs) == 0 && hints.Explicit == "" {
		logger.Warningf("no subscriptions found for the signed in account")
		return "", nil
	}
	for _, rule := range rules {
		sub, ok, err := rule.apply(r, hints, subs)
		if err != nil {
			return "", errors.Trace(err)
		}
		if ok {
			logger.Debugf("subscription chosen by %s rule", rule.name)
			logger.Infof("Subscription: %s", sub)
			return sub.ID, nil
		}
	}
	return "", coreerrors.Configurationf("no subscription selected")
}

func find(subs []webapp.Subscription, id string) (webapp.Subscription, bool) {
	for _, sub := range subs {
		if strings.EqualFold(sub.ID, id) {
			return sub, true
		}
	}
	return webapp.Subscription{}, false
}

func explicitRule(_ *Resolver, hints Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error) {
	if hints.Explicit == "" {
		return webapp.Subscription{}, false, nil
	}
	sub, ok := find(subs, hints.Explicit)
	if !ok {
		var ids []string
		for _, sub := range subs {
			ids = append(ids, sub.ID)
		}
		return webapp.Subscription{}, false, errors.WithType(
			errors.Errorf("subscription %q not found in the signed in account (available: %s)",
				hints.Explicit, strings.Join(ids, ", ")),
			coreerrors.SubscriptionNotFound,
		)
	}
	return sub, true, nil
}

func defaultRule(_ *Resolver, hints Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error) {
	if hints.Default == "" {
		return webapp.Subscription{}, false, nil
	}
	sub, ok := find(subs, hints.Default)
	if !ok {
		return webapp.Subscription{}, false, errors.WithType(
			errors.Errorf("default subscription %q is not available to the signed in account", hints.Default),
			coreerrors.SubscriptionNotFound,
		)
	}
	return sub, true, nil
}

// filtered returns the subscriptions in the filter, in account order, or
// all of them when there is no filter or it matches nothing.
func filtered(hints Hints, subs []webapp.Subscription) []webapp.Subscription {
	wanted := set.NewStrings()
	for _, id := range hints.Filter {
		wanted.Add(strings.ToLower(id))
	}
	var result []webapp.Subscription
	for _, sub := range subs {
		if wanted.Contains(strings.ToLower(sub.ID)) {
			result = append(result, sub)
		}
	}
	if len(result) == 0 {
		return subs
	}
	return result
}

// byDisplayName orders subscriptions by display name, with numbers in
// names compared numerically. Subscriptions sharing a name keep their
// relative order.
func byDisplayName(subs []webapp.Subscription) []webapp.Subscription {
	groups := make(map[string][]webapp.Subscription)
	names := set.NewStrings()
	for _, sub := range subs {
		groups[sub.DisplayName] = append(groups[sub.DisplayName], sub)
		names.Add(sub.DisplayName)
	}
	result := make([]webapp.Subscription, 0, len(subs))
	for _, name := range naturalsort.Sort(names.Values()) {
		result = append(result, groups[name]...)
	}
	return result
}

func filterRule(_ *Resolver, hints Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error) {
	if len(hints.Filter) == 0 {
		return webapp.Subscription{}, false, nil
	}
	candidates := filtered(hints, subs)
	if len(candidates) == 1 {
		return candidates[0], true, nil
	}
	return webapp.Subscription{}, false, nil
}

func onlyRule(_ *Resolver, _ Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error) {
	if len(subs) == 1 {
		return subs[0], true, nil
	}
	return webapp.Subscription{}, false, nil
}

func promptRule(r *Resolver, hints Hints, subs []webapp.Subscription) (webapp.Subscription, bool, error) {
	candidates := byDisplayName(filtered(hints, subs))
	if r.Prompter == nil {
		return webapp.Subscription{}, false, coreerrors.Configurationf(
			"%d subscriptions are available, set subscriptionId to choose one", len(candidates))
	}
	sub, err := r.Prompter.SelectSubscription(candidates)
	if err != nil {
		return webapp.Subscription{}, false, errors.WithType(
			errors.Annotate(err, "selecting subscription"), coreerrors.ConfigurationError)
	}
	if sub.ID == "" {
		return webapp.Subscription{}, false, coreerrors.Configurationf("no subscription selected")
	}
	return sub, true, nil
}
