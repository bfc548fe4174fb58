// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package subscription_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/subscription"
)

type stubLister struct {
	*testing.Stub
	subs []webapp.Subscription
}

func (l *stubLister) ListSubscriptions(ctx context.Context) ([]webapp.Subscription, error) {
	l.MethodCall(l, "ListSubscriptions")
	return l.subs, l.NextErr()
}

type stubPrompter struct {
	*testing.Stub
	choice int
}

func (p *stubPrompter) SelectSubscription(subs []webapp.Subscription) (webapp.Subscription, error) {
	p.MethodCall(p, "SelectSubscription", subs)
	if err := p.NextErr(); err != nil {
		return webapp.Subscription{}, err
	}
	if p.choice < 0 {
		return webapp.Subscription{}, nil
	}
	return subs[p.choice], nil
}

var (
	subZulu  = webapp.Subscription{ID: "aaaa-1", DisplayName: "Zulu"}
	subAlpha = webapp.Subscription{ID: "bbbb-2", DisplayName: "Alpha"}
	subMike  = webapp.Subscription{ID: "cccc-3", DisplayName: "Mike"}
)

type ResolverSuite struct {
	testing.IsolationSuite
	stub     *testing.Stub
	lister   *stubLister
	prompter *stubPrompter
	resolver *subscription.Resolver
}

var _ = gc.Suite(&ResolverSuite{})

func (s *ResolverSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &testing.Stub{}
	s.lister = &stubLister{Stub: s.stub, subs: []webapp.Subscription{subZulu, subAlpha, subMike}}
	s.prompter = &stubPrompter{Stub: s.stub}
	s.resolver = &subscription.Resolver{Lister: s.lister, Prompter: s.prompter}
}

func (s *ResolverSuite) TestExplicit(c *gc.C) {
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{
		Explicit: "CCCC-3",
		Default:  "aaaa-1",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "cccc-3")
	s.stub.CheckCallNames(c, "ListSubscriptions")
}

func (s *ResolverSuite) TestExplicitNotFound(c *gc.C) {
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{Explicit: "dddd-4"})
	c.Assert(err, gc.ErrorMatches, `subscription "dddd-4" not found in the signed in account \(available: aaaa-1, bbbb-2, cccc-3\)`)
	c.Assert(errors.Is(err, coreerrors.SubscriptionNotFound), jc.IsTrue)
}

func (s *ResolverSuite) TestExplicitNotFoundInEmptyAccount(c *gc.C) {
	s.lister.subs = nil
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{Explicit: "dddd-4"})
	c.Assert(errors.Is(err, coreerrors.SubscriptionNotFound), jc.IsTrue)
}

func (s *ResolverSuite) TestDefault(c *gc.C) {
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{
		Default: "bbbb-2",
		Filter:  []string{"cccc-3"},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "bbbb-2")
}

func (s *ResolverSuite) TestUnknownDefaultNotFound(c *gc.C) {
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{
		Default: "eeee-5",
		Filter:  []string{"cccc-3"},
	})
	c.Assert(err, gc.ErrorMatches, `default subscription "eeee-5" is not available to the signed in account`)
	c.Assert(errors.Is(err, coreerrors.SubscriptionNotFound), jc.IsTrue)
	c.Assert(id, gc.Equals, "")
	s.stub.CheckCallNames(c, "ListSubscriptions")
}

func (s *ResolverSuite) TestFilterSingleMatch(c *gc.C) {
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{
		Filter: []string{"AAAA-1", "ffff-9"},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "aaaa-1")
	s.stub.CheckCallNames(c, "ListSubscriptions")
}

func (s *ResolverSuite) TestFilterSeveralMatchesPrompts(c *gc.C) {
	s.prompter.choice = 1
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{
		Filter: []string{"aaaa-1", "cccc-3"},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "aaaa-1")
	s.stub.CheckCall(c, 1, "SelectSubscription", []webapp.Subscription{subMike, subZulu})
}

func (s *ResolverSuite) TestOnlySubscription(c *gc.C) {
	s.lister.subs = []webapp.Subscription{subMike}
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "cccc-3")
	s.stub.CheckCallNames(c, "ListSubscriptions")
}

func (s *ResolverSuite) TestPromptSortedByDisplayName(c *gc.C) {
	s.prompter.choice = 0
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "bbbb-2")
	s.stub.CheckCall(c, 1, "SelectSubscription", []webapp.Subscription{subAlpha, subMike, subZulu})
}

func (s *ResolverSuite) TestPromptSortsNumbersNaturally(c *gc.C) {
	dev10 := webapp.Subscription{ID: "dddd-4", DisplayName: "dev-10"}
	dev2 := webapp.Subscription{ID: "eeee-5", DisplayName: "dev-2"}
	dev2b := webapp.Subscription{ID: "ffff-6", DisplayName: "dev-2"}
	s.lister.subs = []webapp.Subscription{dev10, dev2, dev2b}
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCall(c, 1, "SelectSubscription", []webapp.Subscription{dev2, dev2b, dev10})
}

func (s *ResolverSuite) TestPromptAborted(c *gc.C) {
	s.stub.SetErrors(nil, errors.New("interrupt"))
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, gc.ErrorMatches, "selecting subscription: interrupt")
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
}

func (s *ResolverSuite) TestPromptNoSelection(c *gc.C) {
	s.prompter.choice = -1
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, gc.ErrorMatches, "no subscription selected")
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
}

func (s *ResolverSuite) TestNoPrompter(c *gc.C) {
	s.resolver.Prompter = nil
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, gc.ErrorMatches, "3 subscriptions are available, set subscriptionId to choose one")
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
}

func (s *ResolverSuite) TestNoSubscriptionsWarns(c *gc.C) {
	s.lister.subs = nil
	id, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(id, gc.Equals, "")
	s.stub.CheckCallNames(c, "ListSubscriptions")
}

func (s *ResolverSuite) TestListError(c *gc.C) {
	s.stub.SetErrors(errors.New("forbidden"))
	_, err := s.resolver.Resolve(context.Background(), subscription.Hints{})
	c.Assert(err, gc.ErrorMatches, "listing subscriptions: forbidden")
}
