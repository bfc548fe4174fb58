// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package webapp

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// PricingTier is an App Service plan SKU.
type PricingTier struct {
	// Tier is the SKU tier, e.g. "Basic", "PremiumV2".
	Tier string
	// Size is the SKU name, e.g. "B1", "P1v2".
	Size string
}

// DefaultPricingTier is used to create a plan when none is configured.
var DefaultPricingTier = PricingTier{Tier: "PremiumV2", Size: "P1v2"}

var knownTiers = map[string]string{
	"F1":   "Free",
	"D1":   "Shared",
	"B1":   "Basic",
	"B2":   "Basic",
	"B3":   "Basic",
	"S1":   "Standard",
	"S2":   "Standard",
	"S3":   "Standard",
	"P1V2": "PremiumV2",
	"P2V2": "PremiumV2",
	"P3V2": "PremiumV2",
	"P0V3": "PremiumV3",
	"P1V3": "PremiumV3",
	"P2V3": "PremiumV3",
	"P3V3": "PremiumV3",
}

// ParsePricingTier parses a SKU name such as "B1", "s1" or "P1V2".
func ParsePricingTier(s string) (PricingTier, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	tier, ok := knownTiers[name]
	if !ok {
		return PricingTier{}, errors.NotValidf("pricing tier %q", s)
	}
	if i := strings.LastIndex(name, "V"); i > 0 {
		name = name[:i] + "v" + name[i+1:]
	}
	return PricingTier{Tier: tier, Size: name}, nil
}

// IsZero reports whether no tier is set.
func (p PricingTier) IsZero() bool {
	return p.Size == ""
}

// Equal compares SKU names case-insensitively.
func (p PricingTier) Equal(other PricingTier) bool {
	return strings.EqualFold(p.Size, other.Size)
}

func (p PricingTier) String() string {
	return p.Size
}

// Plan is an App Service plan: the compute a web app runs on.
type Plan struct {
	ID            string
	Name          string
	ResourceGroup string
	Region        string
	PricingTier   PricingTier
	OS            OperatingSystem
}

// ResourceGroup is an Azure resource group.
type ResourceGroup struct {
	Name   string
	Region string
}

// Subscription is an Azure subscription visible to the signed in account.
type Subscription struct {
	ID          string
	DisplayName string
}

func (s Subscription) String() string {
	return fmt.Sprintf("%s (%s)", s.DisplayName, s.ID)
}
