// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package subscription

import (
	"github.com/juju/errors"
	survey "gopkg.in/AlecAivazis/survey.v1"
	surveycore "gopkg.in/AlecAivazis/survey.v1/core"

	"github.com/juju/webappdeploy/core/webapp"
)

const maxPageSize = 15

// SurveyPrompter asks on the terminal.
type SurveyPrompter struct{}

// SelectSubscription is part of the Prompter interface.
func (SurveyPrompter) SelectSubscription(subs []webapp.Subscription) (webapp.Subscription, error) {
	surveycore.DisableColor = true
	options := make([]string, len(subs))
	byOption := make(map[string]webapp.Subscription, len(subs))
	for i, sub := range subs {
		options[i] = sub.String()
		byOption[options[i]] = sub
	}
	pageSize := len(options)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	var option string
	if err := survey.AskOne(&survey.Select{
		Message:  "Please choose a subscription:",
		Options:  options,
		PageSize: pageSize,
	}, &option, nil); err != nil {
		return webapp.Subscription{}, errors.Trace(err)
	}
	return byOption[option], nil
}
