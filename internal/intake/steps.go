// Package intake drives the customer conversation: a fixed sequence of
// form steps collected over a finite-state machine, ending in a media
// step that hands the draft to the order service.
package intake

import (
	"intakebot/core/telegram/state"
	"intakebot/internal/i18n"
)

// Conversation steps, in form order. StepMedia is terminal: it accepts
// attachments or the skip token and then submits the draft.
const (
	StepName        state.State = "intake_name"
	StepPhone       state.State = "intake_phone"
	StepAddress     state.State = "intake_address"
	StepDescription state.State = "intake_description"
	StepMedia       state.State = "intake_media"
)

// Draft accumulates the form answers of one user. Answers are stored
// verbatim; no format validation is applied to phone or address.
type Draft struct {
	Locale      i18n.Locale
	Name        string
	Phone       string
	Address     string
	Description string
}

// Advance records the user's answer for the current text step and
// returns the next step together with its localized prompt. It returns
// ok=false when the step does not collect free text (the media step,
// or an unknown state).
func Advance(d *Draft, current state.State, text string) (next state.State, prompt string, ok bool) {
	msgs := i18n.Get(d.Locale)
	switch current {
	case StepName:
		d.Name = text
		return StepPhone, msgs.Phone, true
	case StepPhone:
		d.Phone = text
		return StepAddress, msgs.Address, true
	case StepAddress:
		d.Address = text
		return StepDescription, msgs.Description, true
	case StepDescription:
		d.Description = text
		return StepMedia, msgs.Media, true
	}
	return current, "", false
}
