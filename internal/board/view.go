package board

import (
	"context"
	"fmt"

	"activity-board/internal/domain"
)

// ParticipantRow is one rendered participant. The tokens are the
// percent-encoded activity name and email carried by the removal control.
type ParticipantRow struct {
	Email         string
	ActivityToken string
	EmailToken    string
}

// Card is one rendered activity.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []ParticipantRow
}

// Availability is the spots-left line shown on the card.
func (c Card) Availability() string {
	return fmt.Sprintf("%d spots left", c.SpotsLeft)
}

// HasParticipants reports whether the card lists anyone.
func (c Card) HasParticipants() bool {
	return len(c.Participants) > 0
}

// Option is one entry of the activity selection control.
type Option struct {
	Value string
	Label string
}

// View holds the board's render targets. Render calls replace whatever
// the target showed before.
type View interface {
	// RenderCards replaces the list area with cards.
	RenderCards(cards []Card)
	// RenderLoadFailure replaces the list area with a failure text.
	RenderLoadFailure(text string)
	// RenderOptions replaces the selection control's options.
	RenderOptions(options []Option)
	// ResetForm clears the signup form fields.
	ResetForm()
}

// Messages shows transient status messages for one page.
type Messages interface {
	Show(ctx context.Context, text string, kind domain.MessageKind) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}
