package board

import (
	"context"
	"fmt"
	"strings"

	"activity-board/internal/domain"
	"activity-board/internal/service"
	"activity-board/pkg/errors"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"
)

// Fixed texts shown by the board.
const (
	LoadFailureText       = "Failed to load activities. Please try again later."
	NoParticipantsText    = "No participants yet"
	SelectPlaceholder     = "-- Select an activity --"
	SignupFallbackText    = "An error occurred"
	SignupFailureText     = "Failed to sign up. Please try again."
	SignupIncompleteText  = "Please select an activity and enter an email."
	RemoveFailureText     = "Failed to remove participant"
	removalPromptTemplate = "Unregister %s from %s?"
)

// Result describes what a user action ended with.
type Result struct {
	// Requested is false when no API call was made, for example after a
	// declined confirmation.
	Requested bool
	// Kind and Text are the status message shown, if any.
	Kind domain.MessageKind
	Text string
	// Refreshed is true when a catalog fetch followed, whatever its result.
	Refreshed bool
}

// Board is the activity board client for one page. It owns references to
// the page's render targets and is not shared between pages.
type Board struct {
	api      service.ActivitiesAPI
	view     View
	messages Messages
	logger   *logger.Logger
	metrics  *metrics.Collector
}

// New creates a board rendering into view. collector may be nil.
func New(api service.ActivitiesAPI, view View, messages Messages, logger *logger.Logger, collector *metrics.Collector) *Board {
	return &Board{
		api:      api,
		view:     view,
		messages: messages,
		logger:   logger,
		metrics:  collector,
	}
}

// Init runs the page-load refresh.
func (b *Board) Init(ctx context.Context) bool {
	return b.RefreshCatalog(ctx)
}

// RefreshCatalog fetches the catalog and rebuilds the list and the
// selection control from scratch. On failure the list shows
// LoadFailureText and the selection control is left alone.
func (b *Board) RefreshCatalog(ctx context.Context) bool {
	catalog, err := b.api.ListActivities(ctx)
	if err != nil {
		b.logger.WithError(err).Error("Error fetching activities")
		b.view.RenderLoadFailure(LoadFailureText)
		b.metrics.IncRender("failed")
		return false
	}

	cards := make([]Card, 0, catalog.Len())
	options := make([]Option, 0, catalog.Len()+1)
	options = append(options, Option{Value: "", Label: SelectPlaceholder})

	for _, activity := range catalog.All() {
		cards = append(cards, newCard(activity))
		options = append(options, Option{Value: activity.Name, Label: activity.Name})
	}

	b.view.RenderCards(cards)
	b.view.RenderOptions(options)
	b.metrics.IncRender("rendered")
	return true
}

func newCard(a domain.Activity) Card {
	card := Card{
		Name:        a.Name,
		Description: a.Description,
		Schedule:    a.Schedule,
		SpotsLeft:   a.SpotsLeft(),
	}
	activityToken := service.EncodeComponent(a.Name)
	for _, email := range a.Participants {
		card.Participants = append(card.Participants, ParticipantRow{
			Email:         email,
			ActivityToken: activityToken,
			EmailToken:    service.EncodeComponent(email),
		})
	}
	return card
}

// SubmitSignup registers email for activityName. The form is reset and the
// catalog refreshed only when the API accepts the signup.
func (b *Board) SubmitSignup(ctx context.Context, activityName, email string) Result {
	if strings.TrimSpace(activityName) == "" || strings.TrimSpace(email) == "" {
		return b.fail(ctx, SignupIncompleteText, false)
	}

	message, err := b.api.Signup(ctx, activityName, email)
	if err != nil {
		b.logger.WithFields(map[string]interface{}{
			"activity": activityName,
		}).WithError(err).Warn("Error signing up")
		return b.fail(ctx, failureText(err, SignupFallbackText, SignupFailureText), true)
	}

	b.ShowMessage(ctx, message, domain.MessageSuccess)
	b.view.ResetForm()
	b.RefreshCatalog(ctx)
	return Result{Requested: true, Kind: domain.MessageSuccess, Text: message, Refreshed: true}
}

// ConfirmationPrompt decodes a removal control's tokens into the question
// put to the user.
func (b *Board) ConfirmationPrompt(activityToken, emailToken string) (string, error) {
	activityName, email, err := decodeTokens(activityToken, emailToken)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(removalPromptTemplate, email, activityName), nil
}

// RemoveParticipant removes the participant named by a rendered row's
// tokens. Nothing happens unless confirmer approves.
func (b *Board) RemoveParticipant(ctx context.Context, activityToken, emailToken string, confirmer Confirmer) Result {
	activityName, email, err := decodeTokens(activityToken, emailToken)
	if err != nil {
		b.logger.WithError(err).Warn("Malformed removal control")
		return b.fail(ctx, RemoveFailureText, false)
	}

	if confirmer == nil || !confirmer.Confirm(fmt.Sprintf(removalPromptTemplate, email, activityName)) {
		return Result{}
	}

	message, err := b.api.Unregister(ctx, activityName, email)
	if err != nil {
		b.logger.WithFields(map[string]interface{}{
			"activity": activityName,
		}).WithError(err).Warn("Error removing participant")
		return b.fail(ctx, failureText(err, RemoveFailureText, RemoveFailureText), true)
	}

	b.ShowMessage(ctx, message, domain.MessageSuccess)
	b.RefreshCatalog(ctx)
	return Result{Requested: true, Kind: domain.MessageSuccess, Text: message, Refreshed: true}
}

// ShowMessage replaces the current status message. A message that cannot
// be stored is logged and dropped.
func (b *Board) ShowMessage(ctx context.Context, text string, kind domain.MessageKind) {
	if err := b.messages.Show(ctx, text, kind); err != nil {
		b.logger.WithFields(map[string]interface{}{
			"kind": kind,
		}).WithError(err).Error("Failed to show status message")
	}
}

func (b *Board) fail(ctx context.Context, text string, requested bool) Result {
	b.ShowMessage(ctx, text, domain.MessageError)
	return Result{Requested: requested, Kind: domain.MessageError, Text: text}
}

// failureText picks the server's detail for a rejected request, fallback
// when the rejection carried none, and transport for everything else.
func failureText(err error, fallback, transport string) string {
	appErr, ok := errors.As(err)
	if !ok || appErr.Type != errors.ErrorTypeUpstream {
		return transport
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

func decodeTokens(activityToken, emailToken string) (string, string, error) {
	activityName, err := service.DecodeComponent(activityToken)
	if err != nil {
		return "", "", err
	}
	email, err := service.DecodeComponent(emailToken)
	if err != nil {
		return "", "", err
	}
	return activityName, email, nil
}
