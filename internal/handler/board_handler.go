package handler

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"activity-board/internal/board"
	"activity-board/internal/domain"
	"activity-board/internal/service"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"
)

// SessionCookieName identifies a browser's board page
const SessionCookieName = "board_session"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	boardTemplate   = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/board.html"))
	confirmTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/confirm.html"))
)

// BoardHandler serves the activity board to browsers
type BoardHandler struct {
	activities    service.ActivitiesAPI
	messages      service.MessageService
	pages         *PageStore
	logger        *logger.Logger
	metrics       *metrics.Collector
	secureCookies bool
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(activities service.ActivitiesAPI, messages service.MessageService, pages *PageStore, logger *logger.Logger, collector *metrics.Collector, secureCookies bool) *BoardHandler {
	return &BoardHandler{
		activities:    activities,
		messages:      messages,
		pages:         pages,
		logger:        logger,
		metrics:       collector,
		secureCookies: secureCookies,
	}
}

// boardPage is the data behind templates/board.html
type boardPage struct {
	Page           board.PageData
	Message        *domain.StatusMessage
	HideAfterMS    int64
	NoParticipants string
}

// confirmPage is the data behind templates/confirm.html
type confirmPage struct {
	Prompt        string
	ActivityToken string
	EmailToken    string
}

// sessionMessages binds the message service to one browser session
type sessionMessages struct {
	svc       service.MessageService
	sessionID string
}

func (m sessionMessages) Show(ctx context.Context, text string, kind domain.MessageKind) error {
	_, err := m.svc.Show(ctx, m.sessionID, text, kind)
	return err
}

// Index handles GET /, the page load
func (h *BoardHandler) Index(w http.ResponseWriter, r *http.Request) {
	sessionID, page, b := h.open(w, r)
	b.Init(r.Context())
	h.renderBoard(w, r, sessionID, page, http.StatusOK)
}

// Signup handles POST /signup
func (h *BoardHandler) Signup(w http.ResponseWriter, r *http.Request) {
	sessionID, page, b := h.open(w, r)
	if err := r.ParseForm(); err != nil {
		h.logger.WithError(err).Warn("Invalid signup form")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := board.Form{
		Activity: r.PostFormValue("activity"),
		Email:    r.PostFormValue("email"),
	}
	h.restore(r, page, b)
	page.SetForm(form)

	result := b.SubmitSignup(r.Context(), form.Activity, form.Email)
	h.logger.WithFields(map[string]interface{}{
		"activity":  form.Activity,
		"requested": result.Requested,
		"kind":      result.Kind,
	}).Debug("Signup handled")

	h.renderBoard(w, r, sessionID, page, http.StatusOK)
}

// ConfirmRemoval handles GET /participants/confirm
func (h *BoardHandler) ConfirmRemoval(w http.ResponseWriter, r *http.Request) {
	sessionID, page, b := h.open(w, r)
	activityToken := r.URL.Query().Get("activity")
	emailToken := r.URL.Query().Get("email")

	prompt, err := b.ConfirmationPrompt(activityToken, emailToken)
	if err != nil {
		h.logger.WithError(err).Warn("Malformed removal control")
		h.restore(r, page, b)
		b.ShowMessage(r.Context(), board.RemoveFailureText, domain.MessageError)
		h.renderBoard(w, r, sessionID, page, http.StatusBadRequest)
		return
	}

	h.render(w, confirmTemplate, http.StatusOK, confirmPage{
		Prompt:        prompt,
		ActivityToken: activityToken,
		EmailToken:    emailToken,
	})
}

// RemoveParticipant handles POST /participants/remove
func (h *BoardHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, page, b := h.open(w, r)
	if err := r.ParseForm(); err != nil {
		h.logger.WithError(err).Warn("Invalid removal form")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	h.restore(r, page, b)
	confirmed := r.PostFormValue("confirm") == "yes"
	result := b.RemoveParticipant(r.Context(), r.PostFormValue("activity"), r.PostFormValue("email"),
		board.ConfirmFunc(func(string) bool { return confirmed }))

	h.logger.WithFields(map[string]interface{}{
		"confirmed": confirmed,
		"requested": result.Requested,
		"kind":      result.Kind,
	}).Debug("Removal handled")

	h.renderBoard(w, r, sessionID, page, http.StatusOK)
}

// RegisterRoutes registers board routes with the router
func (h *BoardHandler) RegisterRoutes(r chi.Router) {
	static, _ := fs.Sub(staticFS, "static")

	r.Get("/", h.Index)
	r.Post("/signup", h.Signup)
	r.Route("/participants", func(r chi.Router) {
		r.Get("/confirm", h.ConfirmRemoval)
		r.Post("/remove", h.RemoveParticipant)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
}

// open resolves the browser session and builds a board bound to its page
func (h *BoardHandler) open(w http.ResponseWriter, r *http.Request) (string, *board.Page, *board.Board) {
	sessionID := h.session(w, r)
	page := h.pages.Get(sessionID)
	b := board.New(h.activities, page, sessionMessages{svc: h.messages, sessionID: sessionID}, h.logger, h.metrics)
	return sessionID, page, b
}

// restore fetches the catalog for a page that has never rendered, which
// happens when a session outlives its page (idle sweep or restart).
func (h *BoardHandler) restore(r *http.Request, page *board.Page, b *board.Board) {
	if page.Snapshot().Loaded {
		return
	}
	h.logger.Debug("Page missing for session, reloading catalog")
	b.RefreshCatalog(r.Context())
}

// session returns the browser's session ID, issuing a cookie when missing
func (h *BoardHandler) session(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *BoardHandler) renderBoard(w http.ResponseWriter, r *http.Request, sessionID string, page *board.Page, status int) {
	data := boardPage{
		Page:           page.Snapshot(),
		NoParticipants: board.NoParticipantsText,
	}

	msg, err := h.messages.Current(r.Context(), sessionID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load status message")
	}
	if msg != nil {
		data.Message = msg
		data.HideAfterMS = time.Until(msg.ExpiresAt).Milliseconds()
		if data.HideAfterMS < 0 {
			data.HideAfterMS = 0
		}
	}

	h.render(w, boardTemplate, status, data)
}

// render executes into a buffer first so a template failure never leaves
// a half-written page
func (h *BoardHandler) render(w http.ResponseWriter, tmpl *template.Template, status int, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.WithError(err).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WithError(err).Debug("Failed to write page")
	}
}
