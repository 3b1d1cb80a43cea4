package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"safety-training-service/internal/app"
	"safety-training-service/internal/domain"
	"safety-training-service/internal/logger"
)

// ProgressionSource supplies the authenticated user's progression snapshot.
// Identity resolution itself happens upstream; the handler only consumes
// the resolved record.
type ProgressionSource interface {
	UserProgression(ctx context.Context, userID string) (domain.UserProgression, error)
}

// WSHandler runs one quiz attempt per websocket connection. The connection
// owns the session, which keeps the single-session-per-user discipline: all
// navigation and answer messages arrive on one read loop.
type WSHandler struct {
	service  *app.AssessmentService
	users    ProgressionSource
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, users ProgressionSource, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		users:   users,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Answer string `json:"answer"`
}

// questionView is the client-facing projection of the current question.
// Correct flags are never sent to the client.
type questionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Answered int      `json:"answered"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Selected string   `json:"selected,omitempty"`
	Complete bool     `json:"complete"`
}

type resultView struct {
	Score             int                   `json:"score"`
	Total             int                   `json:"total"`
	Percentage        int                   `json:"percentage"`
	Passed            bool                  `json:"passed"`
	PointsEarned      int                   `json:"pointsEarned"`
	Points            int                   `json:"points"`
	Level             int                   `json:"level"`
	LeveledUp         bool                  `json:"leveledUp"`
	CertificateNumber string                `json:"certificateNumber,omitempty"`
	Unlocked          []string              `json:"unlocked,omitempty"`
	Trail             []domain.AnswerReview `json:"trail"`
	Saved             bool                  `json:"saved"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives one attempt over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	userID := r.URL.Query().Get("userId")
	if courseID == "" || userID == "" {
		http.Error(w, "missing courseId or userId", http.StatusBadRequest)
		return
	}

	user, err := h.users.UserProgression(r.Context(), userID)
	if err != nil {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartAttempt(r.Context(), courseID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	h.sendQuestion(conn, session)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			// Abandoned attempt: drop the in-memory session, nothing persists.
			return
		}

		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid select payload")
				continue
			}
			if err := session.SelectAnswer(payload.Answer); err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.sendQuestion(conn, session)
		case "next":
			session.Advance()
			h.sendQuestion(conn, session)
		case "prev":
			session.Retreat()
			h.sendQuestion(conn, session)
		case "submit":
			outcome, err := h.service.CompleteAttempt(r.Context(), user, courseID, session)
			if err != nil {
				if errors.Is(err, domain.ErrIncompleteAttempt) {
					h.sendError(conn, "answer every question before submitting")
				} else {
					h.sendError(conn, err.Error())
				}
				continue
			}
			if outcome.SaveErr != nil {
				h.log.Error("attempt persisted partially", "user_id", userID, "course_id", courseID, "error", outcome.SaveErr)
			}
			h.sendResult(conn, outcome)
			return
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, session *app.AttemptSession) {
	q := session.Current()
	options := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, opt.Text)
	}
	selected, _ := session.Answer()
	view := questionView{
		Index:    session.Index(),
		Total:    len(session.Questions()),
		Answered: session.Answered(),
		Prompt:   q.Text,
		Options:  options,
		Selected: selected,
		Complete: session.IsComplete(),
	}
	if err := conn.WriteJSON(outboundMessage[questionView]{Type: "question", Payload: view}); err != nil {
		h.log.Warn("ws write error", "error", err)
	}
}

func (h *WSHandler) sendResult(conn *websocket.Conn, outcome app.SubmitOutcome) {
	view := resultView{
		Score:        outcome.Result.Score,
		Total:        outcome.Result.Total,
		Percentage:   outcome.Result.Percentage,
		Passed:       outcome.Result.Passed,
		PointsEarned: outcome.PointsEarned,
		Points:       outcome.Progression.Points,
		Level:        outcome.Progression.Level,
		LeveledUp:    outcome.LeveledUp,
		Trail:        outcome.Result.Trail,
		Saved:        outcome.SaveErr == nil,
	}
	if outcome.Certificate != nil {
		view.CertificateNumber = outcome.Certificate.Number
	}
	for _, a := range outcome.Unlocked {
		view.Unlocked = append(view.Unlocked, a.Name)
	}
	if err := conn.WriteJSON(outboundMessage[resultView]{Type: "result", Payload: view}); err != nil {
		h.log.Warn("ws write error", "error", err)
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}}); err != nil {
		h.log.Warn("ws write error", "error", err)
	}
}
