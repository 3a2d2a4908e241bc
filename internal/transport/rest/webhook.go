package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/finbrain/finbrain/internal/domain"
	"github.com/finbrain/finbrain/internal/router"
	"github.com/finbrain/finbrain/pkg/ctxutil"
)

// messageRouter routes one inbound message to a reply decision.
type messageRouter interface {
	Route(ctx context.Context, msg router.Message) domain.RouteDecision
}

// WebhookHandler serves the Messenger webhook: the GET verification
// handshake and POSTed message events.
type WebhookHandler struct {
	router      messageRouter
	verifyToken string
	log         *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(log *slog.Logger, r messageRouter, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		router:      r,
		verifyToken: verifyToken,
		log:         log,
	}
}

// webhookEvent mirrors the Messenger webhook payload shape. Fields the
// router does not need are omitted.
type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

// replyItem is one outbound reply in the webhook response body.
type replyItem struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Intent      string `json:"intent"`
	Text        string `json:"text"`
}

// Verify handles the GET subscription handshake. Echoes hub.challenge when
// the verify token matches, 403 otherwise.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge"))) //nolint:errcheck
		return
	}
	h.log.WarnContext(r.Context(), "webhook verification rejected",
		slog.String("hub_mode", q.Get("hub.mode")))
	http.Error(w, "verification failed", http.StatusForbidden)
}

// Receive handles POSTed webhook events. All text messages in the batch are
// routed; events without text (delivery receipts, reactions) and echoes of
// the page's own replies are skipped.
// The platform retries non-200 responses, so routing failures still return
// 200: persistence is idempotent and a redelivery is harmless.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.log.WarnContext(r.Context(), "malformed webhook payload", slog.Any("error", err))
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if event.Object != "page" {
		http.Error(w, "unsupported webhook object", http.StatusNotFound)
		return
	}

	var replies []replyItem
	for _, entry := range event.Entry {
		for _, m := range entry.Messaging {
			if m.Message.IsEcho || m.Message.Text == "" || m.Sender.ID == "" {
				continue
			}

			decision := h.router.Route(r.Context(), router.Message{
				UserID:    m.Sender.ID,
				Text:      m.Message.Text,
				MessageID: m.Message.MID,
				RequestID: ctxutil.RequestIDFromCtx(r.Context()),
			})

			replies = append(replies, replyItem{
				RecipientID: m.Sender.ID,
				MessageID:   m.Message.MID,
				Intent:      string(decision.Intent),
				Text:        decision.Reply,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"replies": replies})
}
