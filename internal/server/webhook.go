package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"replybot/internal/line"
	"replybot/internal/metrics"
)

// errorReply is sent to the user when the reply strategy itself fails.
const errorReply = "Sorry, I encountered an error. Please try again."

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	metrics.WebhookRequests.Inc()
	start := time.Now()
	defer func() {
		metrics.WebhookLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.logger.Error("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if s.verify {
		signature := r.Header.Get(line.SignatureHeader)
		if !line.ValidateSignature(s.channelSecret, body, signature) {
			metrics.SignatureFailures.Inc()
			s.logger.Warn("webhook signature validation failed", "remote", r.RemoteAddr)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
			return
		}
	} else {
		s.logger.Debug("accepting webhook without signature validation", "remote", r.RemoteAddr)
	}

	envelope, err := line.ParseEnvelope(body)
	if err != nil {
		metrics.ParseFailures.Inc()
		s.logger.Error("failed to parse webhook body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	s.dispatch(r.Context(), envelope)

	writeJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

// dispatch processes each event in turn. A bad event is logged and
// skipped so the rest of the batch still gets replies.
func (s *Server) dispatch(ctx context.Context, envelope *line.Envelope) {
	for i, raw := range envelope.Events {
		var event line.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			metrics.EventsSkipped.Inc()
			s.logger.Warn("skipping malformed event", "index", i, "error", err)
			continue
		}
		if event.Type != "message" || event.Message.Type != "text" {
			metrics.EventsSkipped.Inc()
			s.logger.Debug("skipping event", "index", i, "type", event.Type, "message_type", event.Message.Type)
			continue
		}
		if event.ReplyToken == "" || event.Message.Text == "" {
			metrics.EventsSkipped.Inc()
			s.logger.Debug("skipping event without reply token or text", "index", i)
			continue
		}
		s.handleEvent(ctx, &event)
	}
}

func (s *Server) handleEvent(ctx context.Context, event *line.Event) {
	metrics.EventsProcessed.Inc()
	logger := s.logger.With("delivery_id", uuid.NewString())

	logger.Debug("handling message event",
		"user_id", event.Source.UserID,
		"text_len", len(event.Message.Text))

	text, err := s.replier.Reply(ctx, event.Message.Text)
	if err != nil {
		logger.Error("reply strategy failed", "strategy", s.replier.Name(), "error", err)
		text = errorReply
	}

	if err := s.sender.Reply(ctx, event.ReplyToken, text); err != nil {
		metrics.SendFailures.Inc()
		logger.Error("failed to send reply", "error", err)
		return
	}

	logger.Debug("reply sent", "strategy", s.replier.Name(), "reply_len", len(text))
}
