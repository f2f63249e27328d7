package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"hubhook/internal/channel"
	"hubhook/internal/eventlog"
	"hubhook/internal/metrics"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	MaxPayloadBytes = 2 << 20 // 2 MiB

	// Handshake query parameters
	ParamMode        = "hub.mode"
	ParamVerifyToken = "hub.verify_token"
	ParamChallenge   = "hub.challenge"

	ModeSubscribe = "subscribe"
)

// HandleVerify answers the subscription handshake for c
func (s *Server) HandleVerify(c channel.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		mode := query.Get(ParamMode)
		token := query.Get(ParamVerifyToken)

		if err := s.checkHandshake(mode, token); err != nil {
			s.Logger.Warn("verification_rejected",
				"request_id", middleware.GetReqID(r.Context()),
				"channel", c,
				"mode", mode,
				"token_present", token != "")
			s.Metrics.Verifications.WithLabelValues(c.String(), metrics.ResultRejected).Inc()
			w.WriteHeader(StatusFor(err))
			return
		}

		s.Logger.Info("verification_accepted",
			"request_id", middleware.GetReqID(r.Context()),
			"channel", c)
		s.Metrics.Verifications.WithLabelValues(c.String(), metrics.ResultAccepted).Inc()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, query.Get(ParamChallenge))
	}
}

func (s *Server) checkHandshake(mode, token string) error {
	if mode != ModeSubscribe {
		return fmt.Errorf("%w: unexpected mode", ErrValidationFailure)
	}
	if s.VerifyToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.VerifyToken)) != 1 {
		return fmt.Errorf("%w: verify token mismatch", ErrValidationFailure)
	}
	return nil
}

// HandleEvent accepts a webhook delivery for c and appends it to the log
func (s *Server) HandleEvent(c channel.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())

		// ContentLength can be -1 if not set; MaxBytesReader covers that case
		if r.ContentLength > MaxPayloadBytes {
			s.rejectEvent(w, c, reqID, ErrPayloadTooLarge)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.rejectEvent(w, c, reqID, ErrPayloadTooLarge)
				return
			}
			s.rejectEvent(w, c, reqID, fmt.Errorf("%w: read body: %v", ErrMalformedPayload, err))
			return
		}

		if err := s.checkSignature(r, c, reqID, body); err != nil {
			s.rejectEvent(w, c, reqID, err)
			return
		}

		// Compact keeps the stored body byte-stable across store drivers
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, body); err != nil {
			s.rejectEvent(w, c, reqID, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
			return
		}

		record := eventlog.NewRecord(c, compacted.Bytes(), s.Now())
		if err := s.Store.Append(r.Context(), record); err != nil {
			s.Logger.Error("Failed to append event", "error", err, "channel", c, "request_id", reqID)
			s.rejectEvent(w, c, reqID, fmt.Errorf("%w: %v", ErrInternal, err))
			return
		}

		s.Logger.Info("event_accepted",
			"request_id", reqID,
			"channel", c,
			"event_id", record.ID,
			"bytes", len(record.Body))
		s.Metrics.Events.WithLabelValues(c.String(), metrics.ResultAccepted).Inc()
		s.Metrics.EventBytesTotal.Add(float64(len(record.Body)))

		s.respondText(w, http.StatusOK)
	}
}

// checkSignature validates the delivery signature. With enforcement off the
// outcome is only logged.
func (s *Server) checkSignature(r *http.Request, c channel.Channel, reqID string, body []byte) error {
	err := VerifySignature(body, SignatureFromRequest(r), s.appSecret)

	if !s.EnforceSignature {
		s.Logger.Warn("signature_not_enforced",
			"request_id", reqID,
			"channel", c,
			"signature_valid", err == nil)
		s.Metrics.SignatureChecks.WithLabelValues(c.String(), metrics.ResultSkipped).Inc()
		return nil
	}

	if err != nil {
		if errors.Is(err, ErrSecretMissing) {
			s.Logger.Error("Signature enforced but no app secret configured", "channel", c, "request_id", reqID)
		}
		s.Metrics.SignatureChecks.WithLabelValues(c.String(), metrics.ResultInvalid).Inc()
		return err
	}

	s.Metrics.SignatureChecks.WithLabelValues(c.String(), metrics.ResultValid).Inc()
	return nil
}

func (s *Server) rejectEvent(w http.ResponseWriter, c channel.Channel, reqID string, err error) {
	status := StatusFor(err)

	result := metrics.ResultRejected
	if status >= http.StatusInternalServerError {
		result = metrics.ResultError
	}
	s.Metrics.Events.WithLabelValues(c.String(), result).Inc()

	s.Logger.Warn("event_rejected",
		"request_id", reqID,
		"channel", c,
		"status", status,
		"error", err)

	s.respondText(w, status)
}

// HandleIndex dumps the event log, newest first
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("Failed to list events", "error", err)
		s.respondText(w, http.StatusInternalServerError)
		return
	}

	s.respondJSON(w, http.StatusOK, records)
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.Store.Count(r.Context())
	if err != nil {
		s.Logger.Error("Failed to count events", "error", err)
		s.respondText(w, http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":             "ok",
		"channels":           channel.Names(s.Registry.List()),
		"event_count":        count,
		"signature_enforced": s.EnforceSignature,
	}

	s.respondJSON(w, http.StatusOK, response)
}

// HandleNotFound handles unmatched routes and unsupported methods
func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondText(w, http.StatusNotFound)
}

// respondJSON sends an indented JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		s.Logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondText sends the status text as a plain-text body
func (s *Server) respondText(w http.ResponseWriter, statusCode int) {
	text := http.StatusText(statusCode)
	if statusCode == http.StatusNotFound {
		text = "Not found"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = io.WriteString(w, text)
}
