package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/middleware"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// MaxLogBatch caps the entries accepted by one POST /api/logs
const MaxLogBatch = 100

// LogsAccepted is the data answered by POST /api/logs
type LogsAccepted struct {
	Received int `json:"received"`
	Stored   int `json:"stored"`
}

// IngestLogs stores log entries shipped by a client logger. The body is one
// entry or an array of them.
// @Summary      Ship client logs
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        request  body      []logger.LogEntry  true  "Entries"
// @Success      202      {object}  types.Envelope[handlers.LogsAccepted]
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/logs [post]
func (h *APIHandlers) IngestLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	var entries []logger.LogEntry
	var err error
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &entries)
	} else {
		var entry logger.LogEntry
		err = json.Unmarshal(raw, &entry)
		entries = []logger.LogEntry{entry}
	}
	if err != nil {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewValidationError(MsgInvalidBody, []apperrors.FieldError{{Field: "body", Message: err.Error()}}, 0))
		return
	}
	if len(entries) > MaxLogBatch {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewValidationError("", []apperrors.FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("Cannot have more than %d entries", MaxLogBatch),
		}}, 0))
		return
	}

	ua, ip := r.Header.Get(utils.HeaderUserAgent), middleware.ClientIP(r)
	stored := 0
	for _, entry := range entries {
		if entry.Timestamp == "" {
			entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
		}
		if entry.UserAgent == "" {
			entry.UserAgent = ua
		}
		if entry.IP == "" {
			entry.IP = ip
		}
		if err := h.Logs.Send(ctx, entry); err != nil {
			h.log.Error(ctx, "Failed to store client log", logger.ComponentNames.Handler, logger.Metadata{
				"sessionId": entry.SessionID,
			}, err)
			continue
		}
		stored++
	}

	if stored == 0 && len(entries) > 0 {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.New("Failed to store logs", http.StatusInternalServerError, true, nil))
		return
	}
	writeJSON(w, http.StatusAccepted, types.OK(LogsAccepted{Received: len(entries), Stored: stored}, ""))
}
