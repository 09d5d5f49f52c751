package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// ErrorResponse is the JSON body written for failed requests
type ErrorResponse struct {
	Success bool `json:"success"`
	APIError
}

// UnmarshalJSON decodes the envelope flag next to the embedded error body
func (r *ErrorResponse) UnmarshalJSON(data []byte) error {
	var head struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if err := r.APIError.UnmarshalJSON(data); err != nil {
		return err
	}
	r.Success = head.Success
	return nil
}

// WriteJSON writes err as a standardized error response. Non-operational
// errors are logged to log and answered with a generic message.
func WriteJSON(ctx context.Context, log *logger.Logger, w http.ResponseWriter, err error) {
	body := CreateAPIError(err, MsgInternal)

	appErr, ok := AsAppError(err)
	if !ok || !appErr.IsOperational() {
		log.Error(ctx, "Unhandled error", logger.ComponentNames.Handler, logger.Metadata{
			"statusCode": body.StatusCode,
		}, err)
		body = APIError{
			Error:      MsgInternal,
			Message:    MsgInternal,
			StatusCode: body.StatusCode,
			Timestamp:  body.Timestamp,
			Type:       body.Type,
		}
	} else {
		log.Debug(ctx, "API Error", logger.ComponentNames.Handler, logger.Metadata{
			"statusCode": body.StatusCode,
			"errorType":  string(body.Type),
			"message":    body.Message,
		})
	}

	writeBody(ctx, log, w, body.StatusCode, ErrorResponse{Success: false, APIError: body})
}

// WriteStatus writes a plain error envelope with the given status and message
func WriteStatus(ctx context.Context, log *logger.Logger, w http.ResponseWriter, statusCode int, message string) {
	writeBody(ctx, log, w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

func writeBody(ctx context.Context, log *logger.Logger, w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error(ctx, "Error marshaling error response", logger.ComponentNames.Handler, nil, err)
	}
}
