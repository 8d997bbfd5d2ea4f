package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	kindNotFound   = "not_found"
	kindValidation = "validation"
	kindConflict   = "conflict"
	kindInternal   = "internal"
)

type errorResponse struct {
	Message  string              `json:"message"`
	Error    string              `json:"error"`
	Details  []domain.FieldError `json:"details,omitempty"`
	OrderIDs []string            `json:"orderIds,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		requestLogger(r, logrus.StandardLogger()).WithError(err).Debug("failed to write response")
	}
}

// statusFor maps the error taxonomy onto HTTP. Conflicts are reported as 400.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, kindNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, kindValidation
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, kindConflict
	}
	return http.StatusInternalServerError, kindInternal
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	body := errorResponse{Message: err.Error(), Error: kind}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Message = "validation failed"
		body.Details = verr.Fields
	}
	var inUse *domain.DishInUseError
	if errors.As(err, &inUse) {
		body.Message = fmt.Sprintf("dish %d is used by unfinished orders", inUse.DishID)
		body.OrderIDs = inUse.OrderIDs
	}

	log := requestLogger(r, h.logger())
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		if h.Production {
			body.Message = "internal server error"
		}
	} else {
		log.WithError(err).WithField("status", status).Debug("request rejected")
	}
	writeJSON(w, r, status, body)
}

func badJSON(err error) error {
	return fmt.Errorf("invalid JSON body: %v: %w", err, domain.ErrValidation)
}
