package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"dressing-virtuel/logging"
	"dressing-virtuel/repository"
	"dressing-virtuel/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorResponse is the JSON body of every error answer
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("❌ Error encoding response")
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, handler string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("handler", handler).Msg("❌ Request failed")
	} else {
		logging.Warn().Err(err).Str("handler", handler).Int("status", status).Msg("⚠️  Request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingSeasonOrTemperature),
		errors.Is(err, service.ErrInvalidTemperature),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrAnchorConflict),
		errors.Is(err, service.ErrPathOutsideTmpDir):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoMatchingClothes),
		errors.Is(err, service.ErrNoMatchFound),
		errors.Is(err, service.ErrAnchorNotFound),
		errors.Is(err, repository.ErrGarmentNotFound),
		errors.Is(err, repository.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrReferenceFaceMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTaxonomyUnavailable),
		errors.Is(err, service.ErrWeatherUnavailable),
		errors.Is(err, service.ErrDriveUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage flattens validator errors into one line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fe.Field()+" must satisfy "+fe.Tag()+"="+fe.Param())
		} else {
			parts = append(parts, fe.Field()+" is "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}
