package handlers

import (
	"errors"
	"net/http"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/pricing"
)

// statusFor сопоставляет вид ошибки с HTTP статусом
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindOutOfRange:
		return http.StatusUnprocessableEntity
	case apperror.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	status := statusFor(err)

	switch status {
	case http.StatusBadRequest:
		resp := ErrorResponse{Error: http.StatusText(status), Message: err.Error()}
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			resp.Fields = make(map[string]string, len(verr.Fields))
			for field, msg := range verr.Messages() {
				resp.Fields[string(field)] = msg
			}
		}
		writeJSONResponse(w, status, resp)
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		writeErrorResponse(w, status, err.Error())
	case http.StatusBadGateway:
		if log != nil {
			log.WithError(err).Warn("Venue data unavailable")
		}
		writeErrorResponse(w, status, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, status, internalMessage)
	}
}
