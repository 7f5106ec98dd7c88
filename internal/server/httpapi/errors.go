package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// envelope shapes an error body. Audio routes answer {"error": ...}, auth
// routes {"message": ...}.
type envelope func(msg string) gin.H

func errorBody(msg string) gin.H { return gin.H{"error": msg} }

func messageBody(msg string) gin.H { return gin.H{"message": msg} }

func registerBody(msg string) gin.H { return gin.H{"success": false, "message": msg} }

func statusFor(err error) int {
	kind := err
	var pe *common.PublicError
	if errors.As(err, &pe) {
		kind = pe.Kind
	}

	switch {
	case errors.Is(kind, common.ErrValidation),
		errors.Is(kind, common.ErrAlreadyExists),
		errors.Is(kind, common.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(kind, common.ErrInvalidToken),
		errors.Is(kind, common.ErrTokenExpired),
		errors.Is(kind, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(kind, common.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and a client-safe message. Details of
// server errors only go to the log.
func (a *API) writeError(c *gin.Context, err error, body envelope) {
	status := statusFor(err)

	msg := http.StatusText(status)
	var pe *common.PublicError
	if errors.As(err, &pe) {
		msg = pe.Msg
	} else if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}

	if status >= http.StatusInternalServerError {
		a.log.Error(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)
	}

	c.AbortWithStatusJSON(status, body(msg))
}

// bindingError turns a gin binding failure into a validation error with a
// readable message.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewPublicError(common.ErrValidation, "Invalid request body", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, jsonFieldName(e.Field())+" "+describe(e))
	}
	return common.NewPublicError(common.ErrValidation, strings.Join(msgs, "; "), nil)
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "is invalid"
	}
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
