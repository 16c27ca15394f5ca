package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type fieldBody struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type errorBody struct {
	Error  string      `json:"error"`
	Fields []fieldBody `json:"fields,omitempty"`
}

// statusFor maps session-layer errors to HTTP statuses and client-safe bodies.
func statusFor(err error) (int, errorBody) {
	var rejected *identity.RejectedError
	var verrs services.ValidationErrors

	switch {
	case errors.Is(err, services.ErrMissingCredential):
		return http.StatusBadRequest, errorBody{Error: "missing credential"}
	case errors.Is(err, identity.ErrUnreachable):
		return http.StatusServiceUnavailable, errorBody{Error: "identity provider unreachable"}
	case errors.As(err, &rejected):
		return http.StatusUnauthorized, errorBody{Error: rejected.Error()}
	case errors.As(err, &verrs):
		body := errorBody{Error: "invalid profile"}
		for _, fe := range verrs {
			body.Fields = append(body.Fields, fieldBody{Field: fe.Field, Rule: fe.Rule})
		}
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, services.ErrAccountDisabled):
		return http.StatusForbidden, errorBody{Error: "account disabled"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}
