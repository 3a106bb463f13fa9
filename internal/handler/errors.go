// Package handler implements the HTTP boundary.  Handlers bind and
// validate the wire shape, enforce ownership, call services, and hand any
// error to the single translator below.
package handler

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/apperr"
)

// kindStatus is the one table mapping error kinds to HTTP status codes.
var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindInvalidInput:     http.StatusBadRequest,
	apperr.KindBookingConflict:  http.StatusConflict,
	apperr.KindInvalidOperation: http.StatusConflict,
	apperr.KindConflict:         http.StatusConflict,
	apperr.KindGatewayFailure:   http.StatusPaymentRequired,
	apperr.KindAmountMismatch:   http.StatusUnprocessableEntity,
	apperr.KindForbidden:        http.StatusForbidden,
	apperr.KindUnauthorized:     http.StatusUnauthorized,
}

// respondError translates an application error into an HTTP response.
// Client errors surface their precise message; internals surface an opaque
// message plus a correlation id that is also written to the server log, so
// support can find the real error without the client ever seeing it.
func respondError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if status, ok := kindStatus[kind]; ok && kind != apperr.KindInternal {
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	correlationID := uuid.New()
	log.Printf("http: internal error [%s] %s %s: %v",
		correlationID, c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error":          "internal server error",
		"correlation_id": correlationID,
	})
}

// pathID parses the named path parameter as a UUID.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.InvalidInput("invalid %s", name)
	}
	return id, nil
}
