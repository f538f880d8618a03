package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
	res "github.com/abhigupta0507/NadiRakshak-Backend/pkg/http"
)

// Codes whose status differs from the default for their kind.
var statusByCode = map[string]int{
	domain.ErrAlreadyExists.Code:      http.StatusBadRequest,
	domain.ErrInvalidCredentials.Code: http.StatusBadRequest,
}

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindDependency:     http.StatusInternalServerError,
	domain.KindInternal:       http.StatusInternalServerError,
}

func statusFor(e *domain.Error) int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders err with the error envelope. Foreign errors never leak their text.
func writeError(c echo.Context, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err).(*domain.Error)
	}
	return res.ErrorJSON(c, statusFor(de), de.Code, de.Message, res.RequestID(c), nil)
}
