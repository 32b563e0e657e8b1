// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jeranaias/ptutor-tui/internal/logging"
	"github.com/jeranaias/ptutor-tui/internal/validate"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	errTutorNotFound  = echo.NewHTTPError(http.StatusNotFound, "Tutor not found")
	errModuleNotFound = echo.NewHTTPError(http.StatusNotFound, "Module not found")
	errThreadNotFound = echo.NewHTTPError(http.StatusNotFound, "Thread not found")
	errNoCredit       = echo.NewHTTPError(http.StatusPaymentRequired, "Insufficient credits")
	errEmailTaken     = echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
)

// identityError is an auth emulator failure, written in Firebase's
// {"error": {"code", "message"}} shape.
type identityError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *identityError) Error() string { return e.Message }

var (
	errEmailExists     = &identityError{http.StatusBadRequest, "EMAIL_EXISTS"}
	errEmailNotFound   = &identityError{http.StatusBadRequest, "EMAIL_NOT_FOUND"}
	errInvalidPassword = &identityError{http.StatusBadRequest, "INVALID_PASSWORD"}
	errInvalidEmail    = &identityError{http.StatusBadRequest, "INVALID_EMAIL"}
	errWeakPassword    = &identityError{http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters"}
	errInvalidIDToken  = &identityError{http.StatusBadRequest, "INVALID_ID_TOKEN"}
	errInvalidRefresh  = &identityError{http.StatusBadRequest, "INVALID_REFRESH_TOKEN"}
	errMissingRefresh  = &identityError{http.StatusBadRequest, "MISSING_REFRESH_TOKEN"}
	errGrantType       = &identityError{http.StatusBadRequest, "INVALID_GRANT_TYPE"}
	errInvalidAPIKey   = &identityError{http.StatusBadRequest, "API key not valid. Please pass a valid API key."}
	errUnknownOp       = &identityError{http.StatusNotFound, "NOT_FOUND"}
)

// fieldDetail is one entry of a request validation failure.
type fieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// newHTTPErrorHandler writes every error as {"detail": ...}. Validation
// failures become a list of field details with status 422.
func newHTTPErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		var body interface{}

		switch origErr := errors.Cause(err).(type) {
		case *identityError:
			code = origErr.Code
			body = echo.Map{"error": origErr}
		case *echo.HTTPError:
			code = origErr.Code
			body = echo.Map{"detail": origErr.Message}
		case validate.FieldErrors:
			fields := make([]string, 0, len(origErr))
			for f := range origErr {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			details := make([]fieldDetail, len(fields))
			for i, f := range fields {
				details[i] = fieldDetail{Loc: []string{"body", f}, Msg: origErr[f], Type: "value_error"}
			}
			code = http.StatusUnprocessableEntity
			body = echo.Map{"detail": details}
		default:
			code = http.StatusInternalServerError
			msg := http.StatusText(code)
			body = echo.Map{"detail": msg}
			logger.Error(msg, errors.Wrap(err, ctx.Request().URL.Path))
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			logger.Error("failed to write error response", err)
		}
	}
}
