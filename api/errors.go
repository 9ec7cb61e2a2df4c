package api

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"wireless-quote/core/output"
	ierr "wireless-quote/internal/errors"
)

// statusFor maps an error type to an HTTP status. Unknown catalog entries
// and overflowing amounts are well-formed requests the engine cannot price.
func statusFor(err error) int {
	switch ierr.TypeOf(err) {
	case ierr.TypeInvalidRequest, ierr.TypeParsing:
		return http.StatusBadRequest
	case ierr.TypeNotFound, ierr.TypeRoundingOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) ErrorBody {
	body := ErrorBody{Code: string(ierr.TypeOf(err)), Message: err.Error()}
	var e *ierr.Error
	if errors.As(err, &e) {
		body.Message = e.Message
		body.Context = e.Context
	}
	return body
}

func contentType(f output.Format) string {
	switch f {
	case output.FormatHTML:
		return "text/html; charset=utf-8"
	case output.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case output.FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
