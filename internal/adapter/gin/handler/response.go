package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "usuarios-api/pkg/errors"
)

const msgInvalidJSON = "invalid JSON payload"

// Response is the envelope every /usuarios endpoint answers with.
type Response struct {
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Error         any    `json:"error,omitempty"`
	TotalUsuarios *int64 `json:"totalUsuarios,omitempty"`
	TotalPaginas  *int64 `json:"totalPaginas,omitempty"`
	PaginaActual  *int64 `json:"paginaActual,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Fail writes an unsuccessful envelope. errValue is either a message or a list of messages.
func Fail(c *gin.Context, status int, errValue any) {
	c.JSON(status, Response{Success: false, Error: errValue})
}

// statusFor maps a usecase error to its HTTP status and the value of the envelope's error field.
func statusFor(err error) (int, any) {
	var (
		validationErr *pkgerrors.ValidationError
		existsErr     *pkgerrors.AlreadyExistsError
		badRequestErr *pkgerrors.BadRequestError
		notFoundErr   *pkgerrors.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Messages
	case errors.As(err, &existsErr):
		return http.StatusBadRequest, existsErr.Error()
	case errors.As(err, &badRequestErr):
		return http.StatusBadRequest, badRequestErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// decodeError turns a JSON body decoding failure into the list reported to the client.
// An empty body is not an error: it decodes as an empty object.
func decodeError(err error) []string {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []string{fmt.Sprintf("field '%s' has an invalid type", typeErr.Field)}
	}
	return []string{msgInvalidJSON}
}
