package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	ownErrors "chess_portal/internal/errors"
)

type Response[T any] struct {
	Status int `json:"Status"`
	Body   any `json:"Body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"ErrorDescription"`
}

const INTERNALERRORJSON = "{\"status\": 500,\"body\":{\"error\": \"Internal server error\"}}"

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	_, err = w.Write(jsonByte)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	marshal, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	return marshal, nil
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// implementation similar to http.Error, only difference is the Content-type
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(500)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}

// WriteError maps the shared sentinel errors onto HTTP statuses so every
// handler answers the same way for the same failure.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ownErrors.ErrEmptyMoveList),
		errors.Is(err, ownErrors.ErrInvalidMove),
		errors.Is(err, ownErrors.ErrNotPGN),
		errors.Is(err, ownErrors.ErrInvalidWeek):
		WriteResponseWithStatus(w, http.StatusBadRequest, ErrorResponse{ErrorDescription: err.Error()})
	case errors.Is(err, ownErrors.ErrGameNotFound),
		errors.Is(err, ownErrors.ErrAnalysisNotFound):
		WriteResponseWithStatus(w, http.StatusNotFound, ErrorResponse{ErrorDescription: err.Error()})
	case errors.Is(err, ownErrors.ErrEngineTimeout):
		WriteResponseWithStatus(w, http.StatusGatewayTimeout, ErrorResponse{ErrorDescription: err.Error()})
	case errors.Is(err, ownErrors.ErrAnalyzerClosed):
		WriteResponseWithStatus(w, http.StatusServiceUnavailable, ErrorResponse{ErrorDescription: err.Error()})
	default:
		WriteInternalErrorResponse(w)
	}
}
