package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/authjwt"
)

// Response is the JSON envelope written for every API response.
type Response struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"errorCode,omitempty"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

// ErrorResponse builds the envelope for err, classified with authjwt.KindOf.
func ErrorResponse(err error) Response {
	kind := authjwt.KindOf(err)
	if kind == authjwt.KindNone {
		kind = authjwt.KindInternalError
	}
	return Response{
		Code:      kind.Status(),
		ErrorCode: kind.Code(),
		Message:   kind.Message(),
	}
}

// WriteError writes the error envelope for err. Internal error text is never
// sent to the client.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse(err)
	writeEnvelope(w, resp.Code, resp)
}

// WriteProblem writes an error envelope for failures that are not engine
// errors, such as a malformed request body.
func WriteProblem(w http.ResponseWriter, status int, errorCode, message string) {
	writeEnvelope(w, status, Response{
		Code:      status,
		ErrorCode: errorCode,
		Message:   message,
	})
}

// WriteJSON writes a success envelope carrying data.
func WriteJSON(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, Response{
		Code:    status,
		Message: message,
		Data:    data,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
