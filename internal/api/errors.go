package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodySize caps request bodies at 1 MB. Exposure reports and invite
// requests are tiny; anything bigger is garbage.
const maxBodySize = 1 << 20

// errorEnvelope is the error body shape shared by every endpoint:
// {"error":{"code":...,"message":...}}.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, truncating at maxBodySize so an
// oversized payload fails the decode instead of being read to completion.
func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}
