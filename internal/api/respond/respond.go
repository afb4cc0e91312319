// Package respond writes the JSON envelope shared by all API endpoints.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wb-go/wbf/zlog"
)

// Envelope is the body of every API response.
type Envelope struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, Envelope{Result: v})
}

func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, Envelope{Result: v})
}

func Fail(w http.ResponseWriter, status int, err error) {
	JSON(w, status, Envelope{Error: err.Error()})
}
