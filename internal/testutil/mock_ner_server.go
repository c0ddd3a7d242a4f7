// Package testutil provides shared helpers for exercising Veil against a
// fake NER backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/veildata/veil/internal/ner"
)

// NewNERServer starts an httptest.Server that mimics a Hugging Face
// token-classification endpoint: POST {"inputs": text} answered with the
// canned spans for that text. Unknown inputs get an empty span list.
// Span offsets follow the wire protocol, so they are character indices
// (the same as byte indices for ASCII inputs); the http provider converts
// them on receipt. Caller must call server.Close() or register
// t.Cleanup(server.Close).
func NewNERServer(spans map[string][]ner.RawSpan) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Inputs string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		result := spans[req.Inputs]
		if result == nil {
			result = []ner.RawSpan{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
}

// NewFailingNERServer starts an httptest.Server that always answers 503,
// for exercising run-abort behavior.
func NewFailingNERServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
}
