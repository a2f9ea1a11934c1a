// Copyright (c) 2025 - for information on the respective copyright owner
// see the NOTICE file and/or the repository at
// https://github.com/push-protocol/push-chain-sdk
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package svmtest provides a fake solana JSON-RPC endpoint for tests.
package svmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Handler returns the result of an rpc call for the given params.
type Handler func(params json.RawMessage) (interface{}, error)

// Server is a JSON-RPC endpoint that answers with registered handlers.
// Calls to methods without a handler fail.
type Server struct {
	*httptest.Server

	mtx      sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	s := &Server{handlers: make(map[string]Handler), calls: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers the handler for the method.
func (s *Server) Handle(method string, h Handler) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.handlers[method] = h
}

// HandleResult registers a handler that always returns result.
func (s *Server) HandleResult(method string, result interface{}) {
	s.Handle(method, func(json.RawMessage) (interface{}, error) { return result, nil })
}

// Calls returns the number of calls to the method.
func (s *Server) Calls(method string) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.calls[method]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mtx.Lock()
	h, ok := s.handlers[req.Method]
	s.calls[req.Method]++
	s.mtx.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, err := h(req.Params); err != nil {
		resp.Error = &rpcError{Code: -32000, Message: err.Error()}
	} else {
		resp.Result = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) // nolint: errcheck
}

// WithContext wraps value in the context envelope used by most solana rpc
// results.
func WithContext(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   value,
	}
}
