// SPDX-License-Identifier: LGPL-3.0-or-later

package gateway

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"
)

// Server is the gateway's minimal HTTP surface: GET /health, POST
// /pqc/verify, POST /pqc/decrypt. CORS, TLS termination, and request
// logging are left to the embedding process, per spec.
type Server struct {
	Orchestrator *Orchestrator
	Version      string
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /pqc/verify", s.handleVerify)
	mux.HandleFunc("POST /pqc/decrypt", s.handleDecrypt)
	return mux
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Version:   s.Version,
		Timestamp: time.Now().UnixMilli(),
	})
}

type verifyResponse struct {
	Decision  string   `json:"decision"`
	Reason    string   `json:"reason,omitempty"`
	Claims    *Claims  `json:"claims,omitempty"`
	KID       string   `json:"kid,omitempty"`
	Receipt   *Receipt `json:"receipt,omitempty"`
	RequestID string   `json:"request_id"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Decision: "REJECTED", Reason: "Invalid envelope format"})
		return
	}

	clientIP := remoteIP(r)
	d := s.Orchestrator.Verify(r.Context(), body, clientIP, uint64(time.Now().UnixMilli()))
	writeDecision(w, d)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Decision: "REJECTED", Reason: "Invalid envelope format"})
		return
	}

	clientIP := remoteIP(r)
	// Plaintext is consumed in-process and never serialized into the HTTP
	// response, per spec: decrypt only returns decision and receipt.
	d := s.Orchestrator.Decrypt(r.Context(), body, clientIP, uint64(time.Now().UnixMilli()), nil)
	writeDecision(w, d)
}

func writeDecision(w http.ResponseWriter, d Decision) {
	status := http.StatusOK
	if d.Decision != "OK" {
		status = statusForReason(d.Reason)
	}
	writeJSON(w, status, verifyResponse{
		Decision:  d.Decision,
		Reason:    d.Reason,
		Claims:    d.Claims,
		KID:       d.KID,
		Receipt:   d.Receipt,
		RequestID: d.RequestID,
	})
}

// statusForReason maps the fixed external reason strings back to the HTTP
// status the spec requires for each; this mirrors gwerr's Kind->status
// table without exposing Kind values (already erased by this point) to
// the transport layer.
func statusForReason(reason string) int {
	switch reason {
	case "Replay detected":
		return http.StatusConflict
	case "Rate limit exceeded":
		return http.StatusTooManyRequests
	case "Internal error":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
