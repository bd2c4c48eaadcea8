// SPDX-License-Identifier: LGPL-3.0-or-later

package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib823/benteng-sdk/envelope"
)

func TestHealthEndpoint(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t)
	srv := &Server{Orchestrator: o, Version: "test-1"}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test-1", resp.Version)
}

func TestVerifyEndpointAcceptsValidEnvelope(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)
	srv := &Server{Orchestrator: o, Version: "test-1"}

	e, err := envelope.Seal([]byte("payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/pqc/verify", bytes.NewReader(envelope.Encode(e)))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp verifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Decision)
	assert.NotNil(t, resp.Receipt)
}

func TestVerifyEndpointRejectsGarbageBody(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t)
	srv := &Server{Orchestrator: o, Version: "test-1"}

	req := httptest.NewRequest(http.MethodPost, "/pqc/verify", bytes.NewReader([]byte{0xFF, 0xFF, 0xFF}))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp verifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REJECTED", resp.Decision)
}

func TestDecryptEndpointNeverReturnsPlaintext(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)
	srv := &Server{Orchestrator: o, Version: "test-1"}

	e, err := envelope.Seal([]byte("top secret"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)
	approveQuorum(t, o.KMS, e)

	req := httptest.NewRequest(http.MethodPost, "/pqc/decrypt", bytes.NewReader(envelope.Encode(e)))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "top secret")
}
