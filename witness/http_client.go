// SPDX-License-Identifier: LGPL-3.0-or-later

package witness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// HTTPClient is the concrete witness transport: a plain JSON-over-HTTP
// RPC, treated at the design level as an opaque signed-response call.
type HTTPClient struct {
	id       string
	endpoint string
	hc       *http.Client
}

func NewHTTPClient(id, endpoint string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{id: id, endpoint: endpoint, hc: hc}
}

func (w *HTTPClient) ID() string { return w.id }

type cosignRequest struct {
	TreeSize uint64 `json:"tree_size"`
	RootHash string `json:"root_hash_hex"`
}

type cosignResponse struct {
	WitnessID string `json:"witness_id"`
	TreeSize  uint64 `json:"tree_size"`
	RootHash  string `json:"root_hash_hex"`
	Timestamp uint64 `json:"timestamp"`
	Signature string `json:"signature_hex"`
}

func (w *HTTPClient) Cosign(ctx context.Context, treeSize uint64, rootHash [32]byte) (Cosignature, error) {
	reqBody, err := json.Marshal(cosignRequest{
		TreeSize: treeSize,
		RootHash: hexEncode(rootHash[:]),
	})
	if err != nil {
		return Cosignature{}, gwerr.Wrap(gwerr.InternalError, "witness request encoding failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Cosignature{}, gwerr.Wrap(gwerr.InternalError, "witness request construction failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.hc.Do(req)
	if err != nil {
		return Cosignature{}, gwerr.Wrap(gwerr.InternalError, "witness request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Cosignature{}, gwerr.New(gwerr.InternalError, fmt.Sprintf("witness returned status %d", resp.StatusCode))
	}

	var out cosignResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Cosignature{}, gwerr.Wrap(gwerr.InternalError, "witness response decoding failed", err)
	}

	rootBytes, err := hexDecode(out.RootHash)
	if err != nil || len(rootBytes) != 32 {
		return Cosignature{}, gwerr.New(gwerr.InvalidSignature, "witness returned malformed root hash")
	}
	sigBytes, err := hexDecode(out.Signature)
	if err != nil {
		return Cosignature{}, gwerr.New(gwerr.InvalidSignature, "witness returned malformed signature")
	}

	var root [32]byte
	copy(root[:], rootBytes)

	return Cosignature{
		WitnessID: out.WitnessID,
		TreeSize:  out.TreeSize,
		RootHash:  root,
		Timestamp: out.Timestamp,
		Signature: sigBytes,
	}, nil
}
