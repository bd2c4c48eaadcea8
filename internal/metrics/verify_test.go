// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	if CryptoOperations == nil {
		t.Error("CryptoOperations metric is nil")
	}
	if KmsDerivations == nil {
		t.Error("KmsDerivations metric is nil")
	}
	if TlogAppends == nil {
		t.Error("TlogAppends metric is nil")
	}
	if WitnessCosignsRequested == nil {
		t.Error("WitnessCosignsRequested metric is nil")
	}
	if RequestsAdmitted == nil {
		t.Error("RequestsAdmitted metric is nil")
	}
}

func TestMetricsIncrement(t *testing.T) {
	CryptoOperations.WithLabelValues("seal", "AES-256-GCM").Inc()
	KmsDerivations.WithLabelValues("success").Inc()
	TlogAppends.WithLabelValues("success").Inc()
	WitnessCosignsRequested.WithLabelValues("witness-1", "success").Inc()
	RequestsAdmitted.WithLabelValues("admitted").Inc()

	if count := testutil.CollectAndCount(CryptoOperations); count == 0 {
		t.Error("CryptoOperations has no metrics collected")
	}
	if count := testutil.CollectAndCount(KmsDerivations); count == 0 {
		t.Error("KmsDerivations has no metrics collected")
	}
}

func TestGaugesSettable(t *testing.T) {
	TlogTreeSize.Set(42)
	KmsCacheSize.Set(7)
	if count := testutil.CollectAndCount(TlogTreeSize); count == 0 {
		t.Error("TlogTreeSize has no metrics collected")
	}
}
