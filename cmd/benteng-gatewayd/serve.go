// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ib823/benteng-sdk/admission"
	"github.com/ib823/benteng-sdk/config"
	"github.com/ib823/benteng-sdk/crypto/kem"
	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/gateway"
	"github.com/ib823/benteng-sdk/internal/logger"
	"github.com/ib823/benteng-sdk/internal/metrics"
	"github.com/ib823/benteng-sdk/kms"
	"github.com/ib823/benteng-sdk/policy"
	"github.com/ib823/benteng-sdk/tlog"
)

var (
	configPath    string
	serverKemPath string
	clientKeysDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the edge trust gateway HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "gateway.yaml", "path to gateway config file")
	serveCmd.Flags().StringVar(&serverKemPath, "server-kem-key", "", "path to the server's ML-KEM-768 private key (HSM-A's decapsulation key)")
	serveCmd.Flags().StringVar(&clientKeysDir, "client-keys-dir", "", "directory of registered client ML-DSA-65 public keys")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}

	log := logger.NewLogger(os.Stdout, parseLevel(cfg.Logging.Level))
	log.Info("starting benteng-gatewayd", logger.String("environment", cfg.Environment), logger.String("listen_addr", cfg.Gateway.ListenAddr))

	if serverKemPath == "" {
		return fmt.Errorf("--server-kem-key is required")
	}
	kemSKBytes, err := os.ReadFile(serverKemPath)
	if err != nil {
		return fmt.Errorf("read server kem key: %w", err)
	}
	kemSK, err := kem.ParsePrivateKey(kemSKBytes)
	if err != nil {
		return fmt.Errorf("parse server kem key: %w", err)
	}

	hsmA := kms.NewInProcessHsmA()
	hsmA.RegisterKey(kms.HsmKID([]byte("default"), []byte("default")), kemSK)

	var quorumStore kms.QuorumStore = kms.NewMemoryQuorumStore()
	dualKms := kms.New(cfg.Kms, hsmA, quorumStore)

	policies := policy.NewDistributor()
	if cfg.Policy.BundlePath != "" {
		if err := loadPolicyBundle(policies, cfg); err != nil {
			log.Warn("failed to load policy bundle at startup; using conservative defaults", logger.Err(err))
		}
	}

	var keyResolver gateway.ClientKeyResolver
	if clientKeysDir != "" {
		fr, err := gateway.NewFileKeyResolver(clientKeysDir)
		if err != nil {
			return fmt.Errorf("load client keys: %w", err)
		}
		keyResolver = fr
	} else {
		fr, _ := gateway.NewFileKeyResolver(os.TempDir())
		keyResolver = fr
	}

	orch := &gateway.Orchestrator{
		Policies:    policies,
		KMS:         dualKms,
		Log:         tlog.New(),
		Replay:      admission.NewReplayCache(time.Duration(cfg.Replay.TTLSecs) * time.Second),
		RateLimiter: admission.NewRateLimiter(cfg.RateLimit.CapacityTokens, cfg.RateLimit.RefillPerSecond),
		ClientKeys:  keyResolver,
	}

	srv := &gateway.Server{Orchestrator: orch, Version: "dev"}

	if cfg.Metrics.Enabled {
		go func() {
			log.Info("starting metrics server", logger.String("addr", cfg.Metrics.ListenAddr))
			if err := metrics.StartServer(cfg.Metrics.ListenAddr); err != nil {
				log.Error("metrics server stopped", logger.Err(err))
			}
		}()
	}

	log.Info("gateway HTTP server listening", logger.String("addr", cfg.Gateway.ListenAddr))
	return http.ListenAndServe(cfg.Gateway.ListenAddr, srv.Mux())
}

// loadPolicyBundle reads the signed bundle file, verifies it against the
// configured signer public key, stages it, and immediately activates it.
// runServe calls it once at startup; the file is not reloaded while the
// gateway runs.
func loadPolicyBundle(d *policy.Distributor, cfg *config.Config) error {
	if cfg.Policy.SignerPublicKeyPath == "" {
		return fmt.Errorf("policy.signer_public_key_path not set")
	}
	pkBytes, err := os.ReadFile(cfg.Policy.SignerPublicKeyPath)
	if err != nil {
		return fmt.Errorf("read policy signer public key: %w", err)
	}
	signerPK, err := sig.ParsePublicKey(pkBytes)
	if err != nil {
		return fmt.Errorf("parse policy signer public key: %w", err)
	}

	raw, err := os.ReadFile(cfg.Policy.BundlePath)
	if err != nil {
		return fmt.Errorf("read policy bundle: %w", err)
	}
	var bundle policy.SignedPolicyBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return fmt.Errorf("parse policy bundle: %w", err)
	}

	nowMs := uint64(time.Now().UnixMilli())
	if err := d.Stage(bundle, signerPK, nowMs); err != nil {
		return fmt.Errorf("stage policy bundle: %w", err)
	}
	d.Activate()
	return nil
}

func parseLevel(level string) logger.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logger.DebugLevel
	case "WARN":
		return logger.WarnLevel
	case "ERROR":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
