// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ib823/benteng-sdk/config"
	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "manage the gateway's signed policy bundle",
}

var (
	policySignerKeyPath string
	policyBundleOutPath string
	policyInputPath     string
	policyNotAfterSecs  int64
)

var policyStageCmd = &cobra.Command{
	Use:   "stage",
	Short: "sign a new policy bundle from a JSON policy list and write it to the bundle file",
	RunE:  runPolicyStage,
}

var policyActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "read the bundle file named in the gateway config and report its version and validity",
	RunE:  runPolicyActivate,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyStageCmd)
	policyCmd.AddCommand(policyActivateCmd)

	policyStageCmd.Flags().StringVar(&policySignerKeyPath, "signer-key", "", "path to the policy signer's ML-DSA-65 private key")
	policyStageCmd.Flags().StringVar(&policyInputPath, "policies", "", "path to a JSON array of policy.Policy records")
	policyStageCmd.Flags().StringVar(&policyBundleOutPath, "out", "", "output path for the signed bundle (defaults to config's policy.bundle_path)")
	policyStageCmd.Flags().Int64Var(&policyNotAfterSecs, "valid-for-secs", 86400, "bundle validity window from now, in seconds")
	policyStageCmd.Flags().StringVarP(&configPath, "config", "c", "gateway.yaml", "path to gateway config file")

	policyActivateCmd.Flags().StringVarP(&configPath, "config", "c", "gateway.yaml", "path to gateway config file")
}

func runPolicyStage(cmd *cobra.Command, args []string) error {
	if policySignerKeyPath == "" || policyInputPath == "" {
		return fmt.Errorf("--signer-key and --policies are required")
	}

	skBytes, err := os.ReadFile(policySignerKeyPath)
	if err != nil {
		return fmt.Errorf("read signer key: %w", err)
	}
	sk, err := sig.ParsePrivateKey(skBytes)
	if err != nil {
		return fmt.Errorf("parse signer key: %w", err)
	}

	raw, err := os.ReadFile(policyInputPath)
	if err != nil {
		return fmt.Errorf("read policy list: %w", err)
	}
	var policies []policy.Policy
	if err := json.Unmarshal(raw, &policies); err != nil {
		return fmt.Errorf("parse policy list: %w", err)
	}

	outPath := policyBundleOutPath
	if outPath == "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("load config to resolve bundle path: %w", err)
		}
		outPath = cfg.Policy.BundlePath
	}
	if outPath == "" {
		return fmt.Errorf("no --out given and config has no policy.bundle_path set")
	}

	nowMs := uint64(time.Now().UnixMilli())
	bundle := policy.SignedPolicyBundle{
		Policies:  policies,
		Version:   nowMs, // monotonic in practice: wall-clock ms strictly increases between stages
		CreatedAt: nowMs,
		NotAfter:  nowMs + uint64(policyNotAfterSecs)*1000,
	}
	signed, err := policy.Sign(bundle, sk)
	if err != nil {
		return fmt.Errorf("sign bundle: %w", err)
	}

	out, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signed bundle: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("write bundle file: %w", err)
	}

	fmt.Printf("Staged policy bundle v%d (%d policies) at %s\n", signed.Version, len(signed.Policies), outPath)
	return nil
}

func runPolicyActivate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Policy.BundlePath == "" {
		return fmt.Errorf("config has no policy.bundle_path set")
	}

	raw, err := os.ReadFile(cfg.Policy.BundlePath)
	if err != nil {
		return fmt.Errorf("read bundle file: %w", err)
	}
	var bundle policy.SignedPolicyBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return fmt.Errorf("parse bundle file: %w", err)
	}

	fmt.Printf("Bundle at %s: version %d, %d policies, valid until epoch_ms=%d\n",
		cfg.Policy.BundlePath, bundle.Version, len(bundle.Policies), bundle.NotAfter)
	fmt.Println("A gateway reads this file when serve starts; this command only reports the file's current contents.")
	return nil
}
