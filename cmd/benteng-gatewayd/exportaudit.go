// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ib823/benteng-sdk/audit"
	"github.com/ib823/benteng-sdk/policy"
)

var (
	auditCheckpointsPath string
	auditWitnessSigsPath string
	auditPolicyBundle    string
	auditKeyCatalogPath  string
	auditOutPath         string
	auditVersion         string
)

var exportAuditCmd = &cobra.Command{
	Use:   "export-audit",
	Short: "build a sealed, deterministic audit pack from pre-collected JSON snapshots",
	Long: `export-audit reads the transparency log's checkpoints, witness
cosignatures, the active policy bundle, and the key catalog from JSON
files (each produced by the running gateway or by an operator script) and
seals them into a single deterministic ZIP, per spec §9's audit pack
format. It never attaches to a live gateway process.`,
	RunE: runExportAudit,
}

func init() {
	rootCmd.AddCommand(exportAuditCmd)
	exportAuditCmd.Flags().StringVar(&auditCheckpointsPath, "checkpoints", "", "path to a JSON array of audit.CheckpointRecord")
	exportAuditCmd.Flags().StringVar(&auditWitnessSigsPath, "witness-signatures", "", "path to a JSON array of witness cosignatures")
	exportAuditCmd.Flags().StringVar(&auditPolicyBundle, "policy-bundle", "", "path to the signed policy bundle JSON")
	exportAuditCmd.Flags().StringVar(&auditKeyCatalogPath, "key-catalog", "", "path to a JSON array of audit.KeyCatalogEntry")
	exportAuditCmd.Flags().StringVarP(&auditOutPath, "out", "o", "audit-pack.zip", "output ZIP path")
	exportAuditCmd.Flags().StringVar(&auditVersion, "version", "dev", "gateway version string stamped into METADATA.json")
}

func runExportAudit(cmd *cobra.Command, args []string) error {
	var sources audit.Sources
	sources.Version = auditVersion
	sources.SBOM = audit.SBOM{
		BomFormat:   "CycloneDX",
		SpecVersion: "1.5",
		Version:     1,
		Components: []audit.SBOMComponent{
			{Type: "application", Name: "benteng-gatewayd", Version: auditVersion, PURL: "pkg:golang/github.com/ib823/benteng-sdk"},
		},
	}

	if auditCheckpointsPath != "" {
		if err := readJSONFile(auditCheckpointsPath, &sources.Checkpoints); err != nil {
			return fmt.Errorf("read checkpoints: %w", err)
		}
	}
	if auditWitnessSigsPath != "" {
		if err := readJSONFile(auditWitnessSigsPath, &sources.WitnessSignatures); err != nil {
			return fmt.Errorf("read witness signatures: %w", err)
		}
	}
	if auditKeyCatalogPath != "" {
		if err := readJSONFile(auditKeyCatalogPath, &sources.KeyCatalog); err != nil {
			return fmt.Errorf("read key catalog: %w", err)
		}
	}
	if auditPolicyBundle != "" {
		var bundle struct {
			Policies []policy.Policy `json:"policies"`
		}
		if err := readJSONFile(auditPolicyBundle, &bundle); err != nil {
			return fmt.Errorf("parse policy bundle: %w", err)
		}
		sources.PolicySnapshots = audit.CollectPolicySnapshots(bundle.Policies)
	}

	zipBytes, err := audit.Build(sources)
	if err != nil {
		return fmt.Errorf("build audit pack: %w", err)
	}
	if err := os.WriteFile(auditOutPath, zipBytes, 0644); err != nil {
		return fmt.Errorf("write audit pack: %w", err)
	}

	fmt.Printf("Wrote audit pack to %s (%d bytes)\n", auditOutPath, len(zipBytes))
	return nil
}

func readJSONFile(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
