// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "benteng-gatewayd",
	Short: "benteng edge trust gateway - verify and decrypt post-quantum request envelopes",
	Long: `benteng-gatewayd runs the edge trust gateway: it verifies ML-DSA-65
signed, ML-KEM-768 encrypted request envelopes against tenant policy,
records a transparency-log receipt for every decision, and decrypts
payloads through a dual-control KMS that no single key custodian can
bypass.`,
}

func main() {
	// A missing .env is not an error; operators may supply all
	// configuration via the config file or the process environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Subcommands register themselves in their own files:
	// - serve.go: serveCmd
	// - genkeys.go: genKeysCmd
	// - exportaudit.go: exportAuditCmd
	// - policy.go: policyCmd (stage, activate)
}
