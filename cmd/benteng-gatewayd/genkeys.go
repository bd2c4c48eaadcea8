// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ib823/benteng-sdk/crypto/kem"
	"github.com/ib823/benteng-sdk/crypto/sig"
)

var (
	genKeysOutDir string
	genKeysKind   string
)

var genKeysCmd = &cobra.Command{
	Use:   "gen-keys",
	Short: "generate a fresh key pair for server signing, server KEM, or a policy signer",
	Long: `Generates a fresh key pair and writes <type>.priv/<type>.pub to the
output directory: sig.priv/sig.pub (ML-DSA-65) for --type sig, or
kem.priv/kem.pub (ML-KEM-768) for --type kem.`,
	RunE: runGenKeys,
}

func init() {
	rootCmd.AddCommand(genKeysCmd)
	genKeysCmd.Flags().StringVarP(&genKeysOutDir, "out", "o", ".", "output directory")
	genKeysCmd.Flags().StringVarP(&genKeysKind, "type", "t", "sig", "key type: sig (ML-DSA-65) or kem (ML-KEM-768)")
}

func runGenKeys(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(genKeysOutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	switch genKeysKind {
	case "sig":
		pk, sk, err := sig.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("generate signature key pair: %w", err)
		}
		return writeKeyPair(pk, sk)
	case "kem":
		pk, sk, err := kem.GenerateKeyPair()
		if err != nil {
			return fmt.Errorf("generate kem key pair: %w", err)
		}
		return writeKeyPair(pk, sk)
	default:
		return fmt.Errorf("unsupported key type: %s (want sig or kem)", genKeysKind)
	}
}

type marshaler interface{ Marshal() ([]byte, error) }

func writeKeyPair(pk, sk marshaler) error {
	pkBytes, err := pk.Marshal()
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	skBytes, err := sk.Marshal()
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}

	pubPath := filepath.Join(genKeysOutDir, genKeysKind+".pub")
	privPath := filepath.Join(genKeysOutDir, genKeysKind+".priv")

	if err := os.WriteFile(pubPath, pkBytes, 0644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	if err := os.WriteFile(privPath, skBytes, 0600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	fmt.Printf("Generated %s key pair:\n  public:  %s\n  private: %s\n", genKeysKind, pubPath, privPath)
	return nil
}
