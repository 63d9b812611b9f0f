// Copyright (C) 2025 veil-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later


package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veil-x-project/veil/account"
)

var (
	generateOutput     string
	generatePassphrase string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a stealth account",
	Long: `Generate a new stealth account: viewing and spending keypairs plus the
meta-address derived from them. The keystore is written as JSON, encrypted
when a passphrase is given.`,
	Example: `  # Generate an account and print the keystore to stdout
  veil generate

  # Generate into an encrypted keystore file
  veil generate --output account.json --passphrase "correct horse"`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: stdout)")
	generateCmd.Flags().StringVarP(&generatePassphrase, "passphrase", "p", "", "Encrypt the keystore with this passphrase")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	acct, err := account.Generate(nil)
	if err != nil {
		return fmt.Errorf("failed to generate account: %w", err)
	}
	defer acct.Close()

	var data []byte
	if generatePassphrase != "" {
		data, err = acct.ExportSealedKeystore([]byte(generatePassphrase))
	} else {
		data, err = acct.ExportKeystore()
	}
	if err != nil {
		return fmt.Errorf("failed to export keystore: %w", err)
	}

	if generateOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else if err := os.WriteFile(generateOutput, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "meta-address: %s\n", acct.MetaAddressString())
	return nil
}
