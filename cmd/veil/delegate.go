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

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/veil-x-project/veil/crypto/formats"
)

var (
	delegateKeystore   string
	delegatePassphrase string
	delegateServicePub string
	delegateGenService bool
)

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Seal the viewing key to a scanning service",
	Long: `Encrypt the keystore's viewing capability to a scanning service's
X25519 public key. The service can discover payments but never spend them.
With --gen-service-key, generate a service keypair instead.`,
	Example: `  # Generate a keypair for the scanning service side
  veil delegate --gen-service-key

  # Seal the viewing key to the service
  veil delegate --keystore account.json --service-pub <base58>`,
	RunE: runDelegate,
}

func init() {
	rootCmd.AddCommand(delegateCmd)

	delegateCmd.Flags().StringVarP(&delegateKeystore, "keystore", "k", "", "Keystore file")
	delegateCmd.Flags().StringVarP(&delegatePassphrase, "passphrase", "p", "", "Keystore passphrase")
	delegateCmd.Flags().StringVarP(&delegateServicePub, "service-pub", "s", "", "Scanning service X25519 public key (Base58)")
	delegateCmd.Flags().BoolVar(&delegateGenService, "gen-service-key", false, "Generate a scanning service keypair")
}

func runDelegate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if delegateGenService {
		pub, priv, err := formats.GenerateDelegateKeyPair()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "service public key:  %s\n", base58.Encode(pub))
		fmt.Fprintf(out, "service private key: %s\n", base58.Encode(priv))
		return nil
	}

	if delegateKeystore == "" || delegateServicePub == "" {
		return fmt.Errorf("--keystore and --service-pub are required")
	}

	acct, err := loadAccount(delegateKeystore, delegatePassphrase)
	if err != nil {
		return err
	}
	defer acct.Close()

	servicePub, err := base58.Decode(delegateServicePub)
	if err != nil {
		return fmt.Errorf("invalid service public key: %w", err)
	}

	packet, err := acct.Delegate(servicePub)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, base58.Encode(packet))
	return nil
}
