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

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/veil-x-project/veil/chain/solana"
	"github.com/veil-x-project/veil/payment"
)

var (
	payTo        string
	payRPC       string
	payPayerFile string
	payRegistry  string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Compute a stealth payment for a meta-address",
	Long: `Compute the one-time address and announcement for a payment to a
st:sol: meta-address. With --rpc, --payer and --registry the announcement is
also published on chain as a memo; the lamport transfer itself stays with
your wallet.`,
	Example: `  # Offline: print the address to fund and the announcement memo
  veil pay --to st:sol:...

  # Publish the announcement on devnet
  veil pay --to st:sol:... \
    --rpc https://api.devnet.solana.com \
    --payer ~/.config/solana/id.json \
    --registry 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin`,
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringVarP(&payTo, "to", "t", "", "Recipient meta-address (required)")
	payCmd.Flags().StringVar(&payRPC, "rpc", "", "Solana RPC endpoint")
	payCmd.Flags().StringVar(&payPayerFile, "payer", "", "Solana keygen file paying the announcement fee")
	payCmd.Flags().StringVar(&payRegistry, "registry", "", "Announcement registry account (Base58)")
	_ = payCmd.MarkFlagRequired("to")
}

func runPay(cmd *cobra.Command, args []string) error {
	p, err := payment.NewFromString(payTo, nil)
	if err != nil {
		return err
	}

	memo, err := p.Announcement().Marshal()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "payment id:      %s\n", p.ID)
	fmt.Fprintf(out, "stealth address: %s\n", base58.Encode(p.StealthAddress))
	fmt.Fprintf(out, "announcement:    %s\n", memo)

	if payRPC == "" {
		return nil
	}
	if payPayerFile == "" || payRegistry == "" {
		return fmt.Errorf("--rpc requires --payer and --registry")
	}

	payer, err := solanago.PrivateKeyFromSolanaKeygenFile(payPayerFile)
	if err != nil {
		return fmt.Errorf("failed to load payer key: %w", err)
	}
	registry, err := solanago.PublicKeyFromBase58(payRegistry)
	if err != nil {
		return fmt.Errorf("invalid registry: %w", err)
	}

	sig, err := solana.NewClient(payRPC).PublishAnnouncement(cmd.Context(), payer, registry, p.Announcement())
	if err != nil {
		return fmt.Errorf("failed to publish announcement: %w", err)
	}
	fmt.Fprintf(out, "published:       %s\n", sig)
	return nil
}
