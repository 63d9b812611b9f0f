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
	"bufio"
	"fmt"
	"os"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/veil-x-project/veil/announce"
	"github.com/veil-x-project/veil/chain/solana"
	"github.com/veil-x-project/veil/scanner"
)

var (
	scanKeystore      string
	scanPassphrase    string
	scanAnnouncements string
	scanRPC           string
	scanRegistry      string
	scanLimit         int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan announcements for payments to a keystore",
	Long: `Scan announcements with the keystore's viewing key. Announcements come
from a file of JSON memos, one per line, or from a registry account's memo
history when --rpc and --registry are given. With --rpc, balances of
discovered addresses are fetched as well.`,
	Example: `  # Scan a file of announcement memos
  veil scan --keystore account.json --announcements memos.jsonl

  # Scan the on-chain registry on devnet
  veil scan --keystore account.json \
    --rpc https://api.devnet.solana.com \
    --registry 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanKeystore, "keystore", "k", "", "Keystore file (required)")
	scanCmd.Flags().StringVarP(&scanPassphrase, "passphrase", "p", "", "Keystore passphrase")
	scanCmd.Flags().StringVarP(&scanAnnouncements, "announcements", "a", "", "Announcement file, one JSON memo per line")
	scanCmd.Flags().StringVar(&scanRPC, "rpc", "", "Solana RPC endpoint")
	scanCmd.Flags().StringVar(&scanRegistry, "registry", "", "Announcement registry account (Base58)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 1000, "Maximum announcements to pull from chain")
	_ = scanCmd.MarkFlagRequired("keystore")
}

func runScan(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount(scanKeystore, scanPassphrase)
	if err != nil {
		return err
	}
	defer acct.Close()

	var client *solana.Client
	if scanRPC != "" {
		client = solana.NewClient(scanRPC)
	}

	var anns []*announce.Announcement
	switch {
	case scanAnnouncements != "":
		anns, err = readAnnouncementFile(scanAnnouncements)
		if err != nil {
			return err
		}
	case client != nil && scanRegistry != "":
		registry, err := solanago.PublicKeyFromBase58(scanRegistry)
		if err != nil {
			return fmt.Errorf("invalid registry: %w", err)
		}
		anns, err = client.Announcements(cmd.Context(), registry, scanLimit)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --announcements or --rpc with --registry is required")
	}

	var chain scanner.BalanceReader
	if client != nil {
		chain = client
	}

	found, err := scanner.New(acct.Keys(), chain).Scan(cmd.Context(), anns)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scanned %d announcements, found %d payments\n", len(anns), len(found))
	for _, d := range found {
		fmt.Fprintf(out, "  %s  %d lamports\n", base58.Encode(d.Announcement.StealthAddress), d.Lamports)
		d.Keypair.Zeroize()
	}
	return nil
}

// readAnnouncementFile parses one memo JSON per line, skipping anything
// that is not a stealth announcement.
func readAnnouncementFile(path string) ([]*announce.Announcement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open announcements: %w", err)
	}
	defer f.Close()

	var anns []*announce.Announcement
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if a := announce.Decode(sc.Bytes()); a != nil {
			anns = append(anns, a)
		}
	}
	return anns, sc.Err()
}
