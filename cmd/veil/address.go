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

	"github.com/spf13/cobra"
)

var (
	addressKeystore   string
	addressPassphrase string
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the meta-address of a keystore",
	Example: `  veil address --keystore account.json
  veil address --keystore account.json --passphrase "correct horse"`,
	RunE: runAddress,
}

func init() {
	rootCmd.AddCommand(addressCmd)

	addressCmd.Flags().StringVarP(&addressKeystore, "keystore", "k", "", "Keystore file (required)")
	addressCmd.Flags().StringVarP(&addressPassphrase, "passphrase", "p", "", "Keystore passphrase")
	_ = addressCmd.MarkFlagRequired("keystore")
}

func runAddress(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount(addressKeystore, addressPassphrase)
	if err != nil {
		return err
	}
	defer acct.Close()

	fmt.Fprintln(cmd.OutOrStdout(), acct.MetaAddressString())
	return nil
}
