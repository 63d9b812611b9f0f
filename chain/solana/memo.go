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


package solana

import "strings"

// stripMemoPrefix removes the "[<signer count>] " prefix RPC nodes prepend
// to memo strings in signature listings, leaving the raw memo payload.
func stripMemoPrefix(memo string) []byte {
	if strings.HasPrefix(memo, "[") {
		if i := strings.Index(memo, "] "); i >= 0 {
			return []byte(memo[i+2:])
		}
	}
	return []byte(memo)
}
