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


// Package solana connects the stealth engine to a Solana RPC node: memo
// announcements out, balances and announcement history in, and lamport
// transfers signed with scalar-form stealth keys.
package solana

import (
	"context"
	"fmt"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/veil-x-project/veil/announce"
	veilcrypto "github.com/veil-x-project/veil/crypto"
	"github.com/veil-x-project/veil/crypto/stealth"
	"github.com/veil-x-project/veil/internal/logger"
	"github.com/veil-x-project/veil/internal/metrics"
)

// feeReserveLamports is held back from stealth-account withdrawals to pay
// the transfer fee.
const feeReserveLamports = 5_000

// Client wraps a Solana RPC endpoint with the three capabilities the
// engine consumes: publish, discover, spend.
type Client struct {
	rpc        *rpc.Client
	log        logger.Logger
	maxRetries int
}

// NewClient creates a client for an RPC endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		rpc:        rpc.New(endpoint),
		log:        logger.GetDefaultLogger().WithFields(logger.String("component", "solana")),
		maxRetries: 30,
	}
}

// Balance returns the lamports held at a raw 32-byte address.
func (c *Client) Balance(ctx context.Context, address []byte) (uint64, error) {
	if len(address) != veilcrypto.PublicKeySize {
		return 0, fmt.Errorf("%w: address must be %d bytes", veilcrypto.ErrInvalidPoint, veilcrypto.PublicKeySize)
	}
	out, err := c.rpc.GetBalance(ctx, solanago.PublicKeyFromBytes(address), rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return out.Value, nil
}

// PublishAnnouncement writes the announcement JSON as a memo-program
// instruction. The memo program only accepts signer accounts, so the
// registry is tagged with a zero-lamport transfer in the same transaction;
// that is what makes the memo show up in the registry's signature history.
func (c *Client) PublishAnnouncement(ctx context.Context, payer solanago.PrivateKey, registry solanago.PublicKey, ann *announce.Announcement) (solanago.Signature, error) {
	data, err := ann.Marshal()
	if err != nil {
		return solanago.Signature{}, err
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	memo := solanago.NewInstruction(
		solanago.MemoProgramID,
		solanago.AccountMetaSlice{
			{PublicKey: payer.PublicKey(), IsWritable: false, IsSigner: true},
		},
		data,
	)
	tag := system.NewTransferInstruction(0, payer.PublicKey(), registry).Build()

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{memo, tag},
		recent.Value.Blockhash,
		solanago.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return solanago.Signature{}, err
	}

	metrics.AnnouncementsPublished.Inc()
	c.log.Info("announcement published", logger.String("signature", sig.String()))
	return sig, nil
}

// Announcements pulls up to limit memo payloads from the registry
// account's transaction history and soft-decodes them. Non-stealth memos
// are skipped, newest first per RPC ordering.
func (c *Client) Announcements(ctx context.Context, registry solanago.PublicKey, limit int) ([]*announce.Announcement, error) {
	sigs, err := c.rpc.GetSignaturesForAddress(ctx, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	var out []*announce.Announcement
	for _, s := range sigs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s.Memo == nil {
			continue
		}
		if ann := announce.Decode(stripMemoPrefix(*s.Memo)); ann != nil {
			out = append(out, ann)
		}
	}
	return out, nil
}

// Transfer moves lamports out of a stealth account. The transaction's only
// signer is the derived scalar-form keypair, so signing happens through the
// engine's signer instead of solana-go's seed-based path. The fee reserve
// stays behind; withdrawing more than balance-minus-reserve fails with
// ErrInsufficientBalance.
func (c *Client) Transfer(ctx context.Context, kp *stealth.Keypair, to solanago.PublicKey, lamports uint64) (solanago.Signature, error) {
	balance, err := c.Balance(ctx, kp.PublicKey)
	if err != nil {
		return solanago.Signature{}, err
	}
	if balance < feeReserveLamports || lamports > balance-feeReserveLamports {
		return solanago.Signature{}, fmt.Errorf("%w: have %d lamports, need %d plus %d fee reserve",
			veilcrypto.ErrInsufficientBalance, balance, lamports, feeReserveLamports)
	}

	from := solanago.PublicKeyFromBytes(kp.PublicKey)

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		recent.Value.Blockhash,
		solanago.TransactionPayer(from),
	)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to serialize message: %w", err)
	}
	rawSig, err := kp.Sign(message)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to sign message: %w", err)
	}
	tx.Signatures = []solanago.Signature{solanago.SignatureFromBytes(rawSig)}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solanago.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return solanago.Signature{}, err
	}

	c.log.Info("transfer sent",
		logger.String("signature", sig.String()),
		logger.Uint64("lamports", lamports),
	)
	return sig, nil
}

// Health checks the RPC node's own health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.rpc.GetHealth(ctx)
	return err
}

// waitForConfirmation polls signature status until finalized.
func (c *Client) waitForConfirmation(ctx context.Context, sig solanago.Signature) error {
	for i := 0; i < c.maxRetries; i++ {
		status, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err == nil && status != nil && len(status.Value) > 0 && status.Value[0] != nil {
			if status.Value[0].ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("transaction confirmation timeout")
}
