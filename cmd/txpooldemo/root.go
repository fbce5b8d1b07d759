// Copyright 2021 Erigon contributors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/coldbit-labs/evmpool/core/types"
	"github.com/coldbit-labs/evmpool/log"
	"github.com/coldbit-labs/evmpool/txpool"
)

// newRootCmd builds the txpooldemo command tree. It has no persistent state
// of its own beyond the flags below; every run constructs a fresh Mempool
// against an in-memory chain head, feeds it a batch of transactions, and
// prints what a block builder would see.
func newRootCmd(logger log.Logger) *cobra.Command {
	var (
		txFile   string
		chainID  uint64
		baseFee  uint64
		maxCount int
	)

	cmd := &cobra.Command{
		Use:   "txpooldemo",
		Short: "Admit RLP-encoded transactions into a mempool and print the selection order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if txFile != "" {
				f, err := os.Open(txFile)
				if err != nil {
					return fmt.Errorf("opening %s: %w", txFile, err)
				}
				defer f.Close()
				r = f
			}

			signer := types.MakeSigner(uint256.NewInt(chainID))
			chain := newMemChainHead(uint256.NewInt(baseFee))
			pool := txpool.New(txpool.DefaultConfig(), signer, chain, logger)

			if err := submitAll(pool, r, logger); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pool.Select(maxCount, func(tx types.Transaction) txpool.SelectionResult {
				sender, _ := tx.Sender(signer)
				fmt.Fprintf(out, "%s nonce=%d sender=%s gas=%d\n",
					tx.Hash().Hex(), tx.GetNonce(), sender.Hex(), tx.GetGas())
				return txpool.Include
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&txFile, "file", "", "file of hex-encoded RLP transactions, one per line (default: stdin)")
	cmd.Flags().Uint64Var(&chainID, "chain-id", 1, "chain id used to validate EIP-155/typed transaction signatures")
	cmd.Flags().Uint64Var(&baseFee, "base-fee", 0, "current block base fee, in wei per unit gas")
	cmd.Flags().IntVar(&maxCount, "max-count", 0, "stop selection after this many transactions (0 = unbounded)")

	return cmd
}

// submitAll decodes each non-blank line of r as a hex-encoded RLP
// transaction and admits it as a remote submission, logging (rather than
// failing the whole batch on) any single line's rejection.
func submitAll(pool *txpool.Mempool, r io.Reader, logger log.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw, err := hex.DecodeString(strings.TrimPrefix(line, "0x"))
		if err != nil {
			logger.Warn("skipping malformed line", "err", err)
			continue
		}
		tx, err := types.DecodeTransaction(raw)
		if err != nil {
			logger.Warn("skipping undecodable transaction", "err", err)
			continue
		}
		if err := pool.AddRemote(tx); err != nil {
			logger.Warn("rejected transaction", "hash", tx.Hash().Hex(), "err", err)
		}
	}
	return scanner.Err()
}
