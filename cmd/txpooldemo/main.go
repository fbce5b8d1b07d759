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

// Command txpooldemo drives a Mempool from the command line: it submits
// RLP-encoded transactions read from a file or stdin, then prints the
// block-building selection order. It stands in for the
// JSON-RPC/CLI surface this module's scope otherwise excludes.
package main

import (
	"fmt"
	"os"

	"github.com/coldbit-labs/evmpool/log"
)

func main() {
	if err := newRootCmd(log.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
