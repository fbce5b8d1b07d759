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

package txpool

import "errors"

var (
	ErrAlreadyKnown       = errors.New("txpool: already known")
	ErrInvalidSender      = errors.New("txpool: invalid sender")
	ErrNonceTooLow        = errors.New("txpool: nonce too low")
	ErrReplaceUnderpriced = errors.New("txpool: replacement transaction underpriced")
	ErrIntrinsicGas       = errors.New("txpool: intrinsic gas exceeds gas limit")
	ErrTxPoolFull         = errors.New("txpool: full, and this transaction doesn't outbid the worst one")
	ErrNotFound           = errors.New("txpool: transaction not found")
	ErrInvariantViolated  = errors.New("txpool: internal invariant violated")

	// errReplaced, errEvicted and errAgedOut are the reasons passed to
	// Dropped listeners; they are unexported because callers subscribe to
	// find out *that* a transaction left the pool, and RemoveByHash's own
	// return value already reports the outcome of an explicit removal.
	errReplaced          = errors.New("txpool: replaced by a higher-priced transaction")
	errEvicted           = errors.New("txpool: evicted to make room for a higher-priority transaction")
	errAgedOut           = errors.New("txpool: evicted after exceeding the pool's maximum age")
	errDroppedBySelector = errors.New("txpool: dropped during selection")
	errRemovedExplicitly = errors.New("txpool: removed explicitly, not via block inclusion")
)
