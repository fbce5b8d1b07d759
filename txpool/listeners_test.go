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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coldbit-labs/evmpool/core/types"
)

func TestListenersSubscribeAndUnsubscribe(t *testing.T) {
	l := newListeners()

	var addedCount int
	unsubscribe := l.subscribeAdded(func(tx types.Transaction, local bool) {
		addedCount++
	})

	l.notifyAdded(nil, true)
	require.Equal(t, 1, addedCount)

	unsubscribe()
	l.notifyAdded(nil, true)
	require.Equal(t, 1, addedCount)
}

func TestListenersDroppedReceivesReason(t *testing.T) {
	l := newListeners()

	var reason error
	l.subscribeDropped(func(tx types.Transaction, r error) {
		reason = r
	})

	l.notifyDropped(nil, errEvicted)
	require.ErrorIs(t, reason, errEvicted)
}
