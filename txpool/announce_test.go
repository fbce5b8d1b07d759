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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/log"
)

func TestNewlyAnnouncedDedupsAndDrains(t *testing.T) {
	na := newNewlyAnnounced(16)
	h1 := common.HexToHash("0x01")
	h2 := common.HexToHash("0x02")

	na.add(h1)
	na.add(h1)
	na.add(h2)

	batch := na.drain()
	require.Equal(t, []common.Hash{h1, h2}, batch)
	require.Nil(t, na.drain())

	// h1 is still within the dedup window even though it was drained.
	na.add(h1)
	require.Nil(t, na.drain())
}

func TestBroadcastLoopDeliversBatches(t *testing.T) {
	na := newNewlyAnnounced(16)
	h1 := common.HexToHash("0x01")
	na.add(h1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []common.Hash, 1)
	go broadcastLoop(ctx, na, time.Millisecond, func(batch []common.Hash) {
		received <- batch
	}, log.NewNop())

	select {
	case batch := <-received:
		require.Equal(t, []common.Hash{h1}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}
