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

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/coldbit-labs/evmpool/core/types"
)

func infoWithTip(seq uint64, gasPrice uint64, local bool) *TransactionInfo {
	return &TransactionInfo{
		Tx: &types.LegacyTx{
			CommonTx: types.CommonTx{Nonce: 0},
			GasPrice: uint256.NewInt(gasPrice),
		},
		Local:    local,
		seq:      seq,
		bestIdx:  -1,
		worstIdx: -1,
	}
}

func TestSubPoolBestAndWorstOrdering(t *testing.T) {
	baseFee := uint256.NewInt(0)
	p := newSubPool(baseFee)

	low := infoWithTip(0, 10, false)
	mid := infoWithTip(1, 20, false)
	high := infoWithTip(2, 30, false)

	p.add(low)
	p.add(mid)
	p.add(high)
	require.Equal(t, 3, p.len())

	var best []uint64
	p.ascendBest(func(info *TransactionInfo) bool {
		best = append(best, info.Tx.GetPrice().Uint64())
		return true
	})
	require.Equal(t, []uint64{30, 20, 10}, best)

	require.Equal(t, uint64(10), p.peekWorst().Tx.GetPrice().Uint64())
	worst := p.popWorst()
	require.Equal(t, uint64(10), worst.Tx.GetPrice().Uint64())
	require.Equal(t, 2, p.len())
}

func TestSubPoolLocalOutranksHigherRemoteTip(t *testing.T) {
	baseFee := uint256.NewInt(0)
	p := newSubPool(baseFee)

	remote := infoWithTip(0, 1000, false)
	local := infoWithTip(1, 1, true)
	p.add(remote)
	p.add(local)

	require.Equal(t, uint64(1000), p.peekWorst().Tx.GetPrice().Uint64())
}

func TestSubPoolRemoveUpdatesBothHeaps(t *testing.T) {
	baseFee := uint256.NewInt(0)
	p := newSubPool(baseFee)

	a := infoWithTip(0, 10, false)
	b := infoWithTip(1, 20, false)
	p.add(a)
	p.add(b)
	p.remove(a)

	require.Equal(t, 1, p.len())
	require.Equal(t, uint64(20), p.peekWorst().Tx.GetPrice().Uint64())
}

func TestEffectiveTipDynamicFee(t *testing.T) {
	tx := &types.DynamicFeeTx{
		TipCap: uint256.NewInt(5),
		FeeCap: uint256.NewInt(20),
	}
	tip := effectiveTip(tx, uint256.NewInt(10))
	require.True(t, tip.eq(positiveTip(uint256.NewInt(5))))

	tip = effectiveTip(tx, uint256.NewInt(18))
	require.True(t, tip.eq(positiveTip(uint256.NewInt(2))))

	// FeeCap below baseFee: effective priority goes negative rather than
	// clamping to zero.
	tip = effectiveTip(tx, uint256.NewInt(25))
	require.True(t, tip.eq(negativeTip(uint256.NewInt(5))))
}

func TestEffectiveTipLegacyMayGoNegative(t *testing.T) {
	tx := &types.LegacyTx{GasPrice: uint256.NewInt(10)}

	require.True(t, effectiveTip(tx, uint256.NewInt(5)).eq(positiveTip(uint256.NewInt(5))))
	require.True(t, effectiveTip(tx, uint256.NewInt(50)).eq(negativeTip(uint256.NewInt(40))))
}

func TestSignedTipOrdering(t *testing.T) {
	require.True(t, positiveTip(uint256.NewInt(1)).gt(negativeTip(uint256.NewInt(1000))))
	require.True(t, negativeTip(uint256.NewInt(1)).gt(negativeTip(uint256.NewInt(10))))
	require.True(t, positiveTip(uint256.NewInt(10)).gt(positiveTip(uint256.NewInt(1))))
	require.False(t, negativeTip(uint256.NewInt(5)).gt(negativeTip(uint256.NewInt(5))))
}

func TestIsStaticEligibleOnlyFeeMarket(t *testing.T) {
	baseFee := uint256.NewInt(10)

	legacy := &types.LegacyTx{GasPrice: uint256.NewInt(1000)}
	require.False(t, isStaticEligible(legacy, baseFee))

	al := &types.AccessListTx{LegacyTx: types.LegacyTx{GasPrice: uint256.NewInt(1000)}}
	require.False(t, isStaticEligible(al, baseFee))

	static := &types.DynamicFeeTx{TipCap: uint256.NewInt(2), FeeCap: uint256.NewInt(12)}
	require.True(t, isStaticEligible(static, baseFee))

	dynamic := &types.DynamicFeeTx{TipCap: uint256.NewInt(3), FeeCap: uint256.NewInt(11)}
	require.False(t, isStaticEligible(dynamic, baseFee))
}

// TestMergeBestBoundaryScenario walks three fee-market transactions through
// a base-fee move from 0 to 6, matching the worked boundary example: all
// three start in the static range, then (3,5) crosses into dynamic and
// drops to the tail of the merged order because its effective priority
// becomes negative.
func TestMergeBestBoundaryScenario(t *testing.T) {
	newTx := func(tip, feeCap uint64) *types.DynamicFeeTx {
		return &types.DynamicFeeTx{TipCap: uint256.NewInt(tip), FeeCap: uint256.NewInt(feeCap)}
	}
	txA := newTx(2, 10) // seq 0
	txB := newTx(3, 5)  // seq 1
	txC := newTx(1, 20) // seq 2

	baseFee := uint256.NewInt(0)
	static := newSubPool(baseFee)
	dynamic := newSubPool(baseFee)

	place := func(seq uint64, tx *types.DynamicFeeTx) *TransactionInfo {
		info := &TransactionInfo{Tx: tx, seq: seq, bestIdx: -1, worstIdx: -1}
		if isStaticEligible(tx, baseFee) {
			static.add(info)
		} else {
			dynamic.add(info)
		}
		return info
	}
	place(0, txA)
	infoB := place(1, txB)
	place(2, txC)

	order := func() []uint64 {
		var out []uint64
		mergeBest(static, dynamic, baseFee, func(info *TransactionInfo) bool {
			out = append(out, info.Tx.(*types.DynamicFeeTx).TipCap.Uint64())
			return true
		})
		return out
	}
	require.Equal(t, []uint64{3, 2, 1}, order()) // (3,5),(2,10),(1,20) by tip at baseFee 0

	baseFee = uint256.NewInt(6)
	static.setBaseFee(baseFee)
	dynamic.setBaseFee(baseFee)

	// txB (3,5) no longer covers the new base fee: move it into dynamic,
	// the same transition UpdateBaseFee performs.
	static.remove(infoB)
	dynamic.add(infoB)

	require.Equal(t, []uint64{2, 1, 3}, order())
}
