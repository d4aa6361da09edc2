// Copyright (c) 2018-2019 The Decred developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/elementsproject/txscript/elwire"
)

// A mock previous output script to use in the signing benchmarks.
var prevOutScript = hexToBytes("a914f5916158e3e2c4551c1796708db8367207ed13bb87")

// genManyInputsTx deterministically builds a transaction with the passed
// number of inputs spending explicit outputs, which is useful for
// benchmarking signature hash calculation.
func genManyInputsTx(numInputs int) (*elwire.MsgTx, *MultiPrevOutFetcher) {
	tx := elwire.NewMsgTx(2)
	fetcher := NewMultiPrevOutFetcher(nil)

	for i := 0; i < numInputs; i++ {
		var prevHash chainhash.Hash
		binary.LittleEndian.PutUint32(prevHash[:4], uint32(i))

		prevOut := wire.OutPoint{Hash: prevHash, Index: uint32(i)}
		tx.AddTxIn(elwire.NewTxIn(&prevOut, nil))

		fetcher.AddPrevOut(prevOut, &elwire.TxOut{
			Asset:    elwire.NewExplicitAsset(testAssetID),
			Value:    elwire.NewExplicitValue(int64(i + 1000)),
			PkScript: prevOutScript,
		})
	}
	tx.AddTxOut(elwire.NewTxOut(testAssetID, 500, prevOutScript))

	return tx, fetcher
}

// BenchmarkCalcSigHash benchmarks how long it takes to calculate the legacy
// signature hashes for all inputs of a transaction with many inputs.
func BenchmarkCalcSigHash(b *testing.B) {
	tx, _ := genManyInputsTx(200)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < len(tx.TxIn); j++ {
			_, err := CalcSignatureHash(prevOutScript, SigHashAll, tx, j)
			if err != nil {
				b.Fatalf("failed to calc signature hash: %v", err)
			}
		}
	}
}

// BenchmarkCalcWitnessSigHash benchmarks how long it takes to calculate the
// witness signature hashes for all inputs of a transaction with many inputs.
func BenchmarkCalcWitnessSigHash(b *testing.B) {
	tx, fetcher := genManyInputsTx(200)
	sigHashes := NewTxSigHashes(tx, fetcher)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < len(tx.TxIn); j++ {
			_, err := CalcWitnessSigHash(
				prevOutScript, sigHashes, SigHashAll, tx, j,
				elwire.NewExplicitValue(5),
			)
			if err != nil {
				b.Fatalf("failed to calc signature hash: %v", err)
			}
		}
	}
}

// BenchmarkCalcTaprootSigHash benchmarks the taproot signature hash
// calculation for all inputs of a transaction with many inputs.
func BenchmarkCalcTaprootSigHash(b *testing.B) {
	tx, fetcher := genManyInputsTx(200)
	sigHashes := NewTxSigHashes(tx, fetcher)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < len(tx.TxIn); j++ {
			_, err := CalcTaprootSignatureHash(
				sigHashes, SigHashDefault, tx, j, fetcher,
			)
			if err != nil {
				b.Fatalf("failed to calc signature hash: %v", err)
			}
		}
	}
}

// BenchmarkNewTxSigHashes benchmarks the midstate pre-computation for a
// transaction with many inputs.
func BenchmarkNewTxSigHashes(b *testing.B) {
	tx, fetcher := genManyInputsTx(200)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = NewTxSigHashes(tx, fetcher)
	}
}

// genComplexScript returns a script comprised of half as many opcodes as the
// maximum allowed followed by as many max size data pushes fit without
// exceeding the max allowed script size.
func genComplexScript() ([]byte, error) {
	var scriptLen int
	builder := NewScriptBuilder()
	for i := 0; i < MaxOpsPerScript/2; i++ {
		builder.AddOp(OP_TRUE)
		scriptLen++
	}
	maxData := bytes.Repeat([]byte{0x02}, MaxScriptElementSize)
	for i := 0; i < (MaxScriptSize-scriptLen)/(MaxScriptElementSize+3); i++ {
		builder.AddData(maxData)
	}
	return builder.Script()
}

// BenchmarkScriptParsing benchmarks how long it takes to parse a very large
// script.
func BenchmarkScriptParsing(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	const scriptVersion = 0
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tokenizer := MakeScriptTokenizer(scriptVersion, script)
		for tokenizer.Next() {
			_ = tokenizer.Opcode()
			_ = tokenizer.Data()
			_ = tokenizer.ByteIndex()
		}
		if err := tokenizer.Err(); err != nil {
			b.Fatalf("failed to parse script: %v", err)
		}
	}
}

// BenchmarkDisasmString benchmarks how long it takes to disassemble a very
// large script.
func BenchmarkDisasmString(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := DisasmString(script)
		if err != nil {
			b.Fatalf("failed to disasm script: %v", err)
		}
	}
}

// BenchmarkIsPubKeyScript benchmarks how long it takes to analyze a very large
// script to determine if it is a standard pay-to-pubkey script.
func BenchmarkIsPubKeyScript(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = IsPayToPubKey(script)
	}
}

// BenchmarkIsPubKeyHashScript benchmarks how long it takes to analyze a very
// large script to determine if it is a standard pay-to-pubkey-hash script.
func BenchmarkIsPubKeyHashScript(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = IsPayToPubKeyHash(script)
	}
}

// BenchmarkIsPayToScriptHash benchmarks how long it takes IsPayToScriptHash to
// analyze a very large script.
func BenchmarkIsPayToScriptHash(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = IsPayToScriptHash(script)
	}
}

// BenchmarkGetSigOpCount benchmarks how long it takes to count the signature
// operations of a very large script.
func BenchmarkGetSigOpCount(b *testing.B) {
	script, err := genComplexScript()
	if err != nil {
		b.Fatalf("failed to create benchmark script: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GetSigOpCount(script)
	}
}
