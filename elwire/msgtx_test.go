// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package elwire

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// testTx returns a two input, two output transaction exercising issuances,
// pegin markers, blinded outputs, and witness data.
func testTx() *MsgTx {
	assetID := bytes.Repeat([]byte{0x2a}, 32)

	tx := NewMsgTx(2)

	txIn := NewTxIn(&wire.OutPoint{
		Hash:  chainhash.Hash{0x01, 0x02, 0x03},
		Index: 7,
	}, []byte{0x01, 0x51})
	txIn.AssetIssuance = AssetIssuance{
		Entropy: [32]byte{0xaa, 0xbb},
		Amount:  NewExplicitValue(1000),
	}
	txIn.Witness = TxInWitness{
		IssuanceAmountRangeProof: bytes.Repeat([]byte{0x11}, 64),
		ScriptWitness: wire.TxWitness{
			bytes.Repeat([]byte{0x22}, 71),
			bytes.Repeat([]byte{0x33}, 33),
		},
	}
	tx.AddTxIn(txIn)

	peginIn := NewTxIn(&wire.OutPoint{
		Hash:  chainhash.Hash{0x04, 0x05, 0x06},
		Index: 1,
	}, nil)
	peginIn.IsPegin = true
	peginIn.Witness = TxInWitness{
		PeginWitness: wire.TxWitness{
			bytes.Repeat([]byte{0x44}, 80),
		},
	}
	tx.AddTxIn(peginIn)

	tx.AddTxOut(NewTxOut(assetID, 900, []byte{0x51}))

	blinded := &TxOut{
		Asset: ConfidentialAsset{
			Commitment: append([]byte{PrefixAssetCommitment},
				bytes.Repeat([]byte{0x55}, 32)...),
		},
		Value: ConfidentialValue{
			Commitment: append([]byte{PrefixValueCommitment + 1},
				bytes.Repeat([]byte{0x66}, 32)...),
		},
		Nonce: ConfidentialNonce{
			Commitment: append([]byte{PrefixNonceCommitment},
				bytes.Repeat([]byte{0x77}, 32)...),
		},
		PkScript: bytes.Repeat([]byte{0x88}, 22),
		Witness: TxOutWitness{
			SurjectionProof: bytes.Repeat([]byte{0x99}, 131),
			RangeProof:      bytes.Repeat([]byte{0xaa}, 2713),
		},
	}
	tx.AddTxOut(blinded)

	return tx
}

// TestTxSerializeRoundTrip ensures a transaction carrying every optional
// component survives a serialize/deserialize round trip and that the
// reported serialize sizes match the actual encodings.
func TestTxSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	tx := testTx()

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: unexpected error: %v", err)
	}
	if buf.Len() != tx.SerializeSize() {
		t.Fatalf("SerializeSize mismatch - got %d, want %d",
			tx.SerializeSize(), buf.Len())
	}

	var stripped bytes.Buffer
	if err := tx.SerializeNoWitness(&stripped); err != nil {
		t.Fatalf("SerializeNoWitness: unexpected error: %v", err)
	}
	if stripped.Len() != tx.SerializeSizeStripped() {
		t.Fatalf("SerializeSizeStripped mismatch - got %d, want %d",
			tx.SerializeSizeStripped(), stripped.Len())
	}

	var decoded MsgTx
	if err := decoded.Deserialize(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Deserialize: unexpected error: %v", err)
	}

	// Re-serializing the decoded transaction must reproduce the original
	// encoding byte for byte.
	var reencoded bytes.Buffer
	if err := decoded.Serialize(&reencoded); err != nil {
		t.Fatalf("Serialize decoded: unexpected error: %v", err)
	}
	if !bytes.Equal(reencoded.Bytes(), buf.Bytes()) {
		t.Fatalf("round trip encoding mismatch:\n got: %s\nwant: %s",
			spew.Sdump(reencoded.Bytes()), spew.Sdump(buf.Bytes()))
	}

	// Spot check the decoded flag bits since they are folded into the
	// serialized outpoint index.
	if !decoded.TxIn[0].HasIssuance() {
		t.Fatal("decoded input 0 lost its issuance")
	}
	if decoded.TxIn[0].PreviousOutPoint.Index != 7 {
		t.Fatalf("decoded input 0 outpoint index - got %d, want 7",
			decoded.TxIn[0].PreviousOutPoint.Index)
	}
	if !decoded.TxIn[1].IsPegin {
		t.Fatal("decoded input 1 lost its pegin marker")
	}
	if decoded.TxIn[1].HasIssuance() {
		t.Fatal("decoded input 1 gained an issuance")
	}
	if !decoded.TxOut[1].Value.IsCommitment() {
		t.Fatal("decoded output 1 value is not a commitment")
	}
	if len(decoded.TxOut[1].Witness.RangeProof) != 2713 {
		t.Fatalf("decoded output 1 range proof length - got %d, want 2713",
			len(decoded.TxOut[1].Witness.RangeProof))
	}
}

// TestTxHashes ensures TxHash covers only the stripped serialization while
// WitnessHash covers the complete one.
func TestTxHashes(t *testing.T) {
	t.Parallel()

	tx := testTx()
	txid := tx.TxHash()
	wtxid := tx.WitnessHash()
	if txid == wtxid {
		t.Fatal("witness data did not alter the witness hash")
	}

	// Stripping all witness data must leave the txid untouched and make
	// both hashes agree.
	stripped := tx.Copy()
	for _, txIn := range stripped.TxIn {
		txIn.Witness = TxInWitness{}
	}
	for _, txOut := range stripped.TxOut {
		txOut.Witness = TxOutWitness{}
	}
	if stripped.HasWitness() {
		t.Fatal("stripped transaction still has witness data")
	}
	if stripped.TxHash() != txid {
		t.Fatal("stripping witness data changed the txid")
	}
	if stripped.WitnessHash() != stripped.TxHash() {
		t.Fatal("witness hash of witness-free tx differs from txid")
	}
}

// TestTxWeight ensures the weight calculation discounts witness data by the
// witness scale factor.
func TestTxWeight(t *testing.T) {
	t.Parallel()

	tx := testTx()
	baseSize := tx.SerializeSizeStripped()
	totalSize := tx.SerializeSize()
	want := int64(baseSize*(WitnessScaleFactor-1) + totalSize)
	if got := tx.Weight(); got != want {
		t.Fatalf("Weight mismatch - got %d, want %d", got, want)
	}

	// A witness-free transaction weighs exactly four times its size.
	stripped := tx.Copy()
	for _, txIn := range stripped.TxIn {
		txIn.Witness = TxInWitness{}
	}
	for _, txOut := range stripped.TxOut {
		txOut.Witness = TxOutWitness{}
	}
	want = int64(stripped.SerializeSize() * WitnessScaleFactor)
	if got := stripped.Weight(); got != want {
		t.Fatalf("stripped Weight mismatch - got %d, want %d", got, want)
	}
}

// TestTxCopy ensures Copy produces a deep copy whose mutation cannot affect
// the original transaction.
func TestTxCopy(t *testing.T) {
	t.Parallel()

	tx := testTx()
	txCopy := tx.Copy()
	if !reflect.DeepEqual(tx, txCopy) {
		t.Fatalf("copy differs from original:\n got: %s\nwant: %s",
			spew.Sdump(txCopy), spew.Sdump(tx))
	}

	origHash := tx.WitnessHash()
	txCopy.TxIn[0].SignatureScript[0] ^= 0xff
	txCopy.TxIn[0].Witness.ScriptWitness[0][0] ^= 0xff
	txCopy.TxOut[0].PkScript[0] ^= 0xff
	txCopy.TxOut[1].Value.Commitment[1] ^= 0xff
	txCopy.TxIn[0].AssetIssuance.Amount.Commitment[1] ^= 0xff
	if tx.WitnessHash() != origHash {
		t.Fatal("mutating the copy altered the original")
	}
}

// TestTxInOutpointFlags ensures the issuance and pegin markers fold into the
// serialized outpoint index and unfold on read, while the null outpoint is
// always left untouched.
func TestTxInOutpointFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		txIn     *TxIn
		wantFlag byte
	}{
		{
			name: "plain input",
			txIn: NewTxIn(&wire.OutPoint{
				Hash:  chainhash.Hash{0x01},
				Index: 3,
			}, nil),
			wantFlag: 0x00,
		},
		{
			name: "issuance input",
			txIn: func() *TxIn {
				ti := NewTxIn(&wire.OutPoint{
					Hash:  chainhash.Hash{0x02},
					Index: 3,
				}, nil)
				ti.AssetIssuance.Amount = NewExplicitValue(5)
				return ti
			}(),
			wantFlag: 0x80,
		},
		{
			name: "pegin input",
			txIn: func() *TxIn {
				ti := NewTxIn(&wire.OutPoint{
					Hash:  chainhash.Hash{0x03},
					Index: 3,
				}, nil)
				ti.IsPegin = true
				return ti
			}(),
			wantFlag: 0x40,
		},
		{
			name: "issuance pegin input",
			txIn: func() *TxIn {
				ti := NewTxIn(&wire.OutPoint{
					Hash:  chainhash.Hash{0x04},
					Index: 3,
				}, nil)
				ti.AssetIssuance.Amount = NewExplicitValue(5)
				ti.IsPegin = true
				return ti
			}(),
			wantFlag: 0xc0,
		},
	}

	for _, test := range tests {
		if got := test.txIn.OutpointFlag(); got != test.wantFlag {
			t.Errorf("%q: OutpointFlag - got 0x%02x, want 0x%02x",
				test.name, got, test.wantFlag)
			continue
		}

		var buf bytes.Buffer
		if err := writeTxIn(&buf, test.txIn); err != nil {
			t.Errorf("%q: unexpected write error: %v", test.name, err)
			continue
		}
		if buf.Len() != txInSerializeSize(test.txIn) {
			t.Errorf("%q: serialize size mismatch - got %d, want %d",
				test.name, txInSerializeSize(test.txIn), buf.Len())
			continue
		}

		var decoded TxIn
		if err := readTxIn(&buf, &decoded); err != nil {
			t.Errorf("%q: unexpected read error: %v", test.name, err)
			continue
		}
		if decoded.PreviousOutPoint.Index != 3 {
			t.Errorf("%q: outpoint index - got %d, want 3", test.name,
				decoded.PreviousOutPoint.Index)
			continue
		}
		if decoded.IsPegin != test.txIn.IsPegin {
			t.Errorf("%q: pegin marker - got %v, want %v", test.name,
				decoded.IsPegin, test.txIn.IsPegin)
			continue
		}
		if decoded.HasIssuance() != test.txIn.HasIssuance() {
			t.Errorf("%q: issuance marker - got %v, want %v", test.name,
				decoded.HasIssuance(), test.txIn.HasIssuance())
		}
	}

	// The null outpoint marks coinbase-style inputs and must never carry
	// the flag bits.
	nullIn := NewTxIn(&wire.OutPoint{Index: 0xffffffff}, nil)
	var buf bytes.Buffer
	if err := writeTxIn(&buf, nullIn); err != nil {
		t.Fatalf("null outpoint: unexpected write error: %v", err)
	}
	var decoded TxIn
	if err := readTxIn(&buf, &decoded); err != nil {
		t.Fatalf("null outpoint: unexpected read error: %v", err)
	}
	if decoded.PreviousOutPoint.Index != 0xffffffff {
		t.Fatalf("null outpoint index mangled - got %d",
			decoded.PreviousOutPoint.Index)
	}
}

// TestTxDeserializeErrors ensures malformed encodings are rejected.
func TestTxDeserializeErrors(t *testing.T) {
	t.Parallel()

	tx := testTx()
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: unexpected error: %v", err)
	}
	encoded := buf.Bytes()

	// Unknown bits in the flag byte following the version.
	badFlags := make([]byte, len(encoded))
	copy(badFlags, encoded)
	badFlags[4] |= 0x02
	var decoded MsgTx
	if err := decoded.Deserialize(bytes.NewReader(badFlags)); err == nil {
		t.Fatal("unknown flag bits accepted")
	}

	// Truncations anywhere in the encoding must error rather than panic.
	for i := 0; i < len(encoded); i++ {
		var truncated MsgTx
		err := truncated.Deserialize(bytes.NewReader(encoded[:i]))
		if err == nil {
			t.Fatalf("truncation at byte %d accepted", i)
		}
	}
}
