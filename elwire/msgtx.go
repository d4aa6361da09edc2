// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package elwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// OutpointIssuanceFlag is set in the serialized outpoint index of an
	// input that carries a new asset issuance or reissuance.
	OutpointIssuanceFlag = uint32(1) << 31

	// OutpointPeginFlag is set in the serialized outpoint index of an
	// input that claims a pegin from the parent chain.
	OutpointPeginFlag = uint32(1) << 30

	// OutpointIndexMask retains the actual output index from a serialized
	// outpoint index carrying the flags above.
	OutpointIndexMask = 0x3fffffff
)

const (
	// WitnessScaleFactor determines the level of "discount" witness data
	// receives compared to regular data when computing transaction weight.
	WitnessScaleFactor = 4

	// maxWitnessItemSize is the maximum allowed size of a single item
	// within an input or output witness.  Range proofs dominate this
	// bound.
	maxWitnessItemSize = 4_000_000

	// maxTxInPerMessage and maxTxOutPerMessage cap the input/output
	// counts read from the wire before allocating, preventing memory
	// exhaustion from forged counts.
	maxTxInPerMessage  = 50_000
	maxTxOutPerMessage = 50_000
)

// protocol version passed to the btcd wire varint/varbytes helpers.  The
// encoding of these primitives does not vary with it.
const pver = 0

// AssetIssuance describes a new asset issuance or a reissuance attached to
// a transaction input.
type AssetIssuance struct {
	// BlindingNonce is zero for new issuances.  For reissuances it is
	// the blinding factor of the original issuance output.
	BlindingNonce [32]byte

	// Entropy commits to the issuing outpoint and the issuer-chosen
	// contract hash for new issuances, and carries the original asset
	// entropy for reissuances.
	Entropy [32]byte

	// Amount is the issued amount of the asset, possibly blinded.
	Amount ConfidentialValue

	// InflationKeys is the issued amount of reissuance tokens, possibly
	// blinded.  Always null for reissuances.
	InflationKeys ConfidentialValue
}

// IsNull returns whether the input carries no issuance at all.
func (a *AssetIssuance) IsNull() bool {
	return a.Amount.IsNull() && a.InflationKeys.IsNull() &&
		a.BlindingNonce == [32]byte{} && a.Entropy == [32]byte{}
}

// Serialize writes the issuance in its wire encoding.
func (a *AssetIssuance) Serialize(w io.Writer) error {
	if _, err := w.Write(a.BlindingNonce[:]); err != nil {
		return err
	}
	if _, err := w.Write(a.Entropy[:]); err != nil {
		return err
	}
	if err := writeConfField(w, a.Amount.Commitment); err != nil {
		return err
	}
	return writeConfField(w, a.InflationKeys.Commitment)
}

// Deserialize reads the issuance from its wire encoding.
func (a *AssetIssuance) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, a.BlindingNonce[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, a.Entropy[:]); err != nil {
		return err
	}
	amount, err := readConfField(r, confValue)
	if err != nil {
		return err
	}
	a.Amount.Commitment = amount
	keys, err := readConfField(r, confValue)
	if err != nil {
		return err
	}
	a.InflationKeys.Commitment = keys
	return nil
}

// SerializeSize returns the number of bytes the issuance occupies on the
// wire.
func (a *AssetIssuance) SerializeSize() int {
	return 64 + confFieldSerializeSize(a.Amount.Commitment) +
		confFieldSerializeSize(a.InflationKeys.Commitment)
}

// TxInWitness holds the witness data of a single transaction input.
type TxInWitness struct {
	// IssuanceAmountRangeProof proves the blinded issuance amount is in
	// range.
	IssuanceAmountRangeProof []byte

	// InflationKeysRangeProof proves the blinded reissuance token amount
	// is in range.
	InflationKeysRangeProof []byte

	// ScriptWitness is the witness stack satisfying the previous output
	// script.
	ScriptWitness wire.TxWitness

	// PeginWitness carries the pegin claim data for pegin inputs.
	PeginWitness wire.TxWitness
}

// IsNull returns whether every component of the input witness is empty.
func (t *TxInWitness) IsNull() bool {
	return len(t.IssuanceAmountRangeProof) == 0 &&
		len(t.InflationKeysRangeProof) == 0 &&
		len(t.ScriptWitness) == 0 && len(t.PeginWitness) == 0
}

// Serialize writes the input witness in its wire encoding.
func (t *TxInWitness) Serialize(w io.Writer) error {
	err := wire.WriteVarBytes(w, pver, t.IssuanceAmountRangeProof)
	if err != nil {
		return err
	}
	err = wire.WriteVarBytes(w, pver, t.InflationKeysRangeProof)
	if err != nil {
		return err
	}
	if err := writeWitnessStack(w, t.ScriptWitness); err != nil {
		return err
	}
	return writeWitnessStack(w, t.PeginWitness)
}

// Deserialize reads the input witness from its wire encoding.
func (t *TxInWitness) Deserialize(r io.Reader) error {
	var err error
	t.IssuanceAmountRangeProof, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "issuance amount range proof",
	)
	if err != nil {
		return err
	}
	t.InflationKeysRangeProof, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "inflation keys range proof",
	)
	if err != nil {
		return err
	}
	t.ScriptWitness, err = readWitnessStack(r)
	if err != nil {
		return err
	}
	t.PeginWitness, err = readWitnessStack(r)
	return err
}

// SerializeSize returns the number of bytes the input witness occupies on
// the wire.
func (t *TxInWitness) SerializeSize() int {
	n := wire.VarIntSerializeSize(uint64(len(t.IssuanceAmountRangeProof))) +
		len(t.IssuanceAmountRangeProof)
	n += wire.VarIntSerializeSize(uint64(len(t.InflationKeysRangeProof))) +
		len(t.InflationKeysRangeProof)
	n += t.ScriptWitness.SerializeSize()
	n += t.PeginWitness.SerializeSize()
	return n
}

// TxOutWitness holds the witness data of a single transaction output.
type TxOutWitness struct {
	// SurjectionProof proves the output asset commitment maps to one of
	// the input assets.
	SurjectionProof []byte

	// RangeProof proves the blinded output amount is in range.
	RangeProof []byte
}

// IsNull returns whether both proofs are empty.
func (t *TxOutWitness) IsNull() bool {
	return len(t.SurjectionProof) == 0 && len(t.RangeProof) == 0
}

// Serialize writes the output witness in its wire encoding.
func (t *TxOutWitness) Serialize(w io.Writer) error {
	if err := wire.WriteVarBytes(w, pver, t.SurjectionProof); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, t.RangeProof)
}

// Deserialize reads the output witness from its wire encoding.
func (t *TxOutWitness) Deserialize(r io.Reader) error {
	var err error
	t.SurjectionProof, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "surjection proof",
	)
	if err != nil {
		return err
	}
	t.RangeProof, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "range proof",
	)
	return err
}

// SerializeSize returns the number of bytes the output witness occupies on
// the wire.
func (t *TxOutWitness) SerializeSize() int {
	return wire.VarIntSerializeSize(uint64(len(t.SurjectionProof))) +
		len(t.SurjectionProof) +
		wire.VarIntSerializeSize(uint64(len(t.RangeProof))) +
		len(t.RangeProof)
}

// TxIn defines a confidential transaction input.
type TxIn struct {
	PreviousOutPoint wire.OutPoint
	SignatureScript  []byte
	Sequence         uint32

	// IsPegin marks the input as a pegin claim from the parent chain.
	IsPegin bool

	// AssetIssuance is the issuance attached to this input, null when
	// the input issues nothing.
	AssetIssuance AssetIssuance

	// Witness is the input's witness section.
	Witness TxInWitness
}

// HasIssuance returns whether the input carries a non-null asset issuance.
func (t *TxIn) HasIssuance() bool {
	return !t.AssetIssuance.IsNull()
}

// OutpointFlag returns the single-byte encoding of the input's issuance
// and pegin markers, as committed to by the taproot signature hash.
func (t *TxIn) OutpointFlag() byte {
	var flag byte
	if t.HasIssuance() {
		flag |= byte(OutpointIssuanceFlag >> 24)
	}
	if t.IsPegin {
		flag |= byte(OutpointPeginFlag >> 24)
	}
	return flag
}

// NewTxIn returns a new confidential transaction input with the provided
// previous outpoint and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *wire.OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         wire.MaxTxInSequenceNum,
	}
}

// TxOut defines a confidential transaction output.
type TxOut struct {
	Asset    ConfidentialAsset
	Value    ConfidentialValue
	Nonce    ConfidentialNonce
	PkScript []byte

	// Witness is the output's witness section.
	Witness TxOutWitness
}

// NewTxOut returns a new explicit (unblinded) transaction output for the
// provided asset id, amount, and spending script.
func NewTxOut(assetID []byte, amount int64, pkScript []byte) *TxOut {
	return &TxOut{
		Asset:    NewExplicitAsset(assetID),
		Value:    NewExplicitValue(amount),
		PkScript: pkScript,
	}
}

// Serialize writes the output body (asset, value, nonce, script) in its
// wire encoding.  The output witness is serialized separately.
func (t *TxOut) Serialize(w io.Writer) error {
	if err := writeConfField(w, t.Asset.Commitment); err != nil {
		return err
	}
	if err := writeConfField(w, t.Value.Commitment); err != nil {
		return err
	}
	if err := writeConfField(w, t.Nonce.Commitment); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, t.PkScript)
}

// Deserialize reads the output body from its wire encoding.
func (t *TxOut) Deserialize(r io.Reader) error {
	asset, err := readConfField(r, confAsset)
	if err != nil {
		return err
	}
	t.Asset.Commitment = asset
	value, err := readConfField(r, confValue)
	if err != nil {
		return err
	}
	t.Value.Commitment = value
	nonce, err := readConfField(r, confNonce)
	if err != nil {
		return err
	}
	t.Nonce.Commitment = nonce
	t.PkScript, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "public key script",
	)
	return err
}

// SerializeSize returns the number of bytes the output body occupies on
// the wire.
func (t *TxOut) SerializeSize() int {
	return confFieldSerializeSize(t.Asset.Commitment) +
		confFieldSerializeSize(t.Value.Commitment) +
		confFieldSerializeSize(t.Nonce.Commitment) +
		wire.VarIntSerializeSize(uint64(len(t.PkScript))) +
		len(t.PkScript)
}

// MsgTx implements a confidential-asset transaction.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction message with the provided version and
// no inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness returns whether any input or output of the transaction
// carries witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if !txIn.Witness.IsNull() {
			return true
		}
	}
	for _, txOut := range msg.TxOut {
		if !txOut.Witness.IsNull() {
			return true
		}
	}
	return false
}

// TxHash generates the hash of the transaction identity, which never
// includes witness data.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSizeStripped())
	_ = msg.serialize(&buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash generates the hash of the complete serialization including
// all witness data.  For transactions without witness data this is equal
// to TxHash.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize writes the transaction including witness data when present.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, msg.HasWitness())
}

// SerializeNoWitness writes the transaction with all witness data
// stripped.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.serialize(w, false)
}

func (msg *MsgTx) serialize(w io.Writer, withWitness bool) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(msg.Version))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	// A single flag byte follows the version.  Bit 0 signals that the
	// input and output witness sections trail the locktime.
	var flags byte
	if withWitness {
		flags = 0x01
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return err
	}

	err := wire.WriteVarInt(w, pver, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, txIn := range msg.TxIn {
		if err := writeTxIn(w, txIn); err != nil {
			return err
		}
	}

	err = wire.WriteVarInt(w, pver, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, txOut := range msg.TxOut {
		if err := txOut.Serialize(w); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(buf[:], msg.LockTime)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if withWitness {
		for _, txIn := range msg.TxIn {
			if err := txIn.Witness.Serialize(w); err != nil {
				return err
			}
		}
		for _, txOut := range msg.TxOut {
			if err := txOut.Witness.Serialize(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Deserialize reads the transaction from its wire encoding.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.Version = int32(binary.LittleEndian.Uint32(buf[:]))

	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return err
	}
	if flags[0]&^0x01 != 0 {
		return fmt.Errorf("unknown transaction flags 0x%02x", flags[0])
	}

	count, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxTxInPerMessage {
		return fmt.Errorf("too many inputs to fit into max message size "+
			"[count %d, max %d]", count, maxTxInPerMessage)
	}
	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := new(TxIn)
		if err := readTxIn(r, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = wire.ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > maxTxOutPerMessage {
		return fmt.Errorf("too many outputs to fit into max message size "+
			"[count %d, max %d]", count, maxTxOutPerMessage)
	}
	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := new(TxOut)
		if err := to.Deserialize(r); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.LockTime = binary.LittleEndian.Uint32(buf[:])

	if flags[0]&0x01 != 0 {
		for _, txIn := range msg.TxIn {
			if err := txIn.Witness.Deserialize(r); err != nil {
				return err
			}
		}
		for _, txOut := range msg.TxOut {
			if err := txOut.Witness.Deserialize(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// SerializeSize returns the number of bytes the transaction occupies on
// the wire including witness data when present.
func (msg *MsgTx) SerializeSize() int {
	return msg.serializeSize(msg.HasWitness())
}

// SerializeSizeStripped returns the number of bytes the transaction
// occupies on the wire with all witness data stripped.
func (msg *MsgTx) SerializeSizeStripped() int {
	return msg.serializeSize(false)
}

func (msg *MsgTx) serializeSize(withWitness bool) int {
	// Version 4 bytes + flag 1 byte + LockTime 4 bytes + serialized
	// varint sizes for the number of inputs and outputs.
	n := 9 + wire.VarIntSerializeSize(uint64(len(msg.TxIn))) +
		wire.VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txInSerializeSize(txIn)
	}
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}
	if withWitness {
		for _, txIn := range msg.TxIn {
			n += txIn.Witness.SerializeSize()
		}
		for _, txOut := range msg.TxOut {
			n += txOut.Witness.SerializeSize()
		}
	}
	return n
}

// Weight returns the weight units of the transaction: the stripped size
// counted WitnessScaleFactor times plus the witness data counted once.
func (msg *MsgTx) Weight() int64 {
	baseSize := msg.SerializeSizeStripped()
	totalSize := msg.SerializeSize()
	return int64((baseSize * (WitnessScaleFactor - 1)) + totalSize)
}

// Copy creates a deep copy of the transaction so the original and the copy
// can be safely mutated independently.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
	}
	for _, oldTxIn := range msg.TxIn {
		newTxIn := &TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  copyBytes(oldTxIn.SignatureScript),
			Sequence:         oldTxIn.Sequence,
			IsPegin:          oldTxIn.IsPegin,
			AssetIssuance: AssetIssuance{
				BlindingNonce: oldTxIn.AssetIssuance.BlindingNonce,
				Entropy:       oldTxIn.AssetIssuance.Entropy,
				Amount: ConfidentialValue{
					Commitment: copyBytes(oldTxIn.AssetIssuance.Amount.Commitment),
				},
				InflationKeys: ConfidentialValue{
					Commitment: copyBytes(oldTxIn.AssetIssuance.InflationKeys.Commitment),
				},
			},
			Witness: TxInWitness{
				IssuanceAmountRangeProof: copyBytes(oldTxIn.Witness.IssuanceAmountRangeProof),
				InflationKeysRangeProof:  copyBytes(oldTxIn.Witness.InflationKeysRangeProof),
				ScriptWitness:            copyWitnessStack(oldTxIn.Witness.ScriptWitness),
				PeginWitness:             copyWitnessStack(oldTxIn.Witness.PeginWitness),
			},
		}
		newTx.TxIn = append(newTx.TxIn, newTxIn)
	}
	for _, oldTxOut := range msg.TxOut {
		newTxOut := &TxOut{
			Asset:    ConfidentialAsset{Commitment: copyBytes(oldTxOut.Asset.Commitment)},
			Value:    ConfidentialValue{Commitment: copyBytes(oldTxOut.Value.Commitment)},
			Nonce:    ConfidentialNonce{Commitment: copyBytes(oldTxOut.Nonce.Commitment)},
			PkScript: copyBytes(oldTxOut.PkScript),
			Witness: TxOutWitness{
				SurjectionProof: copyBytes(oldTxOut.Witness.SurjectionProof),
				RangeProof:      copyBytes(oldTxOut.Witness.RangeProof),
			},
		}
		newTx.TxOut = append(newTx.TxOut, newTxOut)
	}
	return &newTx
}

// WriteOutPoint writes an outpoint in its plain wire encoding, without the
// issuance and pegin flag bits.
func WriteOutPoint(w io.Writer, op *wire.OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], op.Index)
	_, err := w.Write(buf[:])
	return err
}

// readOutPoint reads a plain outpoint.
func readOutPoint(r io.Reader, op *wire.OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	op.Index = binary.LittleEndian.Uint32(buf[:])
	return nil
}

// writeTxIn writes an input in its wire encoding.  The issuance and pegin
// markers are folded into the outpoint index, except for the null outpoint
// which is always serialized as-is.
func writeTxIn(w io.Writer, ti *TxIn) error {
	outpoint := ti.PreviousOutPoint
	if !isNullOutPoint(&outpoint) {
		outpoint.Index &= OutpointIndexMask
		if ti.HasIssuance() {
			outpoint.Index |= OutpointIssuanceFlag
		}
		if ti.IsPegin {
			outpoint.Index |= OutpointPeginFlag
		}
	}
	if err := WriteOutPoint(w, &outpoint); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], ti.Sequence)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if ti.HasIssuance() {
		return ti.AssetIssuance.Serialize(w)
	}
	return nil
}

// readTxIn reads an input from its wire encoding.
func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}

	var hasIssuance bool
	if !isNullOutPoint(&ti.PreviousOutPoint) {
		idx := ti.PreviousOutPoint.Index
		hasIssuance = idx&OutpointIssuanceFlag != 0
		ti.IsPegin = idx&OutpointPeginFlag != 0
		ti.PreviousOutPoint.Index = idx & OutpointIndexMask
	}

	var err error
	ti.SignatureScript, err = wire.ReadVarBytes(
		r, pver, maxWitnessItemSize, "signature script",
	)
	if err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	ti.Sequence = binary.LittleEndian.Uint32(buf[:])

	if hasIssuance {
		return ti.AssetIssuance.Deserialize(r)
	}
	return nil
}

// txInSerializeSize returns the number of bytes the input body occupies on
// the wire.
func txInSerializeSize(ti *TxIn) int {
	// Outpoint hash 32 bytes + index 4 bytes + sequence 4 bytes.
	n := 40 + wire.VarIntSerializeSize(uint64(len(ti.SignatureScript))) +
		len(ti.SignatureScript)
	if ti.HasIssuance() {
		n += ti.AssetIssuance.SerializeSize()
	}
	return n
}

// isNullOutPoint reports whether the outpoint is the coinbase marker.
func isNullOutPoint(op *wire.OutPoint) bool {
	return op.Index == 0xffffffff && op.Hash == chainhash.Hash{}
}

// writeWitnessStack writes a witness stack (item count followed by
// var-length items).
func writeWitnessStack(w io.Writer, stack wire.TxWitness) error {
	err := wire.WriteVarInt(w, pver, uint64(len(stack)))
	if err != nil {
		return err
	}
	for _, item := range stack {
		if err := wire.WriteVarBytes(w, pver, item); err != nil {
			return err
		}
	}
	return nil
}

// readWitnessStack reads a witness stack.
func readWitnessStack(r io.Reader) (wire.TxWitness, error) {
	count, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if count > maxTxInPerMessage {
		return nil, fmt.Errorf("too many witness items [count %d]", count)
	}
	stack := make(wire.TxWitness, count)
	for i := range stack {
		stack[i], err = wire.ReadVarBytes(
			r, pver, maxWitnessItemSize, "witness item",
		)
		if err != nil {
			return nil, err
		}
	}
	return stack, nil
}

// copyBytes returns a copy of the slice, or nil for an empty slice.
func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// copyWitnessStack deep-copies a witness stack.
func copyWitnessStack(stack wire.TxWitness) wire.TxWitness {
	if stack == nil {
		return nil
	}
	c := make(wire.TxWitness, len(stack))
	for i, item := range stack {
		c[i] = copyBytes(item)
	}
	return c
}
