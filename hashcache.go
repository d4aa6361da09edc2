// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/elementsproject/txscript/elwire"
)

// writeConfCommitment writes the serialized form of a confidential field to
// the buffer.  An empty commitment is the null field and writes the single
// null prefix byte.
func writeConfCommitment(b *bytes.Buffer, commitment []byte) {
	if len(commitment) == 0 {
		b.WriteByte(elwire.PrefixNull)
		return
	}
	b.Write(commitment)
}

// calcHashPrevOuts calculates a single hash of all the previous outputs
// (txid:index) referenced within the passed transaction. This calculated hash
// can be re-used when validating all inputs spending segwit outputs, with a
// signature hash type of SigHashAll. This allows validation to re-use previous
// hashing computation, reducing the complexity of validating SigHashAll inputs
// from  O(N^2) to O(N).
func calcHashPrevOuts(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		// First write out the 32-byte transaction ID one of whose
		// outputs are being referenced by this input.
		b.Write(in.PreviousOutPoint.Hash[:])

		// Next, we'll encode the index of the referenced output as a
		// little endian integer.  Note that the issuance and pegin
		// flag bits are never part of this digest.
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.PreviousOutPoint.Index)
		b.Write(buf[:])
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashSequence computes an aggregated hash of each of the sequence numbers
// within the inputs of the passed transaction. This single hash can be re-used
// when validating all inputs spending segwit outputs, which include signatures
// using the SigHashAll sighash type. This allows validation to re-use previous
// hashing computation, reducing the complexity of validating SigHashAll inputs
// from O(N^2) to O(N).
func calcHashSequence(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.Sequence)
		b.Write(buf[:])
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashIssuances computes an aggregated hash of the asset issuances
// attached to the inputs of the passed transaction.  An input carrying no
// issuance contributes a single null byte to the digest.
func calcHashIssuances(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		if in.HasIssuance() {
			_ = in.AssetIssuance.Serialize(&b)
		} else {
			b.WriteByte(0x00)
		}
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashOutputs computes a hash digest of all outputs created by the
// transaction encoded using the wire format. This single hash can be re-used
// when validating all inputs spending witness programs, which include
// signatures using the SigHashAll sighash type. This allows computation to be
// cached, reducing the total hashing complexity from O(N^2) to O(N).
func calcHashOutputs(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		_ = out.Serialize(&b)
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashRangeproofs computes a hash digest of the range and surjection
// proofs of all outputs created by the transaction.  It is committed to by
// version 0 witness signatures carrying the SigHashRangeproof bit, pinning
// the proofs the same way the outputs themselves are pinned.  Note the range
// proof precedes the surjection proof here, the reverse of the output
// witness wire encoding.
func calcHashRangeproofs(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		_ = wire.WriteVarBytes(&b, 0, out.Witness.RangeProof)
		_ = wire.WriteVarBytes(&b, 0, out.Witness.SurjectionProof)
	}

	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashOutpointFlags computes a hash digest of the single-byte issuance
// and pegin markers of every input.
func calcHashOutpointFlags(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		b.WriteByte(in.OutpointFlag())
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashIssuanceRangeproofs computes a hash digest of the issuance range
// proofs of every input: the issuance amount proof followed by the inflation
// keys proof, each as a var-length byte vector.
func calcHashIssuanceRangeproofs(tx *elwire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		_ = wire.WriteVarBytes(&b, 0, in.Witness.IssuanceAmountRangeProof)
		_ = wire.WriteVarBytes(&b, 0, in.Witness.InflationKeysRangeProof)
	}

	return chainhash.HashH(b.Bytes())
}

// calcOutputWitnessHashes computes the per-output single hash of each output
// witness along with the aggregate hash over all of them.  The per-output
// hashes are kept so SigHashSingle can commit to just its paired output's
// proofs.
func calcOutputWitnessHashes(tx *elwire.MsgTx) ([]chainhash.Hash, chainhash.Hash) {
	perOutput := make([]chainhash.Hash, len(tx.TxOut))

	var all bytes.Buffer
	for i, out := range tx.TxOut {
		var b bytes.Buffer
		_ = out.Witness.Serialize(&b)
		perOutput[i] = chainhash.HashH(b.Bytes())
		all.Write(b.Bytes())
	}

	return perOutput, chainhash.HashH(all.Bytes())
}

// PrevOutputFetcher is an interface used to supply the sighash cache with the
// previous output information needed to calculate the pre-computed sighash
// midstate for taproot transactions, and to feed the input inspection op
// codes.
type PrevOutputFetcher interface {
	// FetchPrevOutput attempts to fetch the previous output referenced by
	// the passed outpoint. A nil value will be returned if the passed
	// outpoint doesn't exist.
	FetchPrevOutput(wire.OutPoint) *elwire.TxOut
}

// CannedPrevOutputFetcher is an implementation of PrevOutputFetcher that only
// is able to return information for a single previous output.
type CannedPrevOutputFetcher struct {
	pkScript []byte
	value    elwire.ConfidentialValue
	asset    elwire.ConfidentialAsset
}

// NewCannedPrevOutputFetcher returns an instance of a CannedPrevOutputFetcher
// that can only return the TxOut defined by the passed script, confidential
// value, and confidential asset.
func NewCannedPrevOutputFetcher(script []byte, value elwire.ConfidentialValue,
	asset elwire.ConfidentialAsset) *CannedPrevOutputFetcher {

	return &CannedPrevOutputFetcher{
		pkScript: script,
		value:    value,
		asset:    asset,
	}
}

// FetchPrevOutput attempts to fetch the previous output referenced by the
// passed outpoint.
//
// NOTE: This is a part of the PrevOutputFetcher interface.
func (c *CannedPrevOutputFetcher) FetchPrevOutput(wire.OutPoint) *elwire.TxOut {
	return &elwire.TxOut{
		PkScript: c.pkScript,
		Value:    c.value,
		Asset:    c.asset,
	}
}

// A compile-time assertion to ensure that CannedPrevOutputFetcher matches the
// PrevOutputFetcher interface.
var _ PrevOutputFetcher = (*CannedPrevOutputFetcher)(nil)

// MultiPrevOutFetcher is a custom implementation of the PrevOutputFetcher
// backed by a key-value map of prevouts to outputs.
type MultiPrevOutFetcher struct {
	prevOuts map[wire.OutPoint]*elwire.TxOut
}

// NewMultiPrevOutFetcher returns an instance of a PrevOutputFetcher that's
// backed by an optional map which is used as an input source.
func NewMultiPrevOutFetcher(prevOuts map[wire.OutPoint]*elwire.TxOut) *MultiPrevOutFetcher {
	if prevOuts == nil {
		prevOuts = make(map[wire.OutPoint]*elwire.TxOut)
	}

	return &MultiPrevOutFetcher{
		prevOuts: prevOuts,
	}
}

// FetchPrevOutput attempts to fetch the previous output referenced by the
// passed outpoint.
//
// NOTE: This is a part of the PrevOutputFetcher interface.
func (m *MultiPrevOutFetcher) FetchPrevOutput(op wire.OutPoint) *elwire.TxOut {
	return m.prevOuts[op]
}

// AddPrevOut adds a new prev out, tx out pair to the backing map.
func (m *MultiPrevOutFetcher) AddPrevOut(op wire.OutPoint, txOut *elwire.TxOut) {
	m.prevOuts[op] = txOut
}

// Merge merges two instances of a MultiPrevOutFetcher into a single source.
func (m *MultiPrevOutFetcher) Merge(other *MultiPrevOutFetcher) {
	for k, v := range other.prevOuts {
		m.prevOuts[k] = v
	}
}

// A compile-time assertion to ensure that MultiPrevOutFetcher matches the
// PrevOutputFetcher interface.
var _ PrevOutputFetcher = (*MultiPrevOutFetcher)(nil)

// calcHashSpentAssetsAmounts computes a hash digest of the confidential
// asset and value of every output spent by the passed transaction.
func calcHashSpentAssetsAmounts(spentOutputs []*elwire.TxOut) chainhash.Hash {
	var b bytes.Buffer
	for _, prevOut := range spentOutputs {
		writeConfCommitment(&b, prevOut.Asset.Commitment)
		writeConfCommitment(&b, prevOut.Value.Commitment)
	}

	return chainhash.HashH(b.Bytes())
}

// calcHashSpentScripts computes the hash digest of all the previous input
// scripts referenced by the passed transaction.
func calcHashSpentScripts(spentOutputs []*elwire.TxOut) chainhash.Hash {
	var b bytes.Buffer
	for _, prevOut := range spentOutputs {
		_ = wire.WriteVarBytes(&b, 0, prevOut.PkScript)
	}

	return chainhash.HashH(b.Bytes())
}

// MissingDataBehavior selects how the sighash calculators react when the
// precomputed transaction data they need was never populated, typically
// because the previous outputs were unavailable when the cache was built.
type MissingDataBehavior int

const (
	// MissingDataFail reports missing precomputed data as a script error,
	// failing validation of the script cleanly.
	MissingDataFail MissingDataBehavior = iota

	// MissingDataPanic treats missing precomputed data as a programming
	// error and panics.  It is only appropriate for tests and for callers
	// that construct the cache and the engine together.
	MissingDataPanic
)

// SegwitSigHashMidstate is the sighash midstate used in the base segwit
// (version 0 witness) sighash calculation.  All digests are double-SHA256.
type SegwitSigHashMidstate struct {
	HashPrevOutsV0    chainhash.Hash
	HashSequenceV0    chainhash.Hash
	HashIssuanceV0    chainhash.Hash
	HashOutputsV0     chainhash.Hash
	HashRangeproofsV0 chainhash.Hash
}

// TaprootSigHashMidState is the sighash midstate used to compute taproot and
// tapscript signatures.  All digests are single-SHA256.
type TaprootSigHashMidState struct {
	HashPrevOutsV1            chainhash.Hash
	HashSequenceV1            chainhash.Hash
	HashIssuancesV1           chainhash.Hash
	HashOutputsV1             chainhash.Hash
	HashOutpointFlagsV1       chainhash.Hash
	HashIssuanceRangeproofsV1 chainhash.Hash
	HashOutputWitnessesV1     chainhash.Hash

	// HashSpentAssetsAmountsV1 and HashSpentScriptsV1 digest the outputs
	// being spent and require the previous output fetcher to know every
	// input's prevout.
	HashSpentAssetsAmountsV1 chainhash.Hash
	HashSpentScriptsV1       chainhash.Hash

	// OutputWitnessHashes holds the single hash of each output's witness
	// so SigHashSingle signatures can commit to just their paired
	// output's proofs.
	OutputWitnessHashes []chainhash.Hash
}

// TxSigHashes houses the partial set of sighashes that may be re-used within
// each input across a transaction when validating all inputs. As a result,
// validation complexity for SigHashAll can be reduced by a polynomial factor.
//
// Readiness of each midstate group is tracked explicitly and queried through
// the accessor methods, which report missing data as typed errors rather
// than producing digests over zero hashes.
type TxSigHashes struct {
	SegwitSigHashMidstate

	TaprootSigHashMidState

	// SegwitV0Ready reports whether the version 0 witness midstate was
	// populated.
	SegwitV0Ready bool

	// TaprootReady reports whether the taproot midstate, including the
	// spent output digests, was populated.
	TaprootReady bool

	// SpentOutputsReady reports whether every input's previous output
	// was available when the midstate was computed.
	SpentOutputsReady bool

	// MissingData selects the reaction of the accessors when a midstate
	// group was never populated.
	MissingData MissingDataBehavior

	// TxWeight is the weight of the transaction the midstate was
	// computed for, exposed to the transaction introspection op codes.
	TxWeight int64
}

// missingData reports the absence of a precomputed midstate group according
// to the configured behavior.
func (t *TxSigHashes) missingData(what string) error {
	str := fmt.Sprintf("precomputed %s sighash data is unavailable", what)
	if t.MissingData == MissingDataPanic {
		panic(str)
	}
	return scriptError(ErrSigHashMissingData, str)
}

// SegwitV0Midstate returns the version 0 witness midstate, or a typed error
// when it was never populated.
func (t *TxSigHashes) SegwitV0Midstate() (*SegwitSigHashMidstate, error) {
	if !t.SegwitV0Ready {
		return nil, t.missingData("segwit v0")
	}
	return &t.SegwitSigHashMidstate, nil
}

// TaprootMidstate returns the taproot midstate, or a typed error when the
// spent outputs needed to populate it were unavailable.
func (t *TxSigHashes) TaprootMidstate() (*TaprootSigHashMidState, error) {
	if !t.TaprootReady {
		return nil, t.missingData("taproot")
	}
	return &t.TaprootSigHashMidState, nil
}

// NewTxSigHashes computes, and returns the cached sighashes of the given
// transaction.  The version 0 witness midstate only depends on the
// transaction itself and is always populated.  The taproot midstate also
// commits to the outputs being spent, so it is only populated when the
// passed fetcher can resolve every input's previous output.
func NewTxSigHashes(tx *elwire.MsgTx,
	inputFetcher PrevOutputFetcher) *TxSigHashes {

	var (
		sigHashes TxSigHashes
		zeroHash  chainhash.Hash
	)

	// The shared digests are computed once with a single sha256
	// invocation, which is the form the taproot sighash consumes.  The
	// version 0 witness sighash consumes the double hash, obtained by
	// hashing the single hash once more.
	sigHashes.HashPrevOutsV1 = calcHashPrevOuts(tx)
	sigHashes.HashSequenceV1 = calcHashSequence(tx)
	sigHashes.HashIssuancesV1 = calcHashIssuances(tx)
	sigHashes.HashOutputsV1 = calcHashOutputs(tx)

	sigHashes.HashPrevOutsV0 = chainhash.HashH(sigHashes.HashPrevOutsV1[:])
	sigHashes.HashSequenceV0 = chainhash.HashH(sigHashes.HashSequenceV1[:])
	sigHashes.HashIssuanceV0 = chainhash.HashH(sigHashes.HashIssuancesV1[:])
	sigHashes.HashOutputsV0 = chainhash.HashH(sigHashes.HashOutputsV1[:])

	sigHashes.HashRangeproofsV0 = calcHashRangeproofs(tx)
	sigHashes.SegwitV0Ready = true

	// The remaining taproot digests depend only on the transaction.
	sigHashes.HashOutpointFlagsV1 = calcHashOutpointFlags(tx)
	sigHashes.HashIssuanceRangeproofsV1 = calcHashIssuanceRangeproofs(tx)
	sigHashes.OutputWitnessHashes, sigHashes.HashOutputWitnessesV1 =
		calcOutputWitnessHashes(tx)
	sigHashes.TxWeight = tx.Weight()

	// Finally, gather the spent outputs.  If any of them cannot be
	// resolved, the taproot midstate stays unpopulated and taproot
	// signature checks against this cache will fail with a typed error.
	spentOutputs := make([]*elwire.TxOut, 0, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		// Coinbase inputs spend nothing.
		outpoint := txIn.PreviousOutPoint
		if outpoint.Index == 0xffffffff && outpoint.Hash == zeroHash {
			return &sigHashes
		}

		var prevOut *elwire.TxOut
		if inputFetcher != nil {
			prevOut = inputFetcher.FetchPrevOutput(outpoint)
		}
		if prevOut == nil {
			return &sigHashes
		}
		spentOutputs = append(spentOutputs, prevOut)
	}

	sigHashes.HashSpentAssetsAmountsV1 = calcHashSpentAssetsAmounts(
		spentOutputs,
	)
	sigHashes.HashSpentScriptsV1 = calcHashSpentScripts(spentOutputs)
	sigHashes.SpentOutputsReady = true
	sigHashes.TaprootReady = true

	return &sigHashes
}

// HashCache houses a set of partial sighashes keyed by txid. The set of
// partial sighashes are those used by the more efficient sighash digest
// calculation algorithms. Using this threadsafe shared cache, multiple
// goroutines can safely re-use the pre-computed partial sighashes speeding
// up validation time amongst all inputs found within a block.
type HashCache struct {
	sigHashes map[chainhash.Hash]*TxSigHashes

	sync.RWMutex
}

// NewHashCache returns a new instance of the HashCache given a maximum number
// of entries which may exist within it at anytime.
func NewHashCache(maxSize uint) *HashCache {
	return &HashCache{
		sigHashes: make(map[chainhash.Hash]*TxSigHashes, maxSize),
	}
}

// AddSigHashes computes, then adds the partial sighashes for the passed
// transaction.
func (h *HashCache) AddSigHashes(tx *elwire.MsgTx,
	inputFetcher PrevOutputFetcher) {

	h.Lock()
	h.sigHashes[tx.TxHash()] = NewTxSigHashes(tx, inputFetcher)
	h.Unlock()
}

// ContainsHashes returns true if the partial sighashes for the passed
// transaction currently exist within the HashCache, and false otherwise.
func (h *HashCache) ContainsHashes(txid *chainhash.Hash) bool {
	h.RLock()
	_, found := h.sigHashes[*txid]
	h.RUnlock()

	return found
}

// GetSigHashes possibly returns the previously cached partial sighashes for
// the passed transaction. This function also returns an additional boolean
// value indicating if the sighashes for the passed transaction were found to
// be present within the HashCache.
func (h *HashCache) GetSigHashes(txid *chainhash.Hash) (*TxSigHashes, bool) {
	h.RLock()
	item, found := h.sigHashes[*txid]
	h.RUnlock()

	return item, found
}

// PurgeSigHashes removes all partial sighashes from the HashCache belonging to
// the passed transaction.
func (h *HashCache) PurgeSigHashes(txid *chainhash.Hash) {
	h.Lock()
	delete(h.sigHashes, *txid)
	h.Unlock()
}
