// Copyright (c) 2013-2022 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/elementsproject/txscript/elwire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashDefault      SigHashType = 0x00
	SigHashAll          SigHashType = 0x01
	SigHashNone         SigHashType = 0x02
	SigHashSingle       SigHashType = 0x03
	SigHashRangeproof   SigHashType = 0x40
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is
	// used to identify which outputs are signed.
	sigHashMask = 0x1f

	// sigHashOutputMask and sigHashInputMask split a taproot hash type
	// byte into its output and input halves.
	sigHashOutputMask = 0x03
	sigHashInputMask  = 0x80
)

// uint256One is the signature hash produced by the original scheme when
// SigHashSingle is used with an input index that has no matching output.
// The value is committed to by deployed signatures and must be reproduced
// bit for bit.
var uint256One = [32]byte{0x01}

// calcSignatureHash computes the signature hash for the specified input of
// the target transaction observing the desired signature hash type.  The
// committed output serialization is extended with each output's proofs only
// when the SigHashRangeproof bit is set AND the rangeproof sighash is active
// for the validation context; a signature carrying the bit on a chain that
// never activated it hashes the base message.
func calcSignatureHash(sigScript []byte, hashType SigHashType,
	tx *elwire.MsgTx, idx int, rangeproofActive bool) []byte {

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.
	//
	// A bug in the original Satoshi client implementation means that in
	// this case the hash of the value one is signed instead of failing.
	// The behavior is kept for compatibility with existing signatures.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		copy(hash[:], uint256One[:])
		return hash[:]
	}

	rangeproof := rangeproofActive && hashType&SigHashRangeproof != 0

	// Remove all instances of OP_CODESEPARATOR from the script.
	sigScript = removeOpcodeRaw(sigScript, OP_CODESEPARATOR)

	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	hashSingle := hashType&sigHashMask == SigHashSingle
	hashNone := hashType&sigHashMask == SigHashNone

	var sigMsg bytes.Buffer
	var scratch [4]byte

	// Commit to the version of the transaction.
	binary.LittleEndian.PutUint32(scratch[:], uint32(tx.Version))
	sigMsg.Write(scratch[:])

	// Commit to the relevant inputs.  With SigHashAnyOneCanPay, only the
	// input being signed is committed to; otherwise all inputs are, with
	// the other inputs' signature scripts blanked.
	numIns := len(tx.TxIn)
	if anyoneCanPay {
		numIns = 1
	}
	_ = wire.WriteVarInt(&sigMsg, 0, uint64(numIns))
	for i := 0; i < numIns; i++ {
		txInIdx := i
		if anyoneCanPay {
			txInIdx = idx
		}
		txIn := tx.TxIn[txInIdx]

		_ = elwire.WriteOutPoint(&sigMsg, &txIn.PreviousOutPoint)

		if txInIdx == idx {
			_ = wire.WriteVarBytes(&sigMsg, 0, sigScript)
		} else {
			_ = wire.WriteVarBytes(&sigMsg, 0, nil)
		}

		// With SigHashNone and SigHashSingle the other inputs'
		// sequence numbers are left free to update.
		sequence := txIn.Sequence
		if txInIdx != idx && (hashSingle || hashNone) {
			sequence = 0
		}
		binary.LittleEndian.PutUint32(scratch[:], sequence)
		sigMsg.Write(scratch[:])

		// An input carrying an issuance commits to it; inputs without
		// one contribute nothing here.
		if txIn.HasIssuance() {
			_ = txIn.AssetIssuance.Serialize(&sigMsg)
		}
	}

	// Commit to the relevant outputs: none for SigHashNone, the matching
	// output for SigHashSingle (with all earlier outputs blanked), and
	// every output otherwise.
	numOuts := len(tx.TxOut)
	if hashNone {
		numOuts = 0
	} else if hashSingle {
		numOuts = idx + 1
	}
	_ = wire.WriteVarInt(&sigMsg, 0, uint64(numOuts))
	for i := 0; i < numOuts; i++ {
		if hashSingle && i != idx {
			var blank elwire.TxOut
			_ = blank.Serialize(&sigMsg)
			continue
		}

		_ = tx.TxOut[i].Serialize(&sigMsg)

		if rangeproof {
			_ = wire.WriteVarBytes(
				&sigMsg, 0, tx.TxOut[i].Witness.RangeProof,
			)
			_ = wire.WriteVarBytes(
				&sigMsg, 0, tx.TxOut[i].Witness.SurjectionProof,
			)
		}
	}

	// Finally commit to the lock time and the hash type.
	binary.LittleEndian.PutUint32(scratch[:], tx.LockTime)
	sigMsg.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], uint32(hashType))
	sigMsg.Write(scratch[:])

	return chainhash.DoubleHashB(sigMsg.Bytes())
}

// CalcSignatureHash computes the signature hash for the specified input of
// the target transaction observing the desired signature hash type.  The
// SigHashRangeproof bit is honored as requested: a signer setting the bit
// always intends to commit to the output proofs.  Consensus validation goes
// through the engine, which additionally requires the corresponding script
// flag before the bit takes effect.
func CalcSignatureHash(script []byte, hashType SigHashType,
	tx *elwire.MsgTx, idx int) ([]byte, error) {

	const scriptVersion = 0
	if err := checkScriptParses(scriptVersion, script); err != nil {
		return nil, err
	}

	return calcSignatureHash(script, hashType, tx, idx, true), nil
}

// calcWitnessSignatureHashRaw computes the sighash digest of a transaction's
// input spending a version 0 witness program using the fixed-size digest
// scheme.  This scheme commits to the spent confidential value, replacing
// the quadratic full-transaction re-serialization of the earlier algorithm.
// The output proofs are additionally committed to only when the
// SigHashRangeproof bit is set AND the rangeproof sighash is active for the
// validation context.
func calcWitnessSignatureHashRaw(subScript []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *elwire.MsgTx, idx int,
	amount elwire.ConfidentialValue, rangeproofActive bool) ([]byte, error) {

	// As a sanity check, ensure the passed input index for the transaction
	// is valid.
	if idx > len(tx.TxIn)-1 {
		return nil, fmt.Errorf("idx %d but %d txins", idx, len(tx.TxIn))
	}
	txIn := tx.TxIn[idx]

	// The spent value must be known; a signature that doesn't commit to
	// the value being spent defeats the purpose of this scheme.
	if amount.IsNull() {
		str := fmt.Sprintf("spent value unavailable for input %d", idx)
		return nil, scriptError(ErrSigHashMissingData, str)
	}

	rangeproof := rangeproofActive && hashType&SigHashRangeproof != 0
	cacheReady := sigHashes != nil && sigHashes.SegwitV0Ready

	var sigMsg bytes.Buffer
	var scratch [4]byte

	// First write out, then encode the transaction's version number.
	binary.LittleEndian.PutUint32(scratch[:], uint32(tx.Version))
	sigMsg.Write(scratch[:])

	// Next write out the possibly pre-calculated hashes for the previous
	// outs, the sequence numbers, and the issuances of all inputs.  When
	// the hash type leaves a field uncommitted, the zero hash stands in.
	var zeroHash chainhash.Hash

	// If anyone can pay isn't active, then we can use the cached
	// hashPrevOuts, otherwise we just write zeroes for the prev outs.
	if hashType&SigHashAnyOneCanPay == 0 {
		if cacheReady {
			sigMsg.Write(sigHashes.HashPrevOutsV0[:])
		} else {
			single := calcHashPrevOuts(tx)
			double := chainhash.HashH(single[:])
			sigMsg.Write(double[:])
		}
	} else {
		sigMsg.Write(zeroHash[:])
	}

	// If the sighash isn't anyone can pay, single, or none, then use the
	// cached hash sequences, otherwise write all zeroes for the
	// hashSequence.
	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		if cacheReady {
			sigMsg.Write(sigHashes.HashSequenceV0[:])
		} else {
			single := calcHashSequence(tx)
			double := chainhash.HashH(single[:])
			sigMsg.Write(double[:])
		}
	} else {
		sigMsg.Write(zeroHash[:])
	}

	// The issuance digest is pinned by every signature that commits to
	// its fellow inputs.
	if hashType&SigHashAnyOneCanPay == 0 {
		if cacheReady {
			sigMsg.Write(sigHashes.HashIssuanceV0[:])
		} else {
			single := calcHashIssuances(tx)
			double := chainhash.HashH(single[:])
			sigMsg.Write(double[:])
		}
	} else {
		sigMsg.Write(zeroHash[:])
	}

	// Next, write the outpoint being spent.
	_ = elwire.WriteOutPoint(&sigMsg, &txIn.PreviousOutPoint)

	// For p2wsh outputs, and future outputs, the script code is the
	// original script, with all code separators removed, serialized with a
	// var int length prefix.
	_ = wire.WriteVarBytes(&sigMsg, 0, subScript)

	// Next, commit to the spent confidential value directly.  The value
	// may be an explicit amount or a commitment; the signature pins
	// whichever form the spent output carries.
	writeConfCommitment(&sigMsg, amount.Commitment)

	// Next, add the input's sequence number.
	binary.LittleEndian.PutUint32(scratch[:], txIn.Sequence)
	sigMsg.Write(scratch[:])

	// An issuance performed by this input is always committed to, no
	// matter the hash type.
	if txIn.HasIssuance() {
		_ = txIn.AssetIssuance.Serialize(&sigMsg)
	}

	// If the current signature mode isn't single, or none, then we can
	// re-use the pre-generated hashoutputs sighash fragment. Otherwise,
	// we'll serialize and add only the target output index to the
	// signature pre-image.
	var hashOutputs, hashRangeproofs chainhash.Hash
	if hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		if cacheReady {
			hashOutputs = sigHashes.HashOutputsV0
		} else {
			single := calcHashOutputs(tx)
			hashOutputs = chainhash.HashH(single[:])
		}

		if rangeproof {
			if cacheReady {
				hashRangeproofs = sigHashes.HashRangeproofsV0
			} else {
				hashRangeproofs = calcHashRangeproofs(tx)
			}
		}
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		_ = tx.TxOut[idx].Serialize(&b)
		hashOutputs = chainhash.DoubleHashH(b.Bytes())

		if rangeproof {
			var p bytes.Buffer
			_ = wire.WriteVarBytes(
				&p, 0, tx.TxOut[idx].Witness.RangeProof,
			)
			_ = wire.WriteVarBytes(
				&p, 0, tx.TxOut[idx].Witness.SurjectionProof,
			)
			hashRangeproofs = chainhash.DoubleHashH(p.Bytes())
		}
	}
	sigMsg.Write(hashOutputs[:])

	// The proof commitment is conditional because the bit was deployed
	// after the base scheme was specified.
	if rangeproof {
		sigMsg.Write(hashRangeproofs[:])
	}

	// Finally, write out the transaction's locktime, and the sig hash
	// type.
	binary.LittleEndian.PutUint32(scratch[:], tx.LockTime)
	sigMsg.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], uint32(hashType))
	sigMsg.Write(scratch[:])

	return chainhash.DoubleHashB(sigMsg.Bytes()), nil
}

// CalcWitnessSigHash computes the sighash digest for the specified input of
// the target transaction observing the desired sig hash type.  As with
// CalcSignatureHash, the SigHashRangeproof bit is honored as requested;
// consensus validation gates the bit on the engine's script flags.
func CalcWitnessSigHash(script []byte, sigHashes *TxSigHashes,
	hType SigHashType, tx *elwire.MsgTx, idx int,
	amount elwire.ConfidentialValue) ([]byte, error) {

	const scriptVersion = 0
	if err := checkScriptParses(scriptVersion, script); err != nil {
		return nil, err
	}

	return calcWitnessSignatureHashRaw(
		script, sigHashes, hType, tx, idx, amount, true,
	)
}

// sigHashExtFlag represents the sig hash extension flag as defined in the
// taproot signature message extensions.  The extension marks the message
// being signed as having extra information that should be added to the
// signature message.
type sigHashExtFlag uint8

const (
	// baseSigHashExtFlag is the base extension flag. This adds no changes
	// to the signature digest message.
	baseSigHashExtFlag sigHashExtFlag = 0

	// tapscriptSighashExtFlag is the extension flag defined by tapscript
	// which adds the leaf hash, key version, and code separator position
	// to the signature message.
	tapscriptSighashExtFlag sigHashExtFlag = 1
)

// taprootSigHashOptions houses a set of functional options that may optionally
// modify how the taproot/script sighash digest algorithm is implemented.
type taprootSigHashOptions struct {
	// extFlag denotes the current message digest extension being used.
	extFlag sigHashExtFlag

	// annexHash is the sha256 hash of the annex with a compact size length
	// prefix: sha256(sizeOf(annex) || annex).
	annexHash []byte

	// tapLeafHash is the hash of the tapscript leaf as defined by the
	// taproot commitment scheme.
	tapLeafHash []byte

	// keyVersion is the key version as defined by the tapscript message
	// extension.
	keyVersion byte

	// codeSepPos is the op code position of the last code separator as
	// defined by the tapscript message extension.
	codeSepPos uint32
}

// writeDigestExtensions writes out the sighash message extension defined by
// the current active sigHashExtFlags.
func (t *taprootSigHashOptions) writeDigestExtensions(w io.Writer) error {
	switch t.extFlag {
	// The base extension, used for taproot key path spends doesn't modify
	// the digest at all.
	case baseSigHashExtFlag:
		return nil

	// The tapscript extension adds the leaf hash, key version, and code
	// separator position to the final digest.
	case tapscriptSighashExtFlag:
		if _, err := w.Write(t.tapLeafHash); err != nil {
			return err
		}
		if _, err := w.Write([]byte{t.keyVersion}); err != nil {
			return err
		}
		var scratch [4]byte
		binary.LittleEndian.PutUint32(scratch[:], t.codeSepPos)
		if _, err := w.Write(scratch[:]); err != nil {
			return err
		}
	}

	return nil
}

// defaultTaprootSighashOptions returns the set of default sighash options for
// taproot execution.
func defaultTaprootSighashOptions() *taprootSigHashOptions {
	return &taprootSigHashOptions{}
}

// TaprootSigHashOption defines a set of functional param options that can be
// used to modify the base sighash message with optional extensions.
type TaprootSigHashOption func(*taprootSigHashOptions)

// WithAnnex is a functional option that allows the caller to specify the
// existence of an annex in the final witness stack for the taproot/tapscript
// spends.
func WithAnnex(annex []byte) TaprootSigHashOption {
	return func(o *taprootSigHashOptions) {
		// It's just a bytes.Buffer which never returns an error on
		// write.
		var b bytes.Buffer
		_ = wire.WriteVarBytes(&b, 0, annex)

		o.annexHash = chainhash.HashB(b.Bytes())
	}
}

// WithBaseTapscriptVersion is a functional option that specifies that the
// sighash digest should include the extra information included as part of the
// base tapscript version.
func WithBaseTapscriptVersion(codeSepPos uint32,
	tapLeafHash []byte) TaprootSigHashOption {

	return func(o *taprootSigHashOptions) {
		o.extFlag = tapscriptSighashExtFlag
		o.tapLeafHash = tapLeafHash
		o.keyVersion = 0
		o.codeSepPos = codeSepPos
	}
}

// isValidTaprootSigHash returns true if the passed sighash is a valid taproot
// sighash.
func isValidTaprootSigHash(hashType SigHashType) bool {
	switch hashType {
	case SigHashDefault, SigHashAll, SigHashNone, SigHashSingle:
		return true

	case 0x81, 0x82, 0x83:
		return true

	default:
		return false
	}
}

// calcTaprootSignatureHashRaw computes the sighash as specified for taproot
// key and script path spends.  The digest is a single tagged hash whose
// domain is bound to the configured chain through the genesis block hash the
// hasher is seeded with.
func calcTaprootSignatureHashRaw(sigHashes *TxSigHashes, hType SigHashType,
	tx *elwire.MsgTx, idx int, prevOutFetcher PrevOutputFetcher,
	sigHashOpts ...TaprootSigHashOption) ([]byte, error) {

	opts := defaultTaprootSighashOptions()
	for _, sigHashOpt := range sigHashOpts {
		sigHashOpt(opts)
	}

	// The passed sighash type must be exactly one of the defined values;
	// unlike the earlier schemes, undefined bits are rejected outright.
	if !isValidTaprootSigHash(hType) {
		str := fmt.Sprintf("invalid taproot sighash type: %v", hType)
		return nil, scriptError(ErrInvalidSigHashType, str)
	}

	// As a sanity check, ensure the passed input index for the
	// transaction is valid.
	if idx >= len(tx.TxIn) {
		return nil, fmt.Errorf("idx %d but %d txins", idx, len(tx.TxIn))
	}
	txIn := tx.TxIn[idx]

	// The digest commits to the outputs being spent, so the midstate must
	// have been populated with all of them.  If the caller didn't supply
	// a cache, compute one in place from the fetcher.
	if sigHashes == nil || !sigHashes.TaprootReady {
		sigHashes = NewTxSigHashes(tx, prevOutFetcher)
	}
	midstate, err := sigHashes.TaprootMidstate()
	if err != nil {
		return nil, err
	}

	var sigMsg bytes.Buffer
	var scratch [4]byte

	// The digest always has the hash type as the first byte.
	sigMsg.WriteByte(byte(hType))

	// Next, commit to the version and lock time of the transaction being
	// spent.
	binary.LittleEndian.PutUint32(scratch[:], uint32(tx.Version))
	sigMsg.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], tx.LockTime)
	sigMsg.Write(scratch[:])

	outputType := SigHashAll
	if hType != SigHashDefault {
		outputType = hType & sigHashOutputMask
	}
	inputType := hType & sigHashInputMask

	// Unless anyone can pay is active, commit to the digests covering
	// every input of the transaction: the outpoint markers, the outpoints
	// themselves, the spent confidential assets and values, the spent
	// scripts, the sequence numbers, and the issuances with their range
	// proofs.  The spent output nonces are deliberately not part of the
	// digest as they are not retained by the chainstate.
	if inputType != SigHashAnyOneCanPay {
		sigMsg.Write(midstate.HashOutpointFlagsV1[:])
		sigMsg.Write(midstate.HashPrevOutsV1[:])
		sigMsg.Write(midstate.HashSpentAssetsAmountsV1[:])
		sigMsg.Write(midstate.HashSpentScriptsV1[:])
		sigMsg.Write(midstate.HashSequenceV1[:])
		sigMsg.Write(midstate.HashIssuancesV1[:])
		sigMsg.Write(midstate.HashIssuanceRangeproofsV1[:])
	}

	// If sighash all is active, then commit to every output of the
	// transaction along with their witnesses.
	if outputType == SigHashAll {
		sigMsg.Write(midstate.HashOutputsV1[:])
		sigMsg.Write(midstate.HashOutputWitnessesV1[:])
	}

	// The spend type is defined by the extension flag with the lowest bit
	// indicating the presence of an annex.
	spendType := byte(opts.extFlag) << 1
	if opts.annexHash != nil {
		spendType |= 1
	}
	sigMsg.WriteByte(spendType)

	// If anyone can pay is active, then the data committed to above for
	// every input is instead committed to for this input alone.
	if inputType == SigHashAnyOneCanPay {
		sigMsg.WriteByte(txIn.OutpointFlag())
		_ = elwire.WriteOutPoint(&sigMsg, &txIn.PreviousOutPoint)

		prevOut := prevOutFetcher.FetchPrevOutput(txIn.PreviousOutPoint)
		if prevOut == nil {
			str := fmt.Sprintf("unable to find prevout for "+
				"input %d", idx)
			return nil, scriptError(ErrSigHashMissingData, str)
		}

		writeConfCommitment(&sigMsg, prevOut.Asset.Commitment)
		writeConfCommitment(&sigMsg, prevOut.Value.Commitment)
		_ = wire.WriteVarBytes(&sigMsg, 0, prevOut.PkScript)

		binary.LittleEndian.PutUint32(scratch[:], txIn.Sequence)
		sigMsg.Write(scratch[:])

		if !txIn.HasIssuance() {
			sigMsg.WriteByte(0x00)
		} else {
			_ = txIn.AssetIssuance.Serialize(&sigMsg)

			var b bytes.Buffer
			_ = wire.WriteVarBytes(
				&b, 0, txIn.Witness.IssuanceAmountRangeProof,
			)
			_ = wire.WriteVarBytes(
				&b, 0, txIn.Witness.InflationKeysRangeProof,
			)
			issuanceProofHash := chainhash.HashH(b.Bytes())
			sigMsg.Write(issuanceProofHash[:])
		}
	} else {
		binary.LittleEndian.PutUint32(scratch[:], uint32(idx))
		sigMsg.Write(scratch[:])
	}

	// If an annex is present, commit to its hash.
	if opts.annexHash != nil {
		sigMsg.Write(opts.annexHash)
	}

	// If sighash single is active, then commit to the output and the
	// output witness at the same index as this input.  Unlike the
	// earlier schemes, a missing output is rejected outright.
	if outputType == SigHashSingle {
		if idx >= len(tx.TxOut) {
			return nil, fmt.Errorf("sighash single requires "+
				"output at index %d, tx has %d outputs", idx,
				len(tx.TxOut))
		}

		var b bytes.Buffer
		_ = tx.TxOut[idx].Serialize(&b)
		outputHash := chainhash.HashH(b.Bytes())
		sigMsg.Write(outputHash[:])

		sigMsg.Write(midstate.OutputWitnessHashes[idx][:])
	}

	// Now that we've written out all the base information, we'll write any
	// message extensions (if they exist).
	if err := opts.writeDigestExtensions(&sigMsg); err != nil {
		return nil, err
	}

	// The final digest is the tagged hash of the message, with the hasher
	// domain separated by the genesis block hash of the chain being
	// validated, written twice.
	sigHash := chainhash.TaggedHash(
		tagTapSighash, GenesisBlockHash[:], GenesisBlockHash[:],
		sigMsg.Bytes(),
	)
	return sigHash[:], nil
}

// CalcTaprootSignatureHash computes the sighash digest of a transaction's
// taproot-spending input using the taproot sighash digest algorithm.  This
// function implements the sighash semantics required for key path spends.
func CalcTaprootSignatureHash(sigHashes *TxSigHashes, hType SigHashType,
	tx *elwire.MsgTx, idx int,
	prevOutFetcher PrevOutputFetcher) ([]byte, error) {

	return calcTaprootSignatureHashRaw(
		sigHashes, hType, tx, idx, prevOutFetcher,
	)
}

// CalcTapscriptSignaturehash computes the sighash digest for an input that
// spends a tapscript leaf, committing to the revealed leaf.
func CalcTapscriptSignaturehash(sigHashes *TxSigHashes, hType SigHashType,
	tx *elwire.MsgTx, idx int, prevOutFetcher PrevOutputFetcher,
	tapLeaf TapLeaf) ([]byte, error) {

	tapLeafHash := tapLeaf.TapHash()
	return calcTaprootSignatureHashRaw(
		sigHashes, hType, tx, idx, prevOutFetcher,
		WithBaseTapscriptVersion(blankCodeSepValue, tapLeafHash[:]),
	)
}
