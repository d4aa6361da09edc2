// Copyright (c) 2013-2023 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/crypto/ripemd160"

	"github.com/elementsproject/txscript/elwire"
)

// parseHex parses a hex string token into a []byte.
func parseHex(tok string) ([]byte, error) {
	if !strings.HasPrefix(tok, "0x") {
		return nil, errors.New("not a hex number")
	}
	return hex.DecodeString(tok[2:])
}

// shortFormOps holds a map of opcode names to values for use in short form
// parsing.  It is declared here so it only needs to be created once.
var shortFormOps map[string]byte

// parseShortForm parses a string as used in the Bitcoin Core reference tests
// into the script it came from.
//
// The format used for these tests is pretty simple if ad-hoc:
//   - Opcodes other than the push opcodes and unknown are present as
//     either OP_NAME or just NAME
//   - Plain numbers are made into push operations
//   - Numbers beginning with 0x are inserted into the []byte as-is (so
//     0x14 is OP_DATA_20)
//   - Single quoted strings are pushed as data
//   - Anything else is an error
func parseShortForm(script string) ([]byte, error) {
	// Only create the short form opcode map once.
	if shortFormOps == nil {
		ops := make(map[string]byte)
		for opcodeName, opcodeValue := range OpcodeByName {
			if strings.Contains(opcodeName, "OP_UNKNOWN") {
				continue
			}
			ops[opcodeName] = opcodeValue

			// The opcodes named OP_# can't have the OP_ prefix
			// stripped or they would conflict with the plain
			// numbers.  Also, since OP_FALSE and OP_TRUE are
			// aliases for the OP_0, and OP_1, respectively, they
			// have the same value, so detect those by name and
			// allow them.
			if (opcodeName == "OP_FALSE" || opcodeName == "OP_TRUE") ||
				(opcodeValue != OP_0 && (opcodeValue < OP_1 ||
					opcodeValue > OP_16)) {

				ops[strings.TrimPrefix(opcodeName, "OP_")] = opcodeValue
			}
		}
		shortFormOps = ops
	}

	// Split only does one separator so convert all \n and tab into  space.
	script = strings.Replace(script, "\n", " ", -1)
	script = strings.Replace(script, "\t", " ", -1)
	tokens := strings.Split(script, " ")
	builder := NewScriptBuilder()

	for _, tok := range tokens {
		if len(tok) == 0 {
			continue
		}
		// if parses as a plain number
		if num, err := strconv.ParseInt(tok, 10, 64); err == nil {
			builder.AddInt64(num)
			continue
		} else if bts, err := parseHex(tok); err == nil {
			// Concatenate the bytes manually since the test code
			// intentionally creates scripts that are too large and
			// would cause the builder to error otherwise.
			if builder.err == nil {
				builder.script = append(builder.script, bts...)
			}
		} else if len(tok) >= 2 &&
			tok[0] == '\'' && tok[len(tok)-1] == '\'' {
			builder.AddFullData([]byte(tok[1 : len(tok)-1]))
		} else if opcode, ok := shortFormOps[tok]; ok {
			builder.AddOp(opcode)
		} else {
			return nil, fmt.Errorf("bad token %q", tok)
		}

	}
	return builder.Script()
}

// mustParseShortForm parses the passed short form script and returns the
// resulting bytes.  It panics if an error occurs.  This is only used in the
// tests as a helper since the only way it can fail is if there is an error in
// the test source code.
func mustParseShortForm(script string) []byte {
	s, err := parseShortForm(script)
	if err != nil {
		panic("invalid short form script in test source: err " +
			err.Error() + ", script: " + script)
	}

	return s
}

// hash160 returns ripemd160(sha256(b)).
func hash160(b []byte) []byte {
	h := sha256.Sum256(b)
	ripe := ripemd160.New()
	ripe.Write(h[:])
	return ripe.Sum(nil)
}

// newEngineTestTx creates a one-input, one-output transaction spending an
// explicit output locked by the passed public key script, along with a
// fetcher that resolves the spent output.
func newEngineTestTx(sigScript, pkScript []byte,
	amount int64) (*elwire.MsgTx, *MultiPrevOutFetcher) {

	prevOut := wire.OutPoint{
		Hash:  chainhash.Hash{0x2a, 0x01},
		Index: 0,
	}

	tx := elwire.NewMsgTx(2)
	tx.AddTxIn(elwire.NewTxIn(&prevOut, sigScript))
	tx.AddTxOut(elwire.NewTxOut(testAssetID, amount-500, nil))

	fetcher := NewMultiPrevOutFetcher(map[wire.OutPoint]*elwire.TxOut{
		prevOut: {
			Asset:    elwire.NewExplicitAsset(testAssetID),
			Value:    elwire.NewExplicitValue(amount),
			PkScript: pkScript,
		},
	})

	return tx, fetcher
}

// newEngineForTx wires an engine up for input zero of the passed transaction,
// resolving the spent output through the fetcher.
func newEngineForTx(tx *elwire.MsgTx, fetcher *MultiPrevOutFetcher,
	flags ScriptFlags, hashCache *TxSigHashes) (*Engine, error) {

	prevOut := fetcher.FetchPrevOutput(tx.TxIn[0].PreviousOutPoint)

	return NewEngine(
		prevOut.PkScript, tx, 0, flags, nil, hashCache,
		prevOut.Value, prevOut.Asset, fetcher,
	)
}

// TestBadPC sets the pc to a deliberately bad result then confirms that Step
// and Disasm fail correctly.
func TestBadPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scriptIdx int
	}{
		{scriptIdx: 2},
		{scriptIdx: 3},
	}

	// tx with almost empty scripts.
	tx, fetcher := newEngineTestTx(
		mustParseShortForm("NOP"), mustParseShortForm("NOP"), 1000,
	)

	for _, test := range tests {
		vm, err := newEngineForTx(tx, fetcher, 0, nil)
		if err != nil {
			t.Errorf("Failed to create script: %v", err)
		}

		// Set to after all scripts.
		vm.scriptIdx = test.scriptIdx

		// Ensure attempting to step fails.
		_, err = vm.Step()
		if err == nil {
			t.Errorf("Step with invalid pc (%v) succeeds!", test)
			continue
		}

		// Ensure attempting to disassemble the current program counter
		// fails.
		_, err = vm.DisasmPC()
		if err == nil {
			t.Errorf("DisasmPC with invalid pc (%v) succeeds!", test)
		}
	}
}

// TestCheckErrorCondition tests the execute early test in CheckErrorCondition
// since most code paths are tested elsewhere.
func TestCheckErrorCondition(t *testing.T) {
	t.Parallel()

	// tx with almost empty scripts.
	pkScript := mustParseShortForm("NOP NOP NOP NOP NOP NOP NOP NOP NOP " +
		"NOP TRUE")
	tx, fetcher := newEngineTestTx(nil, pkScript, 1000)

	vm, err := newEngineForTx(tx, fetcher, 0, nil)
	if err != nil {
		t.Fatalf("failed to create script: %v", err)
	}

	for i := 0; i < len(pkScript)-1; i++ {
		done, err := vm.Step()
		if err != nil {
			t.Fatalf("failed to step %dth time: %v", i, err)
		}
		if done {
			t.Fatalf("finshed early on %dth time", i)
		}

		err = vm.CheckErrorCondition(false)
		if !IsErrorCode(err, ErrScriptUnfinished) {
			t.Fatalf("got unexpected error %v on %dth iteration",
				err, i)
		}
	}
	done, err := vm.Step()
	if err != nil {
		t.Fatalf("final step failed %v", err)
	}
	if !done {
		t.Fatalf("final step isn't done!")
	}

	err = vm.CheckErrorCondition(false)
	if err != nil {
		t.Errorf("unexpected error %v on final check", err)
	}
}

// TestInvalidFlagCombinations ensures the script engine returns the expected
// error when disallowed flag combinations are specified.
func TestInvalidFlagCombinations(t *testing.T) {
	t.Parallel()

	tests := []ScriptFlags{
		// The clean stack flag may not be used without either the
		// P2SH evaluation or witness flag.
		ScriptVerifyCleanStack,

		// Witness evaluation requires P2SH evaluation to be active.
		ScriptVerifyWitness,
	}

	tx, fetcher := newEngineTestTx(
		mustParseShortForm("NOP"), mustParseShortForm("NOP"), 1000,
	)

	for i, flags := range tests {
		_, err := newEngineForTx(tx, fetcher, flags, nil)
		if !IsErrorCode(err, ErrInvalidFlags) {
			t.Fatalf("TestInvalidFlagCombinations #%d unexpected "+
				"error: %v", i, err)
		}
	}
}

// TestCheckPubKeyEncoding ensures the internal checkPubKeyEncoding function
// works as expected.
func TestCheckPubKeyEncoding(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	pubKey := privKey.PubKey()

	// A hybrid encoding reuses the uncompressed point data with a prefix
	// that also encodes the oddness of y.
	hybridKey := make([]byte, 65)
	copy(hybridKey, pubKey.SerializeUncompressed())
	hybridKey[0] = 0x06 | (hybridKey[64] & 0x01)

	tests := []struct {
		name    string
		key     []byte
		isValid bool
	}{
		{
			name:    "compressed",
			key:     pubKey.SerializeCompressed(),
			isValid: true,
		},
		{
			name:    "uncompressed",
			key:     pubKey.SerializeUncompressed(),
			isValid: true,
		},
		{
			name:    "hybrid",
			key:     hybridKey,
			isValid: false,
		},
		{
			name:    "x-only",
			key:     schnorr.SerializePubKey(pubKey),
			isValid: false,
		},
		{
			name:    "empty",
			key:     nil,
			isValid: false,
		},
	}

	vm := Engine{flags: ScriptVerifyStrictEncoding}
	for _, test := range tests {
		err := vm.checkPubKeyEncoding(test.key)
		if err != nil && test.isValid {
			t.Errorf("checkPubKeyEncoding test '%s' failed "+
				"when it should have succeeded: %v", test.name,
				err)
		} else if err == nil && !test.isValid {
			t.Errorf("checkPubKeyEncoding test '%s' succeeded "+
				"when it should have failed", test.name)
		}
	}

	// Without the strict encoding flag even the hybrid encoding is
	// accepted.
	looseVM := Engine{}
	if err := looseVM.checkPubKeyEncoding(hybridKey); err != nil {
		t.Errorf("unexpected error without strict encoding: %v", err)
	}
}

// TestCheckSignatureEncoding ensures the internal checkSignatureEncoding
// function rejects the various malformed DER signatures with the proper
// typed error.
func TestCheckSignatureEncoding(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	digest := sha256.Sum256([]byte("signature encoding"))
	validSig := ecdsa.Sign(privKey, digest[:]).Serialize()

	// A signature with a mangled sequence identifier.
	badSeqSig := make([]byte, len(validSig))
	copy(badSeqSig, validSig)
	badSeqSig[0] = 0x31

	// A signature whose declared data length disagrees with its actual
	// length.
	trailingSig := make([]byte, len(validSig))
	copy(trailingSig, validSig)
	trailingSig = append(trailingSig, 0x00)

	tests := []struct {
		name string
		sig  []byte
		err  error
	}{
		{
			name: "valid der",
			sig:  validSig,
		},
		{
			name: "too short",
			sig:  validSig[:7],
			err:  scriptError(ErrSigTooShort, ""),
		},
		{
			name: "too long",
			sig:  append(make([]byte, 40), validSig...),
			err:  scriptError(ErrSigTooLong, ""),
		},
		{
			name: "bad sequence id",
			sig:  badSeqSig,
			err:  scriptError(ErrSigInvalidSeqID, ""),
		},
		{
			name: "trailing byte",
			sig:  trailingSig,
			err:  scriptError(ErrSigInvalidDataLen, ""),
		},
	}

	vm := Engine{flags: ScriptVerifyStrictEncoding}
	for _, test := range tests {
		err := vm.checkSignatureEncoding(test.sig)
		if e := tstCheckScriptError(err, test.err); e != nil {
			t.Errorf("%s: %v", test.name, e)
		}
	}

	// Without any of the DER related flags set the encoding is not
	// enforced at all.
	looseVM := Engine{}
	if err := looseVM.checkSignatureEncoding(badSeqSig); err != nil {
		t.Errorf("unexpected error without strict encoding: %v", err)
	}
}

// TestEngineP2WPKHSpend runs a witness v0 pay-to-witness-pubkey-hash spend
// end to end through the engine, exercising the confidential witness sighash
// along the way.
func TestEngineP2WPKHSpend(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	pubKey := privKey.PubKey().SerializeCompressed()

	// The witness program commits to the hash160 of the compressed
	// public key.
	pkScript, err := NewScriptBuilder().
		AddOp(OP_0).AddData(hash160(pubKey)).Script()
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}

	const amount = 5000
	tx, fetcher := newEngineTestTx(nil, pkScript, amount)

	// Sign the input. The script code for a p2wkh spend is the
	// corresponding pay-to-pubkey-hash script.
	scriptCode, err := payToPubKeyHashScript(hash160(pubKey))
	if err != nil {
		t.Fatalf("unable to build script code: %v", err)
	}
	sigHashes := NewTxSigHashes(tx, fetcher)
	sigHash, err := calcWitnessSignatureHashRaw(
		scriptCode, sigHashes, SigHashAll, tx, 0,
		elwire.NewExplicitValue(amount), true,
	)
	if err != nil {
		t.Fatalf("unable to compute sighash: %v", err)
	}
	sig := append(ecdsa.Sign(privKey, sigHash).Serialize(), byte(SigHashAll))
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{sig, pubKey}

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyCleanStack |
		ScriptVerifyStrictEncoding

	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("valid p2wkh spend failed: %v", err)
	}

	// A witness stack with the wrong number of items must be rejected
	// before execution even starts.
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{sig, pubKey, nil}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrWitnessProgramMismatch) {
		t.Fatalf("expected ErrWitnessProgramMismatch, got %v", err)
	}

	// Corrupting the S value of the signature keeps the DER encoding
	// intact but invalidates the signature itself.
	badSig := make([]byte, len(sig))
	copy(badSig, sig)
	badSig[len(badSig)-2] ^= 0x01
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{badSig, pubKey}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrEvalFalse) {
		t.Fatalf("expected ErrEvalFalse, got %v", err)
	}

	// Dropping the last byte of the DER encoding makes the declared data
	// length disagree with the actual length, which the strict encoding
	// checks reject before any crypto runs.
	derSig := sig[:len(sig)-1]
	truncated := append(derSig[:len(derSig)-1:len(derSig)-1], byte(SigHashAll))
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{truncated, pubKey}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrSigInvalidDataLen) {
		t.Fatalf("expected ErrSigInvalidDataLen, got %v", err)
	}
}

// TestEngineCheckMultiSig2of2 runs a bare 2-of-2 CHECKMULTISIG spend through
// the engine.  Signature matching walks the keys in order, so signatures
// presented in the reverse order of their keys must leave false on the stack
// even though both are individually valid.
func TestEngineCheckMultiSig2of2(t *testing.T) {
	t.Parallel()

	priv1, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	priv2, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}

	pkScript, err := NewScriptBuilder().AddOp(OP_2).
		AddData(priv1.PubKey().SerializeCompressed()).
		AddData(priv2.PubKey().SerializeCompressed()).
		AddOp(OP_2).AddOp(OP_CHECKMULTISIG).Script()
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}

	const amount = 5000
	tx, fetcher := newEngineTestTx(nil, pkScript, amount)

	sigHash := calcSignatureHash(pkScript, SigHashAll, tx, 0, true)
	sig1 := append(ecdsa.Sign(priv1, sigHash).Serialize(), byte(SigHashAll))
	sig2 := append(ecdsa.Sign(priv2, sigHash).Serialize(), byte(SigHashAll))

	// Signatures in key order validate.
	sigScript, err := NewScriptBuilder().AddOp(OP_0).
		AddData(sig1).AddData(sig2).Script()
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}
	tx.TxIn[0].SignatureScript = sigScript

	flags := ScriptBip16
	vm, err := newEngineForTx(tx, fetcher, flags, nil)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("valid 2-of-2 spend failed: %v", err)
	}

	// The same signatures in the reverse order do not.
	swapped, err := NewScriptBuilder().AddOp(OP_0).
		AddData(sig2).AddData(sig1).Script()
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}
	tx.TxIn[0].SignatureScript = swapped

	vm, err = newEngineForTx(tx, fetcher, flags, nil)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrEvalFalse) {
		t.Fatalf("expected ErrEvalFalse, got %v", err)
	}
}

// TestEngineSigHashRangeproofFlag ensures a signature carrying the
// rangeproof sighash bit only commits to the output proofs when the
// corresponding script flag is active: the same witness that validates with
// the flag must fail without it because the committed digests differ.
func TestEngineSigHashRangeproofFlag(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	pubKey := privKey.PubKey().SerializeCompressed()

	pkScript, err := NewScriptBuilder().
		AddOp(OP_0).AddData(hash160(pubKey)).Script()
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}

	const amount = 5000
	tx, fetcher := newEngineTestTx(nil, pkScript, amount)
	tx.TxOut[0].Witness.RangeProof = bytes.Repeat([]byte{0x5a}, 64)

	scriptCode, err := payToPubKeyHashScript(hash160(pubKey))
	if err != nil {
		t.Fatalf("unable to build script code: %v", err)
	}

	hashType := SigHashAll | SigHashRangeproof
	sigHashes := NewTxSigHashes(tx, fetcher)
	sigHash, err := calcWitnessSignatureHashRaw(
		scriptCode, sigHashes, hashType, tx, 0,
		elwire.NewExplicitValue(amount), true,
	)
	if err != nil {
		t.Fatalf("unable to compute sighash: %v", err)
	}
	sig := append(ecdsa.Sign(privKey, sigHash).Serialize(), byte(hashType))
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{sig, pubKey}

	baseFlags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyCleanStack

	// With the rangeproof sighash active the spend validates.
	vm, err := newEngineForTx(
		tx, fetcher, baseFlags|ScriptVerifySigHashRangeproof, sigHashes,
	)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("rangeproof committing spend failed: %v", err)
	}

	// Without the flag the bit no longer extends the digest, so the
	// signature no longer matches.
	vm, err = newEngineForTx(tx, fetcher, baseFlags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrEvalFalse) {
		t.Fatalf("expected ErrEvalFalse, got %v", err)
	}
}

// TestEngineWitnessMalleation covers the malleability guards applied when
// witness verification is active.
func TestEngineWitnessMalleation(t *testing.T) {
	t.Parallel()

	flags := ScriptBip16 | ScriptVerifyWitness

	// A native witness program may not carry a signature script.
	pkScript := mustParseShortForm("OP_0 DATA_20 0x0102030405060708090a" +
		"0b0c0d0e0f1011121314")
	tx, fetcher := newEngineTestTx(mustParseShortForm("NOP"), pkScript, 1000)
	_, err := newEngineForTx(tx, fetcher, flags, nil)
	if !IsErrorCode(err, ErrWitnessMalleated) {
		t.Fatalf("expected ErrWitnessMalleated, got %v", err)
	}

	// A non-witness input must not carry witness data.
	tx, fetcher = newEngineTestTx(nil, mustParseShortForm("TRUE"), 1000)
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{{0x01}}
	_, err = newEngineForTx(tx, fetcher, flags, nil)
	if !IsErrorCode(err, ErrWitnessUnexpected) {
		t.Fatalf("expected ErrWitnessUnexpected, got %v", err)
	}
}

// TestEngineTaprootKeySpend runs a taproot key path spend end to end through
// the engine.
func TestEngineTaprootKeySpend(t *testing.T) {
	t.Parallel()

	internalKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	outputKey := ComputeTaprootKeyNoScript(internalKey.PubKey())

	pkScript, err := PayToTaprootScript(outputKey)
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}

	const amount = 5000
	tx, fetcher := newEngineTestTx(nil, pkScript, amount)
	sigHashes := NewTxSigHashes(tx, fetcher)

	sigHash, err := CalcTaprootSignatureHash(
		sigHashes, SigHashDefault, tx, 0, fetcher,
	)
	if err != nil {
		t.Fatalf("unable to compute sighash: %v", err)
	}

	tweakedPriv := TweakTaprootPrivKey(*internalKey, []byte{})
	sig, err := schnorr.Sign(tweakedPriv, sigHash)
	if err != nil {
		t.Fatalf("unable to sign: %v", err)
	}
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{sig.Serialize()}

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyTaproot

	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("valid key spend failed: %v", err)
	}

	// Flipping a bit in the signature must invalidate the spend.
	badSig := sig.Serialize()
	badSig[10] ^= 0x01
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{badSig}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrTaprootSigInvalid) {
		t.Fatalf("expected ErrTaprootSigInvalid, got %v", err)
	}

	// A 65-byte signature whose appended hash type byte is zero is
	// rejected outright: the default hash type is expressed by omitting
	// the byte, never by appending 0x00.
	paddedSig := append(sig.Serialize(), byte(SigHashDefault))
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{paddedSig}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrInvalidTaprootSigLen) {
		t.Fatalf("expected ErrInvalidTaprootSigLen, got %v", err)
	}
}

// TestEngineTapscriptSpend runs a tapscript path spend through the engine
// using a small committed script tree.
func TestEngineTapscriptSpend(t *testing.T) {
	t.Parallel()

	internalKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}

	// Commit to two leaves and spend through the trivially true one.
	trueLeaf := NewBaseTapLeaf(mustParseShortForm("TRUE"))
	falseLeaf := NewBaseTapLeaf(mustParseShortForm("RETURN"))
	scriptTree := AssembleTaprootScriptTree(trueLeaf, falseLeaf)

	rootHash := scriptTree.RootNode.TapHash()
	outputKey := ComputeTaprootOutputKey(internalKey.PubKey(), rootHash[:])

	pkScript, err := PayToTaprootScript(outputKey)
	if err != nil {
		t.Fatalf("unable to build script: %v", err)
	}

	tx, fetcher := newEngineTestTx(nil, pkScript, 5000)
	sigHashes := NewTxSigHashes(tx, fetcher)

	proofIdx := scriptTree.LeafProofIndex[trueLeaf.TapHash()]
	proof := scriptTree.LeafMerkleProofs[proofIdx]
	ctrlBlock := proof.ToControlBlock(internalKey.PubKey())
	ctrlBytes, err := ctrlBlock.ToBytes()
	if err != nil {
		t.Fatalf("unable to encode control block: %v", err)
	}

	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{
		trueLeaf.Script, ctrlBytes,
	}

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyTaproot

	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("valid tapscript spend failed: %v", err)
	}

	// Revealing a script that was never committed to must fail the
	// inclusion proof.
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{
		mustParseShortForm("2"), ctrlBytes,
	}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	if err != nil {
		t.Fatalf("unable to create engine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrTaprootMerkleProofInvalid) {
		t.Fatalf("expected ErrTaprootMerkleProofInvalid, got %v", err)
	}
}
