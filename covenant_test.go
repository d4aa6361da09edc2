// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/elementsproject/txscript/elwire"
	"github.com/stretchr/testify/require"
)

// recordingCovenantVerifier captures the dispatch arguments so tests can
// assert the engine hands over the right environment.  A non-nil failErr is
// returned from Verify.
type recordingCovenantVerifier struct {
	program []byte
	witness []byte
	env     *CovenantEnv
	budget  int64

	failErr error
}

func (r *recordingCovenantVerifier) Verify(program, witness []byte,
	env *CovenantEnv, budget int64) error {

	r.program = program
	r.witness = witness
	r.env = env
	r.budget = budget
	return r.failErr
}

// newCovenantSpend builds a transaction spending a taproot output whose sole
// leaf carries the covenant leaf version and commits to the given 32-byte
// script root.  The returned witness stack is [witness, program, commitment,
// control block].
func newCovenantSpend(t *testing.T, commitment, program,
	covWitness []byte) (*elwire.MsgTx, *MultiPrevOutFetcher) {

	t.Helper()

	internalKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	tapLeaf := NewTapLeaf(CovenantLeafVersion, commitment)
	scriptTree := AssembleTaprootScriptTree(tapLeaf)

	rootHash := scriptTree.RootNode.TapHash()
	outputKey := ComputeTaprootOutputKey(internalKey.PubKey(), rootHash[:])
	pkScript, err := PayToTaprootScript(outputKey)
	require.NoError(t, err)

	ctrlBlock := scriptTree.LeafMerkleProofs[0].ToControlBlock(
		internalKey.PubKey(),
	)
	ctrlBytes, err := ctrlBlock.ToBytes()
	require.NoError(t, err)

	tx, fetcher := newEngineTestTx(nil, pkScript, 5000)
	tx.TxIn[0].Witness.ScriptWitness = wire.TxWitness{
		covWitness, program, commitment, ctrlBytes,
	}

	return tx, fetcher
}

// TestEngineCovenantSpend exercises the covenant leaf dispatch boundary: the
// engine verifies the leaf commitment, enforces the witness shape, and hands
// the program to the installed verifier.
func TestEngineCovenantSpend(t *testing.T) {
	t.Parallel()

	commitment := bytes.Repeat([]byte{0x7e}, chainhash.HashSize)
	program := bytes.Repeat([]byte{0x11}, 96)
	covWitness := bytes.Repeat([]byte{0x22}, 40)

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyTaproot |
		ScriptVerifyCovenant

	tx, fetcher := newCovenantSpend(t, commitment, program, covWitness)
	sigHashes := NewTxSigHashes(tx, fetcher)

	// A verifier that accepts the spend.
	verifier := &recordingCovenantVerifier{}
	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	vm.SetCovenantVerifier(verifier)
	require.NoError(t, vm.Execute())

	// The verifier must see the program, witness, commitment, and a
	// budget derived from the input witness size.
	require.Equal(t, program, verifier.program)
	require.Equal(t, covWitness, verifier.witness)
	require.Equal(t, commitment, verifier.env.ScriptRoot[:])
	require.Equal(t, 0, verifier.env.InputIndex)
	witnessSize := tx.TxIn[0].Witness.ScriptWitness.SerializeSize()
	require.Equal(t, int64(witnessSize)+sigOpsDelta, verifier.budget)

	// A verifier rejection maps to the covenant failure code.
	verifier = &recordingCovenantVerifier{
		failErr: errors.New("assertion failed"),
	}
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	vm.SetCovenantVerifier(verifier)
	err = vm.Execute()
	require.True(t, IsErrorCode(err, ErrCovenantVerifyFailed), "got %v", err)

	// With no verifier installed the spend must fail closed.
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	err = vm.Execute()
	require.True(t, IsErrorCode(err, ErrCovenantUnavailable), "got %v", err)
}

// TestEngineCovenantWitnessShape ensures malformed covenant spends are
// rejected before the verifier is consulted.
func TestEngineCovenantWitnessShape(t *testing.T) {
	t.Parallel()

	commitment := bytes.Repeat([]byte{0x7e}, chainhash.HashSize)
	program := bytes.Repeat([]byte{0x11}, 96)
	covWitness := bytes.Repeat([]byte{0x22}, 40)

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyTaproot |
		ScriptVerifyCovenant

	// An extra witness item ahead of the program.
	tx, fetcher := newCovenantSpend(t, commitment, program, covWitness)
	witness := tx.TxIn[0].Witness.ScriptWitness
	tx.TxIn[0].Witness.ScriptWitness = append(
		wire.TxWitness{[]byte{0x33}}, witness...,
	)
	sigHashes := NewTxSigHashes(tx, fetcher)
	verifier := &recordingCovenantVerifier{}
	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	vm.SetCovenantVerifier(verifier)
	err = vm.Execute()
	require.True(t, IsErrorCode(err, ErrCovenantWrongLength), "got %v", err)
	require.Nil(t, verifier.env)

	// A commitment that isn't 32 bytes.
	shortCommitment := bytes.Repeat([]byte{0x7e}, chainhash.HashSize-1)
	tx, fetcher = newCovenantSpend(t, shortCommitment, program, covWitness)
	sigHashes = NewTxSigHashes(tx, fetcher)
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	vm.SetCovenantVerifier(verifier)
	err = vm.Execute()
	require.True(t, IsErrorCode(err, ErrCovenantWrongLength), "got %v", err)
}

// TestEngineCovenantFlagOff ensures that without the covenant flag the leaf
// version falls back to the unknown-version rule and the spend succeeds
// without consulting any verifier.
func TestEngineCovenantFlagOff(t *testing.T) {
	t.Parallel()

	commitment := bytes.Repeat([]byte{0x7e}, chainhash.HashSize)
	program := bytes.Repeat([]byte{0x11}, 96)
	covWitness := bytes.Repeat([]byte{0x22}, 40)

	tx, fetcher := newCovenantSpend(t, commitment, program, covWitness)
	sigHashes := NewTxSigHashes(tx, fetcher)

	flags := ScriptBip16 | ScriptVerifyWitness | ScriptVerifyTaproot
	vm, err := newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())

	// With the discourage policy flag active the unknown leaf version is
	// rejected instead.
	flags |= ScriptVerifyDiscourageUpgradeableTaprootVersion
	vm, err = newEngineForTx(tx, fetcher, flags, sigHashes)
	require.NoError(t, err)
	err = vm.Execute()
	require.True(
		t, IsErrorCode(err, ErrDiscourageUpgradeableTaprootVersion),
		"got %v", err,
	)
}
