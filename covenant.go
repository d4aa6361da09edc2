// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// CovenantLeafVersion is the taproot leaf version reserved for covenant
// programs.  Spends of leaves carrying this version bypass tapscript
// execution entirely and are instead handed to a CovenantVerifier.
const CovenantLeafVersion TapscriptLeafVersion = 0xbe

// CovenantEnv carries the transaction environment a covenant program
// executes against.  It is assembled by the engine when a covenant leaf
// spend is encountered and handed to the verifier untouched.
type CovenantEnv struct {
	// ControlBlock is the parsed control block that committed to the
	// covenant leaf.
	ControlBlock *ControlBlock

	// ScriptRoot is the 32-byte commitment revealed as the leaf script.
	// The covenant program's own commitment must match it.
	ScriptRoot chainhash.Hash

	// InputIndex is the index of the input being spent.
	InputIndex int

	// GenesisHash identifies the chain the transaction spends on.
	GenesisHash chainhash.Hash

	// TxData caches the transaction hashes the program may inspect.  It
	// includes the spent outputs when the prevout fetcher supplied them.
	TxData *TxSigHashes
}

// CovenantVerifier executes a covenant program against its environment.
// Implementations are external to the engine; the engine only enforces the
// witness shape and the leaf commitment before dispatching.
type CovenantVerifier interface {
	// Verify runs the program with the given witness and environment.
	// The budget is the remaining signature operation budget of the
	// enclosing taproot input and bounds the program's cost.  A nil
	// return marks the spend valid.
	Verify(program, witness []byte, env *CovenantEnv, budget int64) error
}

// GenesisBlockHash identifies the chain scripts are validated against.  It
// seeds the taproot sighash and is part of the covenant environment.  It
// must be set once at startup before any taproot or covenant validation.
var GenesisBlockHash chainhash.Hash

// SetGenesisBlockHash configures the chain the package validates for.
func SetGenesisBlockHash(hash chainhash.Hash) {
	GenesisBlockHash = hash
}
