// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the Elements transaction script language.

This package provides data structures and functions to parse and execute
Elements transaction scripts, including the confidential-asset extensions:
explicit and committed amounts and assets, asset issuances, pegins, the
transaction introspection opcodes, 64-bit arithmetic opcodes, streaming
SHA256 opcodes, and the Elements taproot variant with its chain-bound
sighash and covenant leaf version.

# Script Overview

Elements transaction scripts are written in a stack-base, FORTH-like
language.

The script language consists of a number of opcodes which fall into several
categories such as pushing and popping data to and from the stack,
performing basic and bitwise arithmetic, conditional branching, comparing
hashes, checking cryptographic signatures, and inspecting the fields of the
transaction being validated.  Scripts are processed from left to right and
intentionally do not provide loops.

The vast majority of scripts at the time of this writing are of several
standard forms which consist of a spender providing a public key and a
signature which proves the spender owns the associated private key.  This
information is used to prove the spender is authorized to perform the
transaction.

One benefit of using a scripting language is added flexibility in specifying
what conditions must be met in order to spend an output.

# Errors

Errors returned by this package are of type txscript.Error.  The code field
holds one of the ErrorCode constants and callers can use type assertions on
it to detect the specific failure, while the description gives the
human-readable detail.
*/
package txscript
