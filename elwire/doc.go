// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package elwire implements the confidential-asset transaction wire format.

Transactions on the confidential chain extend the bitcoin transaction
format with per-output confidential assets, values, and nonces, per-input
asset issuances and pegin markers, and separate input/output witness
sections carrying range proofs and surjection proofs.  This package
provides the message types along with their serialization, identity
hashing, and size/weight accounting.

Varints, outpoints, and script witnesses reuse the corresponding types and
helpers from the btcd wire package; only the confidential extensions are
defined here.
*/
package elwire
