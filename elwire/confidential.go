// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package elwire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Confidential commitment prefix bytes.  The prefix byte of a serialized
// confidential field identifies whether the field is null, explicit, or a
// Pedersen-style commitment, and for commitments it doubles as the parity
// byte of the commitment point.
const (
	// PrefixNull marks an absent confidential field.  A null field
	// serializes as the single byte 0x00.
	PrefixNull = 0x00

	// PrefixExplicit marks an unblinded field.  The payload is the raw
	// value: an 8-byte big-endian amount for values, a 32-byte asset id
	// for assets, and a 32-byte public key x coordinate for nonces.
	PrefixExplicit = 0x01

	// PrefixNonceCommitment (and +1) mark a blinded nonce.
	PrefixNonceCommitment = 0x02

	// PrefixValueCommitment (and +1) mark a blinded value.
	PrefixValueCommitment = 0x08

	// PrefixAssetCommitment (and +1) mark a blinded asset.
	PrefixAssetCommitment = 0x0a
)

const (
	// confCommitmentSize is the full serialized size of a blinded
	// confidential field: the prefix byte plus a 32-byte payload.
	confCommitmentSize = 33

	// confExplicitValueSize is the serialized size of an explicit value:
	// the prefix byte plus an 8-byte big-endian amount.
	confExplicitValueSize = 9

	// confExplicitSize is the serialized size of an explicit asset or
	// nonce: the prefix byte plus a 32-byte payload.
	confExplicitSize = 33
)

// ConfidentialValue represents an output amount that is either null,
// explicit, or hidden inside a commitment.  The zero value is the null
// value.
//
// An explicit value stores the prefix byte followed by the amount as an
// 8-byte big-endian integer, mirroring the wire encoding, so the full
// serialized form is simply the Commitment slice.
type ConfidentialValue struct {
	// Commitment holds the serialized form including the prefix byte.
	// nil for a null value.
	Commitment []byte
}

// IsNull returns whether the value is absent.
func (c *ConfidentialValue) IsNull() bool {
	return len(c.Commitment) == 0
}

// IsExplicit returns whether the value is an unblinded amount.
func (c *ConfidentialValue) IsExplicit() bool {
	return len(c.Commitment) == confExplicitValueSize &&
		c.Commitment[0] == PrefixExplicit
}

// IsCommitment returns whether the value is blinded.
func (c *ConfidentialValue) IsCommitment() bool {
	return len(c.Commitment) == confCommitmentSize &&
		(c.Commitment[0] == PrefixValueCommitment ||
			c.Commitment[0] == PrefixValueCommitment+1)
}

// Amount returns the explicit amount in the smallest unit.  It is only
// valid to call when IsExplicit reports true.
func (c *ConfidentialValue) Amount() int64 {
	return int64(binary.BigEndian.Uint64(c.Commitment[1:9]))
}

// NewExplicitValue returns a confidential value wrapping the given
// unblinded amount.
func NewExplicitValue(amount int64) ConfidentialValue {
	b := make([]byte, confExplicitValueSize)
	b[0] = PrefixExplicit
	binary.BigEndian.PutUint64(b[1:], uint64(amount))
	return ConfidentialValue{Commitment: b}
}

// ConfidentialAsset represents an output asset tag that is either null,
// an explicit 32-byte asset id, or hidden inside a commitment.
type ConfidentialAsset struct {
	// Commitment holds the serialized form including the prefix byte.
	// nil for a null asset.
	Commitment []byte
}

// IsNull returns whether the asset is absent.
func (c *ConfidentialAsset) IsNull() bool {
	return len(c.Commitment) == 0
}

// IsExplicit returns whether the asset is an unblinded asset id.
func (c *ConfidentialAsset) IsExplicit() bool {
	return len(c.Commitment) == confExplicitSize &&
		c.Commitment[0] == PrefixExplicit
}

// IsCommitment returns whether the asset is blinded.
func (c *ConfidentialAsset) IsCommitment() bool {
	return len(c.Commitment) == confCommitmentSize &&
		(c.Commitment[0] == PrefixAssetCommitment ||
			c.Commitment[0] == PrefixAssetCommitment+1)
}

// NewExplicitAsset returns a confidential asset wrapping the given 32-byte
// asset id.
func NewExplicitAsset(assetID []byte) ConfidentialAsset {
	b := make([]byte, 0, confExplicitSize)
	b = append(b, PrefixExplicit)
	b = append(b, assetID...)
	return ConfidentialAsset{Commitment: b}
}

// ConfidentialNonce represents an output nonce used to convey the blinding
// public key to the receiver.  Either null, explicit, or a commitment.
type ConfidentialNonce struct {
	// Commitment holds the serialized form including the prefix byte.
	// nil for a null nonce.
	Commitment []byte
}

// IsNull returns whether the nonce is absent.
func (c *ConfidentialNonce) IsNull() bool {
	return len(c.Commitment) == 0
}

// confFieldKind distinguishes the three confidential field flavors when
// reading from the wire since each flavor accepts a different prefix set.
type confFieldKind int

const (
	confValue confFieldKind = iota
	confAsset
	confNonce
)

// explicitSize returns the payload size following an explicit prefix for
// the field kind.
func (k confFieldKind) explicitSize() int {
	if k == confValue {
		return confExplicitValueSize - 1
	}
	return confExplicitSize - 1
}

// validPrefix returns whether the prefix byte is acceptable for the field
// kind.
func (k confFieldKind) validPrefix(prefix byte) bool {
	switch k {
	case confValue:
		return prefix == PrefixExplicit ||
			prefix == PrefixValueCommitment ||
			prefix == PrefixValueCommitment+1
	case confAsset:
		return prefix == PrefixExplicit ||
			prefix == PrefixAssetCommitment ||
			prefix == PrefixAssetCommitment+1
	default:
		return prefix == PrefixExplicit ||
			prefix == PrefixNonceCommitment ||
			prefix == PrefixNonceCommitment+1
	}
}

// readConfField reads a serialized confidential field of the given kind.
// The returned slice includes the prefix byte, or is nil for a null field.
func readConfField(r io.Reader, kind confFieldKind) ([]byte, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	if prefix[0] == PrefixNull {
		return nil, nil
	}
	if !kind.validPrefix(prefix[0]) {
		return nil, fmt.Errorf("invalid confidential field prefix 0x%02x",
			prefix[0])
	}

	payloadSize := 32
	if prefix[0] == PrefixExplicit {
		payloadSize = kind.explicitSize()
	}
	b := make([]byte, 1+payloadSize)
	b[0] = prefix[0]
	if _, err := io.ReadFull(r, b[1:]); err != nil {
		return nil, err
	}
	return b, nil
}

// writeConfField writes a serialized confidential field.  A nil commitment
// writes the null prefix byte.
func writeConfField(w io.Writer, commitment []byte) error {
	if len(commitment) == 0 {
		_, err := w.Write([]byte{PrefixNull})
		return err
	}
	_, err := w.Write(commitment)
	return err
}

// confFieldSerializeSize returns the number of bytes the field occupies on
// the wire.
func confFieldSerializeSize(commitment []byte) int {
	if len(commitment) == 0 {
		return 1
	}
	return len(commitment)
}
