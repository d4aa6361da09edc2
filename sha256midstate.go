// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

const (
	// sha256CtxMinSize is the serialized size of a midstate with an empty
	// buffer: the 32-byte compression state followed by the 8-byte little
	// endian count of bytes written.
	sha256CtxMinSize = 40

	// goSha256MarshaledSize is the size of the standard library digest
	// state produced by its binary marshaler: a 4-byte magic, the 32-byte
	// compression state, the full 64-byte block buffer, and the 8-byte
	// big endian count of bytes written.
	goSha256MarshaledSize = 108

	// goSha256Magic is the magic prefix of the standard library digest
	// state.
	goSha256Magic = "sha\x03"
)

// sha256Ctx is a SHA-256 midstate that can be serialized to and restored
// from the stack, allowing a hash over data larger than the maximum stack
// element to be computed incrementally across opcodes.
//
// The serialized form is the 32-byte compression state, the count of bytes
// written so far as 8 little endian bytes, and the partial block buffer.
// The buffer length must equal the byte count modulo the block size, which
// pins the total serialized size to at most 103 bytes.
type sha256Ctx struct {
	h     hash.Hash
	count uint64
}

// newSha256Ctx returns a fresh midstate with nothing written.
func newSha256Ctx() *sha256Ctx {
	return &sha256Ctx{h: sha256.New()}
}

// loadSha256Ctx restores a midstate from its serialized form.
func loadSha256Ctx(serialized []byte) (*sha256Ctx, error) {
	if len(serialized) < sha256CtxMinSize {
		return nil, fmt.Errorf("serialized midstate of %d bytes is too "+
			"short", len(serialized))
	}
	count := binary.LittleEndian.Uint64(serialized[32:40])
	if uint64(len(serialized)-sha256CtxMinSize) != count%sha256.BlockSize {
		return nil, fmt.Errorf("serialized midstate buffer of %d bytes "+
			"does not match a written count of %d bytes",
			len(serialized)-sha256CtxMinSize, count)
	}

	// Reassemble the state in the form the standard library digest
	// expects.  The block buffer beyond the partial block is ignored on
	// restore, so it is left zeroed.
	state := make([]byte, 0, goSha256MarshaledSize)
	state = append(state, goSha256Magic...)
	state = append(state, serialized[:32]...)
	var block [sha256.BlockSize]byte
	copy(block[:], serialized[sha256CtxMinSize:])
	state = append(state, block[:]...)
	state = binary.BigEndian.AppendUint64(state, count)

	h := sha256.New()
	if err := h.(encoding.BinaryUnmarshaler).UnmarshalBinary(state); err != nil {
		return nil, err
	}
	return &sha256Ctx{h: h, count: count}, nil
}

// write adds data to the midstate.  It errors when the total number of bytes
// written would overflow the byte counter.
func (c *sha256Ctx) write(data []byte) error {
	if c.count+uint64(len(data)) < c.count {
		return errors.New("sha256 midstate byte count overflow")
	}
	c.h.Write(data)
	c.count += uint64(len(data))
	return nil
}

// save returns the serialized form of the midstate.
func (c *sha256Ctx) save() []byte {
	state, err := c.h.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		// The standard library digest marshaler cannot fail.
		panic(err)
	}

	buffered := c.count % sha256.BlockSize
	serialized := make([]byte, 0, sha256CtxMinSize+buffered)
	serialized = append(serialized, state[4:36]...)
	serialized = binary.LittleEndian.AppendUint64(serialized, c.count)
	serialized = append(serialized, state[36:36+buffered]...)
	return serialized
}

// finalize returns the digest of everything written to the midstate.
func (c *sha256Ctx) finalize() []byte {
	return c.h.Sum(nil)
}
