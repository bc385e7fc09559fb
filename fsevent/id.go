package fsevent

import (
	"encoding/binary"
	"encoding/hex"
)

// Id is an opaque byte string identifying an inode (spec.md §3). Equality is
// byte-wise; for Lustre sources it is derived bijectively from an FID.
type Id []byte

// Empty reports whether the id carries no bytes. Invariant 1 of spec.md §8
// requires every emitted event's id to be non-empty.
func (id Id) Empty() bool { return len(id) == 0 }

// Equal performs byte-wise comparison.
func (id Id) Equal(o Id) bool {
	if len(id) != len(o) {
		return false
	}
	for i := range id {
		if id[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not alias the receiver's backing array.
func (id Id) Clone() Id {
	if id == nil {
		return nil
	}
	out := make(Id, len(id))
	copy(out, id)
	return out
}

// Hex renders the id as lowercase hex, matching spec.md §6's "id (as hex)"
// stdout rendering.
func (id Id) Hex() string { return hex.EncodeToString(id) }

// FID is a Lustre file identifier: a 128-bit {seq, oid, ver} triple
// (spec.md §3, §8).
type FID struct {
	Seq uint64
	Oid uint32
	Ver uint32
}

// fidSize is the wire width of an encoded FID: 8 + 4 + 4 bytes.
const fidSize = 16

// FIDToID derives an opaque Id bijectively from a FID by concatenating its
// fields in little-endian order. fid2id / id2fid round-trip exactly
// (spec.md §8's round-trip law).
func FIDToID(fid FID) Id {
	buf := make([]byte, fidSize)
	binary.LittleEndian.PutUint64(buf[0:8], fid.Seq)
	binary.LittleEndian.PutUint32(buf[8:12], fid.Oid)
	binary.LittleEndian.PutUint32(buf[12:16], fid.Ver)
	return Id(buf)
}

// IDToFID is the inverse of FIDToID. It returns an error if id is not
// exactly 16 bytes, i.e. was not produced by FIDToID.
func IDToFID(id Id) (FID, error) {
	if len(id) != fidSize {
		return FID{}, ErrInvalidData
	}
	return FID{
		Seq: binary.LittleEndian.Uint64(id[0:8]),
		Oid: binary.LittleEndian.Uint32(id[8:12]),
		Ver: binary.LittleEndian.Uint32(id[12:16]),
	}, nil
}

// Bytes returns the 16-byte little-endian encoding of the FID, matching the
// XATTR{fid: <16 bytes>} payload spec.md §4.1's CREATE mapping emits.
func (f FID) Bytes() []byte {
	return []byte(FIDToID(f))
}
