package art

import (
	"encoding/binary"
	"iter"
)

// ReadHeader decodes the 16-byte header prefix of raw, which must be at
// least HeaderSize long.
func ReadHeader(raw []byte) Header {
	return decodeHeader(raw)
}

// EncodeLeaf0 serializes a Leaf0 node: header only, Kind forced to
// KindLeaf0.
func EncodeLeaf0(h Header) []byte {
	h.Kind = KindLeaf0
	h.NumChildren = 0
	dst := make([]byte, Leaf0Size)
	encodeHeader(dst, h)
	return dst
}

// EncodeVariant serializes header plus the 256-slot dense RAM representation
// of a scratch node's children into the on-disk layout for kind, following
// §4.5's conversion algorithm: ascending iteration over the 256 possible
// keys, appending each present (key, ref) pair into the destination
// layout's native slot order.
func EncodeVariant(kind Kind, h Header, children [256]Ref) []byte {
	h.Kind = kind

	switch kind {
	case KindLeaf0:
		return EncodeLeaf0(h)
	case KindN4:
		return encodeSmall(h, children, N4Size, n4Capacity, true)
	case KindN16:
		return encodeSmall(h, children, N16Size, n16Capacity, false)
	case KindN48:
		return encodeN48(h, children)
	default:
		return encodeN256(h, children)
	}
}

// encodeSmall handles N4 (pointersFirst=true: pointers[4] then keys[4])
// and N16 (pointersFirst=false: keys[16] then pointers[16]).
func encodeSmall(h Header, children [256]Ref, size, capacity int, pointersFirst bool) []byte {
	keys := make([]byte, 0, capacity)
	ptrs := make([]Ref, 0, capacity)
	for key := 0; key < 256; key++ {
		if children[key].Present() {
			keys = append(keys, byte(key))
			ptrs = append(ptrs, children[key])
		}
	}
	h.NumChildren = uint8(len(keys))

	dst := make([]byte, size)
	encodeHeader(dst, h)

	body := dst[HeaderSize:]
	if pointersFirst {
		writeRefs(body[:capacity*8], ptrs)
		copy(body[capacity*8:], keys)
	} else {
		copy(body[:capacity], keys)
		writeRefs(body[capacity:], ptrs)
	}
	return dst
}

func encodeN48(h Header, children [256]Ref) []byte {
	keys := [256]byte{}
	for i := range keys {
		keys[i] = absentKey48
	}
	ptrs := make([]Ref, 0, n48Capacity)

	for key := 0; key < 256; key++ {
		if children[key].Present() {
			keys[key] = byte(len(ptrs))
			ptrs = append(ptrs, children[key])
		}
	}
	h.NumChildren = uint8(len(ptrs))

	dst := make([]byte, N48Size)
	encodeHeader(dst, h)
	body := dst[HeaderSize:]
	copy(body[:256], keys[:])
	writeRefs(body[256:], ptrs)
	return dst
}

func encodeN256(h Header, children [256]Ref) []byte {
	count := 0
	for _, c := range children {
		if c.Present() {
			count++
		}
	}
	// num_children is a uint8 and so cannot distinguish 256 from 0; N256's
	// own Children/Lookup never consult it and scan all 256 slots directly.
	h.NumChildren = uint8(count)

	dst := make([]byte, N256Size)
	encodeHeader(dst, h)
	writeRefs(dst[HeaderSize:], children[:])
	return dst
}

func writeRefs(dst []byte, refs []Ref) {
	for i, r := range refs {
		binary.LittleEndian.PutUint64(dst[i*8:i*8+8], uint64(r))
	}
}

func readRef(src []byte) Ref {
	return Ref(binary.LittleEndian.Uint64(src))
}

// Lookup resolves the child referenced by key within a decoded node of the
// given kind, implementing each variant's exact-search dispatch from §4.3.
func Lookup(kind Kind, raw []byte, key byte) Ref {
	body := raw[HeaderSize:]

	switch kind {
	case KindLeaf0:
		return 0
	case KindN4:
		h := decodeHeader(raw)
		ptrs := body[:n4Capacity*8]
		keys := body[n4Capacity*8:]
		for i := 0; i < int(h.NumChildren); i++ {
			if keys[i] == key {
				return readRef(ptrs[i*8 : i*8+8])
			}
		}
		return 0
	case KindN16:
		h := decodeHeader(raw)
		keys := body[:n16Capacity]
		ptrs := body[n16Capacity:]
		for i := 0; i < int(h.NumChildren); i++ {
			if keys[i] == key {
				return readRef(ptrs[i*8 : i*8+8])
			}
		}
		return 0
	case KindN48:
		keys := body[:256]
		idx := keys[key]
		if idx == absentKey48 {
			return 0
		}
		ptrs := body[256:]
		return readRef(ptrs[int(idx)*8 : int(idx)*8+8])
	case KindN256:
		return readRef(body[int(key)*8 : int(key)*8+8])
	default:
		return 0
	}
}

// Children iterates the (key, ref) pairs of a decoded node in ascending key
// order, matching §4.3's bounded-distance search traversal order.
func Children(kind Kind, raw []byte) iter.Seq2[byte, Ref] {
	return func(yield func(byte, Ref) bool) {
		body := raw[HeaderSize:]

		switch kind {
		case KindLeaf0:
			return
		case KindN4:
			h := decodeHeader(raw)
			ptrs := body[:n4Capacity*8]
			keys := body[n4Capacity*8:]
			for i := 0; i < int(h.NumChildren); i++ {
				if !yield(keys[i], readRef(ptrs[i*8:i*8+8])) {
					return
				}
			}
		case KindN16:
			h := decodeHeader(raw)
			keys := body[:n16Capacity]
			ptrs := body[n16Capacity:]
			for i := 0; i < int(h.NumChildren); i++ {
				if !yield(keys[i], readRef(ptrs[i*8:i*8+8])) {
					return
				}
			}
		case KindN48:
			keys := body[:256]
			ptrs := body[256:]
			for key := 0; key < 256; key++ {
				idx := keys[key]
				if idx == absentKey48 {
					continue
				}
				if !yield(byte(key), readRef(ptrs[int(idx)*8:int(idx)*8+8])) {
					return
				}
			}
		case KindN256:
			for key := 0; key < 256; key++ {
				ref := readRef(body[key*8 : key*8+8])
				if !ref.Present() {
					continue
				}
				if !yield(byte(key), ref) {
					return
				}
			}
		}
	}
}
