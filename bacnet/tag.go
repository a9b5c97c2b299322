// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bacnet

import (
	"encoding/binary"
	"io"
)

// TagClass distinguishes application tags (self-identifying type) from
// context tags (type comes from the enclosing production).
type TagClass uint8

const (
	TagClassApplication TagClass = 0
	TagClassContext     TagClass = 1
)

// TagKind names the four logical shapes a decoded tag can take.
type TagKind uint8

const (
	TagKindApplication TagKind = iota
	TagKindContext
	TagKindOpen
	TagKindClose
)

// Tag is the result of decoding a single BACnet tag octet (plus any
// extension octets). Number holds the tag number for all four kinds; LVT
// holds the length/value/type field for Application and Context tags and is
// unused for Open/Close.
type Tag struct {
	Kind   TagKind
	Number uint8
	LVT    uint32
}

// DecodeTag reads one tag from r: the lead octet, an extended tag-number
// octet when the high nibble is 0xF, and an extended-length sequence when
// the low 3 bits are 5 (one octet, or the 0xFE/0xFF sentinel forms).
func DecodeTag(r io.ByteReader) (Tag, error) {
	lead, err := readByte(r, "tag lead octet")
	if err != nil {
		return Tag{}, err
	}

	number := (lead >> 4) & 0x0F
	class := TagClass((lead >> 3) & 0x01)
	vvv := lead & 0x07

	if number == 0x0F {
		ext, err := readByte(r, "extended tag number")
		if err != nil {
			return Tag{}, err
		}
		number = ext
	}

	if class == TagClassContext && vvv == 6 {
		return Tag{Kind: TagKindOpen, Number: number}, nil
	}
	if class == TagClassContext && vvv == 7 {
		return Tag{Kind: TagKindClose, Number: number}, nil
	}

	lvt := uint32(vvv)
	if vvv == 5 {
		lvt, err = decodeExtendedLength(r)
		if err != nil {
			return Tag{}, err
		}
	}

	kind := TagKindApplication
	if class == TagClassContext {
		kind = TagKindContext
	}
	return Tag{Kind: kind, Number: number, LVT: lvt}, nil
}

func decodeExtendedLength(r io.ByteReader) (uint32, error) {
	first, err := readByte(r, "extended length octet")
	if err != nil {
		return 0, err
	}
	switch {
	case first < 254:
		return uint32(first), nil
	case first == 254:
		var buf [2]byte
		if err := readFull(r, buf[:], "16-bit extended length"); err != nil {
			return 0, err
		}
		return uint32(binary.BigEndian.Uint16(buf[:])), nil
	default:
		var buf [4]byte
		if err := readFull(r, buf[:], "32-bit extended length"); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(buf[:]), nil
	}
}

// EncodeApplicationTag encodes an application tag with the given type code
// and payload length.
func EncodeApplicationTag(typeCode uint8, length int) []byte {
	return encodeTag(typeCode, TagClassApplication, length)
}

// EncodeContextTagHeader encodes a context tag octet (and extensions) with
// the given context number and payload length. It does not emit the
// payload itself.
func EncodeContextTagHeader(contextNumber uint8, length int) []byte {
	return encodeTag(contextNumber, TagClassContext, length)
}

// EncodeOpeningTag encodes an opening tag for a constructed (context)
// sequence.
func EncodeOpeningTag(contextNumber uint8) []byte {
	return encodeNamedTag(contextNumber, 0x06)
}

// EncodeClosingTag encodes the matching closing tag.
func EncodeClosingTag(contextNumber uint8) []byte {
	return encodeNamedTag(contextNumber, 0x07)
}

func encodeNamedTag(number uint8, vvv uint8) []byte {
	if number <= 14 {
		return []byte{(number << 4) | 0x08 | vvv}
	}
	return []byte{0xF8 | vvv, number}
}

// encodeTag implements the encode policy pinned by original_source's
// write_tag: the tag-number nibble is 0xF (with the real number in the
// next octet) whenever number > 14; VVV is the length itself when it fits
// in 3 bits (<=4), otherwise 5 with the length spelled out in the minimal
// extension form. Open/Close tags never go through this path.
func encodeTag(number uint8, class TagClass, length int) []byte {
	tagPortion := number
	extendedNumber := number > 14
	if extendedNumber {
		tagPortion = 0x0F
	}

	classBit := uint8(0)
	if class == TagClassContext {
		classBit = 0x08
	}

	var valuePortion uint8
	extendedLength := length > 4
	if extendedLength {
		valuePortion = 5
	} else {
		valuePortion = uint8(length)
	}

	buf := make([]byte, 0, 6)
	buf = append(buf, (tagPortion<<4)|classBit|valuePortion)
	if extendedNumber {
		buf = append(buf, number)
	}
	if extendedLength {
		buf = append(buf, encodeExtendedLength(length)...)
	}
	return buf
}

func encodeExtendedLength(length int) []byte {
	switch {
	case length <= 253:
		return []byte{byte(length)}
	case length <= 65535:
		buf := make([]byte, 3)
		buf[0] = 254
		binary.BigEndian.PutUint16(buf[1:], uint16(length))
		return buf
	default:
		buf := make([]byte, 5)
		buf[0] = 255
		binary.BigEndian.PutUint32(buf[1:], uint32(length))
		return buf
	}
}

func readByte(r io.ByteReader, what string) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, newDecodeError(InputEndedBeforeParsingCompleted, what)
		}
		return 0, wrapReadError(err, what)
	}
	return b, nil
}

func readFull(r io.ByteReader, buf []byte, what string) error {
	for i := range buf {
		b, err := readByte(r, what)
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}
