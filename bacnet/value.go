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
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// SequenceKind discriminates the SequenceableValue union.
type SequenceKind uint8

const (
	SequenceApplication SequenceKind = iota
	SequenceContext
	SequenceContextSequence
)

// SequenceableValue is a node in the value tree produced by decoding an
// APDU body: either a self-typed application value, a context value whose
// type came from a ContextResolver, or a context-numbered sequence of
// further SequenceableValues bounded by an Open/Close tag pair.
type SequenceableValue struct {
	Kind     SequenceKind
	Context  uint8
	Value    PrimitiveValue
	Children ValueSequence
}

// ValueSequence is an ordered list of SequenceableValue; ordering is
// wire-significant.
type ValueSequence []SequenceableValue

func ApplicationValue(v PrimitiveValue) SequenceableValue {
	return SequenceableValue{Kind: SequenceApplication, Value: v}
}

func ContextValue(context uint8, v PrimitiveValue) SequenceableValue {
	return SequenceableValue{Kind: SequenceContext, Context: context, Value: v}
}

func ContextValueSequence(context uint8, children ValueSequence) SequenceableValue {
	return SequenceableValue{Kind: SequenceContextSequence, Context: context, Children: children}
}

// ContextResolver maps a context tag number to the application type code
// that should be used to interpret its payload. It is supplied by the
// caller for each decode call: the same context number means different
// things under different productions, so this package never bakes a
// lookup table into the grammar itself.
type ContextResolver func(contextTag uint8) (typeCode uint8, ok bool)

// byteReader is the minimal interface DecodeValue needs: ReadByte for the
// tag codec, plus enough buffering that callers can hand it a plain
// io.Reader (e.g. over a []byte body) without pre-wrapping it themselves.
type byteReader interface {
	io.ByteReader
}

// toByteReader adapts an io.Reader to io.ByteReader, reusing the reader
// unchanged if it already implements one (as *bytes.Reader does).
func toByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// DecodeValue decodes one SequenceableValue from r, following the
// recursive grammar in spec section 4.3. It returns (value, true, nil) on
// success, (zero, false, nil) when the next tag is a Close tag (the
// upward termination signal for a constructed sequence) or the reader is
// at end-of-input at a tag boundary, and (zero, false, err) on a malformed
// tag or primitive.
func DecodeValue(r io.Reader, resolver ContextResolver) (SequenceableValue, bool, error) {
	return decodeValue(toByteReader(r), resolver)
}

func decodeValue(r byteReader, resolver ContextResolver) (SequenceableValue, bool, error) {
	tag, err := peekTag(r)
	if err != nil {
		if err == io.EOF {
			return SequenceableValue{}, false, nil
		}
		return SequenceableValue{}, false, err
	}
	if tag.Kind == TagKindClose {
		return SequenceableValue{}, false, nil
	}
	return decodeFromTag(r, tag, resolver)
}

// peekTag decodes the next tag. Unlike DecodeTag it distinguishes a clean
// end-of-input (io.EOF, valid at a tag boundary) from a short read mid-tag
// (InputEndedBeforeParsingCompleted, a genuine decode error).
func peekTag(r byteReader) (Tag, error) {
	lead, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Tag{}, io.EOF
		}
		return Tag{}, wrapReadError(err, "tag lead octet")
	}
	return decodeTagFromLead(r, lead)
}

// decodeTagFromLead continues tag decoding once the lead octet has already
// been consumed by peekTag. io.ByteReader has no Unread, so it puts the
// lead octet in front of r with a prependedByteReader and hands that to
// DecodeTag.
func decodeTagFromLead(r byteReader, lead byte) (Tag, error) {
	pb := &prependedByteReader{first: lead, has: true, rest: r}
	return DecodeTag(pb)
}

type prependedByteReader struct {
	first byte
	has   bool
	rest  byteReader
}

func (p *prependedByteReader) ReadByte() (byte, error) {
	if p.has {
		p.has = false
		return p.first, nil
	}
	return p.rest.ReadByte()
}

func decodeUntilClose(r byteReader, openNumber uint8, resolver ContextResolver) (ValueSequence, error) {
	var children ValueSequence
	for {
		tag, err := peekTag(r)
		if err != nil {
			if err == io.EOF {
				return nil, newDecodeError(InputEndedBeforeParsingCompleted,
					fmt.Sprintf("missing close tag for context %d", openNumber))
			}
			return nil, err
		}

		if tag.Kind == TagKindClose {
			if tag.Number != openNumber {
				return nil, newDecodeError(InvalidData,
					fmt.Sprintf("close tag %d does not match open tag %d", tag.Number, openNumber))
			}
			return children, nil
		}

		child, ok, err := decodeFromTag(r, tag, resolver)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newDecodeError(InvalidData, "unexpected end of sequence before close tag")
		}
		children = append(children, child)
	}
}

// decodeFromTag finishes decoding a value whose leading tag has already
// been read out (by decodeUntilClose's lookahead).
func decodeFromTag(r byteReader, tag Tag, resolver ContextResolver) (SequenceableValue, bool, error) {
	switch tag.Kind {
	case TagKindOpen:
		children, err := decodeUntilClose(r, tag.Number, resolver)
		if err != nil {
			return SequenceableValue{}, false, err
		}
		return ContextValueSequence(tag.Number, children), true, nil
	case TagKindApplication:
		v, err := decodePrimitive(r, tag.Number, tag.LVT)
		if err != nil {
			return SequenceableValue{}, false, err
		}
		return ApplicationValue(v), true, nil
	case TagKindContext:
		if resolver == nil {
			return SequenceableValue{}, false, newDecodeError(RequiredValueNotProvided,
				fmt.Sprintf("no context resolver supplied for context tag %d", tag.Number))
		}
		typeCode, ok := resolver(tag.Number)
		if !ok {
			return SequenceableValue{}, false, newDecodeError(RequiredValueNotProvided,
				fmt.Sprintf("no context resolution for context tag %d", tag.Number))
		}
		v, err := decodePrimitive(r, typeCode, tag.LVT)
		if err != nil {
			return SequenceableValue{}, false, err
		}
		return ContextValue(tag.Number, v), true, nil
	default:
		return SequenceableValue{}, false, newDecodeError(InvalidData, "close tag where value expected")
	}
}

// DecodeValueSequence decodes values from r until DecodeValue reports end
// of input, returning them as an ordered list. An empty input yields an
// empty, non-nil list.
func DecodeValueSequence(r io.Reader, resolver ContextResolver) (ValueSequence, error) {
	br := toByteReader(r)
	result := ValueSequence{}
	for {
		v, ok, err := decodeValue(br, resolver)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, v)
	}
}

// EncodeValue appends the wire encoding of v to buf and returns the
// extended slice.
func EncodeValue(buf []byte, v SequenceableValue) []byte {
	switch v.Kind {
	case SequenceApplication:
		typeCode, lvt, payload := encodePrimitivePayload(v.Value)
		buf = append(buf, EncodeApplicationTag(typeCode, lvt)...)
		return append(buf, payload...)

	case SequenceContext:
		_, lvt, payload := encodePrimitivePayload(v.Value)
		buf = append(buf, EncodeContextTagHeader(v.Context, lvt)...)
		return append(buf, payload...)

	case SequenceContextSequence:
		buf = append(buf, EncodeOpeningTag(v.Context)...)
		for _, child := range v.Children {
			buf = EncodeValue(buf, child)
		}
		return append(buf, EncodeClosingTag(v.Context)...)

	default:
		return buf
	}
}

// EncodeValueSequence encodes every value in seq in order.
func EncodeValueSequence(seq ValueSequence) []byte {
	buf := make([]byte, 0, 16*len(seq))
	for _, v := range seq {
		buf = EncodeValue(buf, v)
	}
	return buf
}

// NewValueReader wraps a byte slice APDU body for use with DecodeValue /
// DecodeValueSequence / DecodeApduHeader's reader-based entry points.
func NewValueReader(body []byte) *bytes.Reader {
	return bytes.NewReader(body)
}
