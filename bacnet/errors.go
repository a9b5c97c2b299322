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
	"errors"
	"fmt"
)

// ErrorKind names the reason a codec rejected input or an encoder rejected
// a caller-supplied value. Every decode failure in this package carries one
// of these kinds rather than an opaque string.
type ErrorKind int

const (
	// InvalidData means the wire bytes are inconsistent with the grammar:
	// bad BVLL magic, a length mismatch, a malformed tag, an unknown
	// primitive type, a malformed APDU type.
	InvalidData ErrorKind = iota
	// Unsupported means the input is syntactically valid but falls outside
	// this profile: network-layer messages, foreign network specifiers,
	// unimplemented primitive types, or an unhandled service choice.
	Unsupported
	// InputEndedBeforeParsingCompleted means the input slice was exhausted
	// mid-field.
	InputEndedBeforeParsingCompleted
	// ValueSizeNotSupported means an Unsigned or Signed value carried a
	// length field greater than 4 octets.
	ValueSizeNotSupported
	// RequiredValueNotProvided means a service unmarshal found a mandatory
	// field missing from the value sequence.
	RequiredValueNotProvided
	// ReadError means the underlying io.Reader returned an error that is
	// not itself part of the wire grammar.
	ReadError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidData:
		return "invalid-data"
	case Unsupported:
		return "unsupported"
	case InputEndedBeforeParsingCompleted:
		return "input-ended-before-parsing-completed"
	case ValueSizeNotSupported:
		return "value-size-not-supported"
	case RequiredValueNotProvided:
		return "required-value-not-provided"
	case ReadError:
		return "read-error"
	default:
		return fmt.Sprintf("error-kind(%d)", int(k))
	}
}

// DecodeError is the error type returned by every decode function in this
// package. It carries a closed Kind plus a human-readable detail and, for
// ReadError, the underlying cause.
type DecodeError struct {
	Kind   ErrorKind
	Detail string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, someKindSentinel) checks against a DecodeError
// carrying the same Kind, regardless of Detail/Cause.
func (e *DecodeError) Is(target error) bool {
	var other *DecodeError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newDecodeError(kind ErrorKind, detail string) *DecodeError {
	return &DecodeError{Kind: kind, Detail: detail}
}

func wrapReadError(cause error, detail string) *DecodeError {
	return &DecodeError{Kind: ReadError, Detail: detail, Cause: cause}
}

// Sentinel instances for errors.Is comparisons against a specific kind,
// e.g. errors.Is(err, bacnet.ErrUnsupported).
var (
	ErrInvalidData                       = &DecodeError{Kind: InvalidData}
	ErrUnsupported                       = &DecodeError{Kind: Unsupported}
	ErrInputEndedBeforeParsingCompleted  = &DecodeError{Kind: InputEndedBeforeParsingCompleted}
	ErrValueSizeNotSupported             = &DecodeError{Kind: ValueSizeNotSupported}
	ErrRequiredValueNotProvided          = &DecodeError{Kind: RequiredValueNotProvided}
	ErrReadError                         = &DecodeError{Kind: ReadError}
)

// RejectReason enumerates the BACnet Reject-PDU reason codes.
type RejectReason uint8

const (
	RejectReasonOther                    RejectReason = 0
	RejectReasonBufferOverflow           RejectReason = 1
	RejectReasonInconsistentParameters   RejectReason = 2
	RejectReasonInvalidParameterDataType RejectReason = 3
	RejectReasonInvalidTag               RejectReason = 4
	RejectReasonMissingRequiredParameter RejectReason = 5
	RejectReasonParameterOutOfRange      RejectReason = 6
	RejectReasonTooManyArguments         RejectReason = 7
	RejectReasonUndefinedEnumeration     RejectReason = 8
	RejectReasonUnrecognizedService      RejectReason = 9
)

func (r RejectReason) String() string {
	names := map[RejectReason]string{
		RejectReasonOther:                    "other",
		RejectReasonBufferOverflow:           "buffer-overflow",
		RejectReasonInconsistentParameters:   "inconsistent-parameters",
		RejectReasonInvalidParameterDataType: "invalid-parameter-data-type",
		RejectReasonInvalidTag:               "invalid-tag",
		RejectReasonMissingRequiredParameter: "missing-required-parameter",
		RejectReasonParameterOutOfRange:      "parameter-out-of-range",
		RejectReasonTooManyArguments:         "too-many-arguments",
		RejectReasonUndefinedEnumeration:     "undefined-enumeration",
		RejectReasonUnrecognizedService:      "unrecognized-service",
	}
	if name, ok := names[r]; ok {
		return name
	}
	return fmt.Sprintf("reject-reason(%d)", uint8(r))
}

// AbortReason enumerates the BACnet Abort-PDU reason codes.
type AbortReason uint8

const (
	AbortReasonOther                         AbortReason = 0
	AbortReasonBufferOverflow                AbortReason = 1
	AbortReasonInvalidAPDUInThisState        AbortReason = 2
	AbortReasonPreemptedByHigherPriorityTask AbortReason = 3
	AbortReasonSegmentationNotSupported      AbortReason = 4
	AbortReasonSecurityError                 AbortReason = 5
	AbortReasonInsufficientSecurity          AbortReason = 6
)

func (a AbortReason) String() string {
	names := map[AbortReason]string{
		AbortReasonOther:                         "other",
		AbortReasonBufferOverflow:                "buffer-overflow",
		AbortReasonInvalidAPDUInThisState:        "invalid-apdu-in-this-state",
		AbortReasonPreemptedByHigherPriorityTask: "preempted-by-higher-priority-task",
		AbortReasonSegmentationNotSupported:      "segmentation-not-supported",
		AbortReasonSecurityError:                 "security-error",
		AbortReasonInsufficientSecurity:          "insufficient-security",
	}
	if name, ok := names[a]; ok {
		return name
	}
	return fmt.Sprintf("abort-reason(%d)", uint8(a))
}
