// Package sbv implements SBV, a compact self-describing binary codec for
// dynamically-typed values.
//
// SBV encodes nil, booleans, numbers, strings, ordered tables and
// homogeneous arrays into a tagged byte stream and reconstructs them
// losslessly. It is designed to be:
//   - Compact (varint lengths, run-length compression of repeated
//     array elements, interning of long strings)
//   - Deterministic (table keys are emitted in canonical order, so
//     logically-equal values produce byte-identical streams)
//   - Session-scoped (long strings are held in a shared pool and
//     referenced by index; encoder and decoder must share the pool)
//
// # Wire Format
//
// Every encoded unit starts with one tag byte. The top 3 bits select the
// kind, the low 5 bits carry kind-specific payload:
//
//	0 Nil        no payload
//	1 Number     sign flag in bit 0x10; format byte; varint or float64
//	2 Bool       value in bit 0
//	3 String     inline length 1..31, or 0 = explicit length byte follows
//	4 Table      varint entry count + sorted key/value pairs
//	5 Array      varint element count + element/run encodings
//	6 StringRef  zero-based pool index; bit 0 set = 2-byte LE, clear = 1 byte
//	7 Run        varint run length + one encoding of the repeated element
//
// Unsigned lengths and counts use LEB128 varints: 7 payload bits per byte,
// low-order group first, high bit set on every byte except the last.
//
// # The String Pool
//
// Strings longer than 255 bytes are never written to the stream. They are
// appended to the session's pool and emitted as a StringRef. The pool is
// not serialized: a stream containing references decodes correctly only
// against the same pool instance (the same Session) that produced it.
// This is a deliberate property, not an interchange bug — SBV targets
// long-lived sessions where both sides share pool history, not
// cross-process durability.
//
// # Sessions
//
// All encoding and decoding goes through a Session, which owns one pool:
//
//	s := sbv.NewSession()
//	data, err := s.Encode(sbv.Arr(sbv.Int(1), sbv.Str("a")))
//	v, err := s.Decode(data)
//
// A Session is safe for concurrent use; the pool guards its own state.
// Separate Sessions share nothing.
package sbv
