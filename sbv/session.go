package sbv

// Session ties encode and decode calls to one string pool. Streams that
// contain StringRefs decode correctly only through the Session whose
// pool produced them; a fresh Session fails with ErrInvalidStringRef.
//
// There is no package-level default session. Callers that want
// process-wide interning hold one Session for the life of the process;
// callers that need isolation construct one per scope.
type Session struct {
	pool *Pool
}

// NewSession creates a session with an empty pool.
func NewSession() *Session {
	return &Session{pool: NewPool()}
}

// Pool exposes the session's string pool, mainly for diagnostics.
func (s *Session) Pool() *Pool {
	return s.pool
}

// Encode serializes v into a fresh byte slice.
func (s *Session) Encode(v *Value) ([]byte, error) {
	return encodeValue(nil, v, s.pool)
}

// Decode deserializes one value from the start of b.
func (s *Session) Decode(b []byte) (*Value, error) {
	v, _, err := s.DecodeAt(b, 0)
	return v, err
}

// DecodeAt deserializes one value starting at off and returns the value
// and the offset of the first byte after it, for callers threading a
// cursor through a buffer holding several values.
func (s *Session) DecodeAt(b []byte, off int) (*Value, int, error) {
	v, end, err := decodeValue(b, off, s.pool)
	if err != nil {
		return nil, off, err
	}
	return v, end, nil
}
