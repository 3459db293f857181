package fetch

import (
	"fmt"
	"io"
)

// Body is the payload of a successful fetch.
type Body struct {
	Target      string
	ContentType string
	Data        []byte
}

// Len returns the payload size in bytes.
func (b Body) Len() int {
	return len(b.Data)
}

// String returns the payload as text.
func (b Body) String() string {
	return string(b.Data)
}

// DefaultMaxBodyBytes caps how much of a payload is read into memory.
const DefaultMaxBodyBytes int64 = 10 << 20

// readLimited reads at most limit bytes from r. Larger payloads fail with KindDecode.
func readLimited(target string, r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, newError(KindDecode, target, err)
	}
	if int64(len(data)) > limit {
		return nil, newError(KindDecode, target, fmt.Errorf("body exceeds %d bytes", limit))
	}
	return data, nil
}
