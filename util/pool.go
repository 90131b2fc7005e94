package util

import "sync"

// DefaultBufSize is the initial buffer size handed to line scanners
// (4 KiB).  Scanners grow past it up to their configured max line size.
const DefaultBufSize = 4 * 1024

// BufPool provides reusable byte buffers for line scanning.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
