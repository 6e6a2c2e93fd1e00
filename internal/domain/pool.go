package domain

import "sync"

// indexPool recycles the index slices used by selection so that the hot
// path does not allocate once the pool is warm.
var indexPool = sync.Pool{
	New: func() any {
		buf := make([]int, 0, 64)
		return &buf
	},
}

// getIndexBuffer returns a buffer whose slice has length n.
func getIndexBuffer(n int) *[]int {
	buf, _ := indexPool.Get().(*[]int)
	if cap(*buf) < n {
		*buf = make([]int, n)
	}

	*buf = (*buf)[:n]

	return buf
}

func putIndexBuffer(buf *[]int) {
	*buf = (*buf)[:0]
	indexPool.Put(buf)
}
