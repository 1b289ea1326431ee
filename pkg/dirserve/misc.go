// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"errors"
	"sync"
	"syscall"
)

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}

var bufPool = sync.Pool{
	New: func() interface{} {
		// 32 * 1024 is the size io.Copy allocates by default
		buf := make([]byte, 32*1024)
		return &buf
	},
}
