// mucor: aggregating variant calls into analyst-facing summary tables.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/mucor/blob/master/LICENSE.txt>.

package internal

import "sync"

// MaxPooledBufferSize is the largest capacity of a byte buffer that is
// returned to the pool. Larger buffers are left to the garbage
// collector, so that a single huge record does not pin its buffer.
const MaxPooledBufferSize = 1 << 20

var bufPool = sync.Pool{New: func() interface{} {
	return new([]byte)
}}

// ReserveByteBuffer returns an empty slice of bytes, reusing the
// storage of a buffer released earlier when one is available.
func ReserveByteBuffer() []byte {
	return (*bufPool.Get().(*[]byte))[:0]
}

// ReleaseByteBuffer makes buf available to later calls of
// ReserveByteBuffer. buf must not be used afterwards.
func ReleaseByteBuffer(buf []byte) {
	if cap(buf) > MaxPooledBufferSize {
		return
	}
	bufPool.Put(&buf)
}
