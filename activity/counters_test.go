// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package activity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersIncDec(t *testing.T) {
	var c Counters
	c.IncUpload()
	c.IncUpload()
	c.IncDownload()

	assert.EqualValues(t, 2, c.UploadInFlight())
	assert.EqualValues(t, 1, c.DownloadInFlight())

	c.DecUpload()
	assert.EqualValues(t, 1, c.UploadInFlight())

	c.DecDownload()
	assert.EqualValues(t, 0, c.DownloadInFlight())
}

func TestCountersConcurrentAccess(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup

	const n = 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.IncUpload()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, n, c.UploadInFlight())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.DecUpload()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 0, c.UploadInFlight())
}

func TestCountersNegativePanics(t *testing.T) {
	var c Counters
	assert.Panics(t, func() {
		c.DecUpload()
	})
}
