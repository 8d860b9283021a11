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

package cabernet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimPollFrameFIFO(t *testing.T) {
	s := NewSim()
	_, ok := s.PollFrame()
	assert.False(t, ok)

	s.Inject([]byte("a"))
	s.Inject([]byte("b"))

	f, ok := s.PollFrame()
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), f)

	f, ok = s.PollFrame()
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), f)

	_, ok = s.PollFrame()
	assert.False(t, ok)
}

func TestSimSendFrameRecordsDelivered(t *testing.T) {
	s := NewSim()
	assert.NoError(t, s.SendFrame([]byte("x")))
	assert.NoError(t, s.SendFrame([]byte("y")))
	assert.Equal(t, [][]byte{[]byte("x"), []byte("y")}, s.Delivered())
}

func TestSimImplementsCabernet(t *testing.T) {
	var _ Cabernet = NewSim()
}
