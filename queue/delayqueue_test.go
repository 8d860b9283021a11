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

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cellsim/cellsim/activity"
)

type fakeEndpoint struct {
	c activity.Counters
}

func (f *fakeEndpoint) Counters() *activity.Counters { return &f.c }

func TestDelayQueueOrdersByArrivalTime(t *testing.T) {
	dq := NewDelayQueue()
	dq.Enqueue(NewPacket(300, nil, 0, nil, nil))
	dq.Enqueue(NewPacket(100, nil, 0, nil, nil))
	dq.Enqueue(NewPacket(200, nil, 0, nil, nil))

	arrived := dq.PopArrived(1000)
	assert.Len(t, arrived, 3)
	assert.Equal(t, int64(100), arrived[0].ArrivalTimeMs)
	assert.Equal(t, int64(200), arrived[1].ArrivalTimeMs)
	assert.Equal(t, int64(300), arrived[2].ArrivalTimeMs)
}

func TestDelayQueueFifoTiebreak(t *testing.T) {
	dq := NewDelayQueue()
	first := NewPacket(100, []byte("a"), 0, nil, nil)
	second := NewPacket(100, []byte("b"), 0, nil, nil)
	dq.Enqueue(first)
	dq.Enqueue(second)

	arrived := dq.PopArrived(100)
	assert.Len(t, arrived, 2)
	assert.Equal(t, first, arrived[0])
	assert.Equal(t, second, arrived[1])
}

func TestDelayQueuePopArrivedOnlyReadyPackets(t *testing.T) {
	dq := NewDelayQueue()
	dq.Enqueue(NewPacket(100, nil, 0, nil, nil))
	dq.Enqueue(NewPacket(9999, nil, 0, nil, nil))

	arrived := dq.PopArrived(100)
	assert.Len(t, arrived, 1)
	assert.Equal(t, 1, dq.Len())
}

func TestDelayQueueNextDueIn(t *testing.T) {
	dq := NewDelayQueue()
	_, ok := dq.NextDueIn(0)
	assert.False(t, ok)

	dq.Enqueue(NewPacket(150, nil, 0, nil, nil))
	delta, ok := dq.NextDueIn(100)
	assert.True(t, ok)
	assert.Equal(t, int64(50), delta)

	// An overdue head reports 0, never negative.
	delta, ok = dq.NextDueIn(500)
	assert.True(t, ok)
	assert.Equal(t, int64(0), delta)
}

func TestPacketCountersBalanceOnDeliver(t *testing.T) {
	src := &fakeEndpoint{}
	dst := &fakeEndpoint{}

	p := NewPacket(0, nil, 0, src, dst)
	assert.EqualValues(t, 1, src.Counters().UploadInFlight())
	assert.EqualValues(t, 1, dst.Counters().DownloadInFlight())

	p.Deliver()
	assert.EqualValues(t, 0, src.Counters().UploadInFlight())
	assert.EqualValues(t, 0, dst.Counters().DownloadInFlight())
}
