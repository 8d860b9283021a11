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
	"container/heap"
	"sync"
)

// heapSlice is the container/heap.Interface implementation backing
// DelayQueue. Less orders by ArrivalTimeMs, with seq as a FIFO tiebreaker.
type heapSlice []*Packet

func (h heapSlice) Len() int { return len(h) }

func (h heapSlice) Less(i, j int) bool {
	if h[i].ArrivalTimeMs != h[j].ArrivalTimeMs {
		return h[i].ArrivalTimeMs < h[j].ArrivalTimeMs
	}
	return h[i].seq < h[j].seq
}

func (h heapSlice) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *heapSlice) Push(x interface{}) {
	*h = append(*h, x.(*Packet))
}

func (h *heapSlice) Pop() interface{} {
	old := *h
	n := len(old)
	elem := old[n-1]
	*h = old[:n-1]
	return elem
}

// DelayQueue is a min-heap of Packets ordered by ArrivalTimeMs, guarded by a
// single mutex. After any operation its head holds the soonest-arriving
// packet.
type DelayQueue struct {
	mu      sync.Mutex
	h       heapSlice
	nextSeq int64
}

// NewDelayQueue returns an empty DelayQueue.
func NewDelayQueue() *DelayQueue {
	dq := &DelayQueue{h: heapSlice{}}
	heap.Init(&dq.h)
	return dq
}

// Enqueue adds a packet to the queue. O(log n).
func (dq *DelayQueue) Enqueue(p *Packet) {
	dq.mu.Lock()
	defer dq.mu.Unlock()

	p.seq = dq.nextSeq
	dq.nextSeq++
	heap.Push(&dq.h, p)
}

// PopArrived atomically removes and returns every packet whose
// ArrivalTimeMs is at or before nowMs, in ascending arrival order.
func (dq *DelayQueue) PopArrived(nowMs int64) []*Packet {
	dq.mu.Lock()
	defer dq.mu.Unlock()

	var arrived []*Packet
	for len(dq.h) > 0 && dq.h[0].ArrivalTimeMs <= nowMs {
		arrived = append(arrived, heap.Pop(&dq.h).(*Packet))
	}
	return arrived
}

// NextDueIn returns the number of milliseconds until the head packet is
// due, and true if the queue is non-empty. A negative delta (the head is
// already overdue) is reported as 0.
func (dq *DelayQueue) NextDueIn(nowMs int64) (int64, bool) {
	dq.mu.Lock()
	defer dq.mu.Unlock()

	if len(dq.h) == 0 {
		return 0, false
	}

	delta := dq.h[0].ArrivalTimeMs - nowMs
	if delta < 0 {
		delta = 0
	}
	return delta, true
}

// Len returns the current number of packets in the queue.
func (dq *DelayQueue) Len() int {
	dq.mu.Lock()
	defer dq.mu.Unlock()
	return len(dq.h)
}
