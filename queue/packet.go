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

// Package queue implements the delay-queue that carries Packets between
// pipeline stages, modeling per-hop radio latency as a scheduled arrival
// time in a min-heap.
package queue

import (
	"github.com/rs/xid"

	"github.com/cellsim/cellsim/activity"
)

// Endpoint is anything a Packet can reference as its source or
// destination: a UE or a Tower. Both expose their ActivityCounters so the
// queue can account in-flight packets without importing the topology
// package.
type Endpoint interface {
	Counters() *activity.Counters
}

// Packet is one frame in flight between pipeline stages.
type Packet struct {
	ArrivalTimeMs int64  // absolute wall-clock, ms since epoch
	Frame         []byte // immutable IPv4 frame, header included
	PacketErrorRate float64 // pre-sampled, in [0,1]

	Src Endpoint // optional upload-side endpoint
	Dst Endpoint // optional download-side endpoint

	Trace xid.ID // correlation id for log tracing only, never part of wire data

	seq int64 // insertion order, for FIFO tie-breaking
}

// NewPacket constructs a Packet and increments the in-flight counters of
// its endpoints (if any). Every Packet built this way must eventually reach
// Deliver exactly once, to balance the increment.
func NewPacket(arrivalTimeMs int64, frame []byte, per float64, src, dst Endpoint) *Packet {
	p := &Packet{
		ArrivalTimeMs:   arrivalTimeMs,
		Frame:           frame,
		PacketErrorRate: per,
		Src:             src,
		Dst:             dst,
		Trace:           xid.New(),
	}
	if src != nil {
		src.Counters().IncUpload()
	}
	if dst != nil {
		dst.Counters().IncDownload()
	}
	return p
}

// Deliver decrements the in-flight counters of this Packet's endpoints.
// Must be called exactly once, at the packet's terminal state (Lost,
// Egressed, or Delivered).
func (p *Packet) Deliver() {
	if p.Src != nil {
		p.Src.Counters().DecUpload()
	}
	if p.Dst != nil {
		p.Dst.Counters().DecDownload()
	}
}
