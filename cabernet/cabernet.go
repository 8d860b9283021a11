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

// Package cabernet defines the external L3 collaborator the pipeline polls
// frames from and delivers frames to. The real Cabernet lives outside this
// module; simcab provides an in-memory double for tests and standalone
// runs.
package cabernet

// Cabernet is the external L3 collaborator. Implementations must be safe
// for concurrent use: PollFrame is called from the pipeline's ingress
// goroutine while SendFrame is called from drain goroutines.
type Cabernet interface {
	// CreateUE registers a new L3 endpoint at the given IPv4 address.
	CreateUE(ip [4]byte) error

	// ChangeIP updates an existing endpoint's registered address.
	ChangeIP(old, new [4]byte) error

	// PollFrame returns the next pending frame from any source, or ok=false
	// if none is currently available. Must not block indefinitely.
	PollFrame() (frame []byte, ok bool)

	// SendFrame accepts a frame for delivery. An error here is an egress
	// failure (spec error kind (c)): callers must catch, log, and treat
	// the packet as lost, never propagate as fatal.
	SendFrame(frame []byte) error
}
