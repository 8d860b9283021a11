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

import "sync"

// Sim is an in-memory Cabernet double: PollFrame drains a FIFO of frames
// pushed in by Inject, and SendFrame appends to a log of delivered frames.
// Used by pipeline tests and by `cellsim serve` when no real Cabernet
// backend is wired in.
type Sim struct {
	mu        sync.Mutex
	pending   [][]byte
	delivered [][]byte
	ues       map[[4]byte]bool
}

// NewSim returns an empty Sim.
func NewSim() *Sim {
	return &Sim{ues: map[[4]byte]bool{}}
}

func (s *Sim) CreateUE(ip [4]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ues[ip] = true
	return nil
}

func (s *Sim) ChangeIP(old, new [4]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ues, old)
	s.ues[new] = true
	return nil
}

func (s *Sim) PollFrame() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil, false
	}
	frame := s.pending[0]
	s.pending = s.pending[1:]
	return frame, true
}

func (s *Sim) SendFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, frame)
	return nil
}

// Inject queues a frame to be returned by a future PollFrame call, as if it
// had arrived from a UE or from the Internet side.
func (s *Sim) Inject(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, frame)
}

// Delivered returns a copy of every frame passed to SendFrame so far, in
// delivery order.
func (s *Sim) Delivered() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.delivered))
	copy(out, s.delivered)
	return out
}

// Registered reports whether ip was registered by CreateUE and has not
// since been replaced by ChangeIP. Exposed for tests to confirm callers
// notify Cabernet on the endpoint-lifecycle paths that require it.
func (s *Sim) Registered(ip [4]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ues[ip]
}
