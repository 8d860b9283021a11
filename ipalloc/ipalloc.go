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

// Package ipalloc issues sequential IPv4 addresses to UEs within a
// configured /24 subnet.
package ipalloc

import (
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Allocator hands out sequential addresses within a /24 subnet, starting
// from a configured address. It never reuses an address within the
// lifetime of one Allocator.
type Allocator struct {
	mu       sync.Mutex
	subnet   [4]byte // network portion, e.g. 10.0.0.0
	cursor   byte    // next host-byte to hand out
	started  bool
}

// New returns an Allocator for the /24 subnet containing startingIP, which
// is also the first address it will hand out.
func New(startingIP net.IP) (*Allocator, error) {
	ip4 := startingIP.To4()
	if ip4 == nil {
		return nil, errors.Errorf("not an IPv4 address: %v", startingIP)
	}

	return &Allocator{
		subnet: [4]byte{ip4[0], ip4[1], ip4[2], 0},
		cursor: ip4[3],
	}, nil
}

// Next returns the next address in sequence. Returns an error once the
// /24's host range (1-254) is exhausted.
func (a *Allocator) Next() ([4]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		if a.cursor >= 254 {
			return [4]byte{}, errors.Errorf("subnet %d.%d.%d.0/24 exhausted", a.subnet[0], a.subnet[1], a.subnet[2])
		}
		a.cursor++
	}
	a.started = true

	return [4]byte{a.subnet[0], a.subnet[1], a.subnet[2], a.cursor}, nil
}

// Contains reports whether ip falls within this Allocator's /24 subnet.
func (a *Allocator) Contains(ip [4]byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ip[0] == a.subnet[0] && ip[1] == a.subnet[1] && ip[2] == a.subnet[2]
}
