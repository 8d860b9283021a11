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

// Package prng centralizes cellsim's pseudo-random streams, so each concern
// (a TechProfile's shadow fading, the pipeline's packet-corruption draw)
// samples from its own seeded generator rather than the global math/rand
// state.
package prng

import "math/rand"

// Stream is a single named, independently-seeded random source. It is not
// safe for concurrent use by multiple goroutines; callers that share a
// Stream across goroutines must serialize access themselves (the radio
// model guards its shadow-fading stream with a mutex).
type Stream struct {
	rng *rand.Rand
}

// NewStream creates a new Stream seeded with the given value. A zero seed
// is valid and produces a deterministic (if unremarkable) stream; callers
// wanting run-to-run variation should seed from a time- or entropy-derived
// value themselves.
func NewStream(seed int64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))}
}

// Gauss draws a sample from a normal distribution with the given mean and
// standard deviation. Used by RadioModel's shadow-fading term.
func (s *Stream) Gauss(mean, sigma float64) float64 {
	return mean + s.rng.NormFloat64()*sigma
}

// Float64 draws a uniform sample from [0, 1). Used by the pipeline's
// packet-corruption draw and by anything else that needs a fresh
// probability sample.
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}
