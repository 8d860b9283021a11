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

// Package radiomodel implements the PHY-layer math that turns a distance and
// a TechProfile into signal levels, SINR, bit error rate, packet error rate
// and latency. It is pure outside of one stochastic term (shadow fading),
// which is drawn from a generator owned by, and private to, each Model.
package radiomodel

import (
	"math"
	"sync"

	"github.com/cellsim/cellsim/prng"
)

// Model precomputes the derived quantities for one TechProfile and owns
// that profile's seeded shadow-fading stream. Models are safe for
// concurrent use: the embedded mutex serializes the only piece of mutable
// state, the random stream used by Pathloss.
type Model struct {
	Profile   *TechProfile
	Constants Constants

	NoiseDbm float64 // noise floor, dBm
	NoiseMw  float64 // noise floor, mW (linear)
	Fspl1mDb float64 // free-space pathloss at 1m, dB

	mu     sync.Mutex
	shadow *prng.Stream
}

// NewModel precomputes a Model for the given TechProfile, using the
// profile's own Constants override if it names one and DefaultConstants
// otherwise, and seeds its shadow-fading stream from Constants.ShadowFadingSeed.
func NewModel(profile *TechProfile) *Model {
	c := DefaultConstants
	if profile.Constants != nil {
		c = *profile.Constants
	}

	noiseDbm := c.ThermalNoiseDensityDbmPerHz + 10*math.Log10(profile.BandwidthHz)
	lambda := c.SpeedOfLight / profile.CarrierHz
	fspl1m := 20 * math.Log10(4*math.Pi/lambda)

	return &Model{
		Profile:   profile,
		Constants: c,
		NoiseDbm:  noiseDbm,
		NoiseMw:   DbToLin(noiseDbm),
		Fspl1mDb:  fspl1m,
		shadow:    prng.NewStream(c.ShadowFadingSeed),
	}
}

// DbToLin converts a decibel value to its linear (ratio or mW) equivalent.
func DbToLin(db float64) float64 {
	return math.Pow(10, db/10)
}

// LinToDb converts a linear ratio to decibels.
func LinToDb(lin float64) float64 {
	return 10 * math.Log10(lin)
}

// Pathloss returns the pathloss in dB for a given distance, including one
// freshly-sampled shadow-fading draw from this Model's own stream. Distance
// below MinDistanceM is clamped before the log. Every call draws a new
// sample; callers must not cache the result across calls at the same
// distance.
func (m *Model) Pathloss(d float64) float64 {
	if d < m.Constants.MinDistanceM {
		d = m.Constants.MinDistanceM
	}

	m.mu.Lock()
	x := m.shadow.Gauss(0, m.Constants.ShadowSigmaDb)
	m.mu.Unlock()

	return m.Fspl1mDb + 10*m.Constants.PathlossExponent*math.Log10(d) + x
}

// RxPowerDbm is the received power in dBm for a transmitter at power tx
// (dBm) with gain gTx (dBi), a receiver with gain gRx (dBi), over distance d
// (meters).
func (m *Model) RxPowerDbm(tx, gTx, gRx, d float64) float64 {
	return tx + gTx + gRx - m.Pathloss(d)
}
