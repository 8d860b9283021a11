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

package radiomodel

// Constants holds the fixed physical constants and antenna/power parameters
// a Model computes against. They are grouped as named fields, rather than
// bare package consts, so a future TechProfile can override one of them
// (e.g. a different antenna gain for a small-cell deployment) without
// touching any of the math in model.go/link.go, which only ever reads
// through a Model's Constants field.
type Constants struct {
	SpeedOfLight float64 // c, m/s

	ThermalNoiseDensityDbmPerHz float64 // kT at room temperature, dBm/Hz
	PathlossExponent            float64 // n, urban non-line-of-sight
	ShadowSigmaDb               float64 // log-normal shadowing std-dev, dB
	MinDistanceM                float64 // distance is clamped to at least this

	BsAntennaGainDbi float64
	UeAntennaGainDbi float64
	BsTxPowerDbm     float64
	UeTxPowerDbm     float64

	// ShadowFadingSeed seeds each TechProfile's own shadow-fading stream.
	// Every profile starts from the same seed value by design (spec §4.1):
	// determinism is per-profile, not cross-profile, so properties must not
	// depend on the order in which profiles are exercised.
	ShadowFadingSeed int64
}

// DefaultConstants is the single urban macro-cell parameter set every
// canonical TechProfile uses unless it names an override in its own
// Constants field.
var DefaultConstants = Constants{
	SpeedOfLight: 3.0e8,

	ThermalNoiseDensityDbmPerHz: -174.0,
	PathlossExponent:            5.0,
	ShadowSigmaDb:               6.0,
	MinDistanceM:                1.0,

	BsAntennaGainDbi: 15.0,
	UeAntennaGainDbi: 0.0,
	BsTxPowerDbm:     40.0,
	UeTxPowerDbm:     23.0,

	ShadowFadingSeed: 7,
}
