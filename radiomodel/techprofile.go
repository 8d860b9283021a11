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

// TechProfile is a named set of PHY parameters consumed by a Model. It is
// immutable once constructed; "hot-swapping" a Tower's tech profile means
// pointing the Tower at a different *TechProfile instance, not mutating one.
type TechProfile struct {
	Name        string
	CarrierHz   float64 // carrier frequency, Hz
	BandwidthHz float64 // channel bandwidth, Hz
	EtaEff      float64 // spectral-efficiency factor, in (0, 1]

	// Constants overrides DefaultConstants for this profile. Nil means use
	// DefaultConstants unchanged; both canonical profiles below leave it nil.
	Constants *Constants
}

// Canonical tech profiles. Referenced by name from configuration and the
// HTTP control surface's network_type field.
var (
	LTE20MHz = &TechProfile{
		Name:        "LTE_20",
		CarrierHz:   2.6e9,
		BandwidthHz: 20e6,
		EtaEff:      0.50,
	}
	NR100MHz = &TechProfile{
		Name:        "NR_100",
		CarrierHz:   3.5e9,
		BandwidthHz: 100e6,
		EtaEff:      0.60,
	}
)

// ProfileByName resolves one of the canonical TechProfiles by its Name, as
// used in HTTP request bodies (e.g. "LTE_20", "NR_100"). Returns nil if the
// name is not recognized.
func ProfileByName(name string) *TechProfile {
	switch name {
	case LTE20MHz.Name:
		return LTE20MHz
	case NR100MHz.Name:
		return NR100MHz
	default:
		return nil
	}
}
