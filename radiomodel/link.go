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

import "math"

// SinrDl computes the downlink SINR at a UE served from distance dServ,
// given the distances of co-channel interfering towers.
func (m *Model) SinrDl(dServ float64, interfererDistances []float64) float64 {
	c := m.Constants
	s := DbToLin(m.RxPowerDbm(c.BsTxPowerDbm, c.BsAntennaGainDbi, c.UeAntennaGainDbi, dServ))

	i := 0.0
	for _, d := range interfererDistances {
		i += DbToLin(m.RxPowerDbm(c.BsTxPowerDbm, c.BsAntennaGainDbi, c.UeAntennaGainDbi, d))
	}

	return s / (i + m.NoiseMw)
}

// SinrUl computes the uplink SINR at a tower receiving from distance dServ,
// given the distances of co-channel interfering UEs. Symmetric to SinrDl,
// with the UE as the transmitting side and the tower as the receiving side.
func (m *Model) SinrUl(dServ float64, interfererDistances []float64) float64 {
	c := m.Constants
	s := DbToLin(m.RxPowerDbm(c.UeTxPowerDbm, c.UeAntennaGainDbi, c.BsAntennaGainDbi, dServ))

	i := 0.0
	for _, d := range interfererDistances {
		i += DbToLin(m.RxPowerDbm(c.UeTxPowerDbm, c.UeAntennaGainDbi, c.BsAntennaGainDbi, d))
	}

	return s / (i + m.NoiseMw)
}

// RateBps returns the Shannon-derived bit rate achievable at the given SINR,
// scaled by the profile's spectral-efficiency factor. Returns 0 for
// non-positive SINR: callers must treat such a packet as undeliverable
// rather than dividing by this rate.
func (m *Model) RateBps(sinr float64) float64 {
	if sinr <= 0 {
		return 0
	}
	return m.Profile.EtaEff * m.Profile.BandwidthHz * math.Log2(1+sinr)
}

// BerQpsk returns the QPSK bit error rate for the given SINR. Non-positive
// SINR returns 0.5 (fully unreliable), matching the spec's edge policy.
func BerQpsk(sinr float64) float64 {
	if sinr <= 0 {
		return 0.5
	}
	return 0.5 * math.Erfc(math.Sqrt(sinr))
}

// PacketError returns the probability that an nbytes-long packet is
// corrupted, given a per-bit error rate ber.
func PacketError(ber float64, nbytes int) float64 {
	return 1 - math.Pow(1-ber, float64(8*nbytes))
}

// PacketErrorAt returns the packet-error probability for an nbytes frame at
// the given sinr, treating a non-positive sinr as certain corruption per
// the spec's edge policy (rate and latency are undefined there).
func PacketErrorAt(sinr float64, nbytes int) float64 {
	if sinr <= 0 {
		return 1
	}
	return PacketError(BerQpsk(sinr), nbytes)
}

// Latency returns the time, in milliseconds, to propagate and transmit an
// nbytes-long packet over distance dServ at the given sinr. The second
// return value is false when sinr is non-positive: the caller must treat
// the packet as immediately corrupted (PER = 1) and skip any further
// latency accounting, since the achievable rate is undefined at that point.
func (m *Model) Latency(dServ float64, nbytes int, sinr float64) (float64, bool) {
	if sinr <= 0 {
		return 0, false
	}

	rate := m.RateBps(sinr)
	if rate <= 0 {
		return 0, false
	}

	propagationS := dServ / m.Constants.SpeedOfLight
	transmissionS := float64(8*nbytes) / rate

	return (propagationS + transmissionS) * 1000, true
}
