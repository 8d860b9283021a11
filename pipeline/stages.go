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

package pipeline

import (
	"math"

	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/queue"
	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

// IngressOnce runs one iteration of stage A (ingress poll). It returns true
// if a frame was polled (regardless of whether it was enqueued or
// dropped), so callers can loop until Cabernet has no more ready frames.
func (p *Pipeline) IngressOnce() bool {
	frame, ok := p.Cab.PollFrame()
	if !ok {
		return false
	}

	src, dst, ok := parseFrameIPs(frame)
	if !ok {
		logger.Warnf("ingress: frame too short to carry an IPv4 header (%d bytes)", len(frame))
		return true
	}

	now := nowMs()

	if !p.Alloc.Contains(src) {
		// Internet-origin traffic: schedule straight into upload_q, to be
		// resolved to a destination tower by the upload-stage drain.
		p.UploadQ.Enqueue(queue.NewPacket(now, frame, 0, nil, nil))
		p.signalWork()
		p.tapf(src, dst, len(frame))
		return true
	}

	srcUE := p.Topology.UEByIP(src)
	if srcUE == nil || srcUE.Serving == types.InvalidTowerID {
		logger.Debugf("ingress: dropping frame from unassociated source %s", ipString(src))
		return true
	}

	tower := p.Topology.TowerRef(srcUE.Serving)
	model := p.modelFor(tower.Profile)

	dServ := distance(srcUE.Pos, tower.Pos)
	interferers := uDistances(p.Topology.ActiveUEs(srcUE.ID), tower.Pos)

	sinr := model.SinrUl(dServ, interferers)
	per := radiomodel.PacketErrorAt(sinr, len(frame))
	latMs := latencyFor(model, dServ, len(frame), sinr)

	arrival := now + int64(math.Round(latMs))
	if !p.delaying.get() {
		arrival = now
	}
	if !p.dropping.get() {
		per = 0
	}

	p.UploadQ.Enqueue(queue.NewPacket(arrival, frame, per, srcUE, tower))
	p.signalWork()
	p.tapf(src, dst, len(frame))
	return true
}

// UploadDrainOnce runs one iteration of stage B (upload-stage drain): every
// packet due by now is popped, possibly discarded to simulated corruption,
// and otherwise either egressed (external destination) or rescheduled into
// download_q.
func (p *Pipeline) UploadDrainOnce() {
	for _, pkt := range p.UploadQ.PopArrived(nowMs()) {
		pkt.Deliver()

		if p.corrupt.Float64() < pkt.PacketErrorRate {
			logger.Debugf("upload-drain: packet lost to simulated corruption trace=%s", pkt.Trace)
			continue
		}

		src, dst, ok := parseFrameIPs(pkt.Frame)
		if !ok {
			continue
		}

		if !p.Alloc.Contains(dst) {
			if err := p.Cab.SendFrame(pkt.Frame); err != nil {
				logger.Errorf("upload-drain: egress failed: %v", err)
			}
			continue
		}

		dstUE := p.Topology.UEByIP(dst)
		if dstUE == nil || dstUE.Serving == types.InvalidTowerID {
			logger.Debugf("upload-drain: dropping, destination %s unassociated", ipString(dst))
			continue
		}

		tower := p.Topology.TowerRef(dstUE.Serving)
		model := p.modelFor(tower.Profile)

		dServ := distance(dstUE.Pos, tower.Pos)
		interferers := tDistances(p.Topology.ActiveTowers(tower.ID), dstUE.Pos)

		sinr := model.SinrDl(dServ, interferers)
		per := radiomodel.PacketErrorAt(sinr, len(pkt.Frame))
		latMs := latencyFor(model, dServ, len(pkt.Frame), sinr)

		now := nowMs()
		arrival := now + int64(math.Round(latMs))
		if !p.delaying.get() {
			arrival = now
		}
		if !p.dropping.get() {
			per = 0
		}

		p.DownloadQ.Enqueue(queue.NewPacket(arrival, pkt.Frame, per, tower, dstUE))
		p.signalWork()
		p.tapf(src, dst, len(pkt.Frame))
	}
}

// DownloadDrainOnce runs one iteration of stage C (download-stage drain):
// every packet due by now is popped, possibly discarded to simulated
// corruption, and otherwise delivered to Cabernet.
func (p *Pipeline) DownloadDrainOnce() {
	for _, pkt := range p.DownloadQ.PopArrived(nowMs()) {
		pkt.Deliver()

		if p.corrupt.Float64() < pkt.PacketErrorRate {
			logger.Debugf("download-drain: packet lost to simulated corruption trace=%s", pkt.Trace)
			continue
		}

		if err := p.Cab.SendFrame(pkt.Frame); err != nil {
			logger.Errorf("download-drain: delivery failed: %v", err)
		}
	}
}

// latencyFor returns the scheduling delay in ms for an nbytes frame over
// dServ at the given sinr, or 0 if sinr is non-positive (the packet is
// already marked for certain corruption and its latency does not matter).
func latencyFor(model *radiomodel.Model, dServ float64, nbytes int, sinr float64) float64 {
	lat, ok := model.Latency(dServ, nbytes, sinr)
	if !ok {
		return 0
	}
	return lat
}

func distance(a, b types.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func uDistances(ues []*topology.UE, to types.Point) []float64 {
	out := make([]float64, len(ues))
	for i, u := range ues {
		out[i] = distance(u.Pos, to)
	}
	return out
}

func tDistances(towers []*topology.Tower, to types.Point) []float64 {
	out := make([]float64, len(towers))
	for i, tw := range towers {
		out[i] = distance(tw.Pos, to)
	}
	return out
}
