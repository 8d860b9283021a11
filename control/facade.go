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

// Package control exposes the simulator's mutating operations (topology
// edits, pause/resume, error/latency injection toggles, link diagnostics)
// through a single in-process Facade, and an HTTP surface on top of it.
package control

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cellsim/cellsim/ipalloc"
	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/pipeline"
	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

const referenceFrameBytes = 1024

// Facade is the single entry point through which every control operation
// (topology edits, run/pause, error/latency injection, link diagnostics)
// reaches the running simulation. Both the HTTP layer and an interactive
// REPL are thin wrappers over it.
type Facade struct {
	RunID string

	Topology *topology.Topology
	Alloc    *ipalloc.Allocator
	Pipeline *pipeline.Pipeline

	pixelsPerMeter float64
}

// New returns a Facade wired to a running simulation's collaborators.
// pixelsPerMeter defaults to 1 (i.e. positions in requests are treated as
// meters) until Configure sets it otherwise.
func New(top *topology.Topology, alloc *ipalloc.Allocator, pipe *pipeline.Pipeline) *Facade {
	return &Facade{
		RunID:          uuid.NewString(),
		Topology:       top,
		Alloc:          alloc,
		Pipeline:       pipe,
		pixelsPerMeter: 1,
	}
}

// ConfigureRequest mirrors the `/configure` request body (spec.md §6): the
// simulated area's dimensions and a view-scaling factor used only at the
// HTTP boundary, plus the tech profile to apply to every existing tower.
type ConfigureRequest struct {
	HeightM        float64
	WidthM         float64
	PixelsPerMeter float64
	NetworkType    string
	StartingIP     string
}

// Configure applies network_type to every existing tower and records the
// pixels-per-meter scaling factor used to translate future pixel-space
// request coordinates to meters. Height/width and starting IP are accepted
// but neither stored nor applied: the Topology has no bounds, and the
// allocator's starting address is fixed at process start.
func (f *Facade) Configure(req ConfigureRequest) error {
	if req.PixelsPerMeter <= 0 {
		return errors.Errorf("pixels_per_meter must be positive, got %v", req.PixelsPerMeter)
	}
	profile := radiomodel.ProfileByName(req.NetworkType)
	if profile == nil {
		return errors.Errorf("unknown network_type: %q", req.NetworkType)
	}

	f.pixelsPerMeter = req.PixelsPerMeter
	for _, t := range f.Topology.ListTowerRefs() {
		if err := f.Topology.SetTowerState(t.ID, nil, nil, profile); err != nil {
			return err
		}
	}
	logger.Infof("control: configured network_type=%s pixels_per_meter=%v", profile.Name, req.PixelsPerMeter)
	return nil
}

// toMeters converts a pixel-space coordinate from an HTTP request body into
// meters, per the boundary-only view-scaling policy (spec.md §6).
func (f *Facade) toMeters(px, py float64) types.Point {
	ppm := f.pixelsPerMeter
	if ppm <= 0 {
		ppm = 1
	}
	return types.Point{X: px / ppm, Y: py / ppm}
}

// AddTower creates a powered tower at (x, y) pixels on the default tech
// profile and returns its id.
func (f *Facade) AddTower(x, y float64) types.TowerID {
	pos := f.toMeters(x, y)
	return f.Topology.AddTower(pos, true, radiomodel.LTE20MHz)
}

// SetTowerState moves/(de)powers an existing tower.
func (f *Facade) SetTowerState(id types.TowerID, x, y float64, on bool) error {
	pos := f.toMeters(x, y)
	return f.Topology.SetTowerState(id, &pos, &on, nil)
}

// GetTower returns a snapshot of a tower by id.
func (f *Facade) GetTower(id types.TowerID) (topology.Tower, error) {
	return f.Topology.GetTower(id)
}

// AddUE creates a UE at (x, y) pixels, allocates it an IP, registers the new
// endpoint with Cabernet and returns its id. The caller is expected to read
// back GetUE for the allocated IP and resulting serving tower.
func (f *Facade) AddUE(x, y float64) (types.UEID, error) {
	ip, err := f.Alloc.Next()
	if err != nil {
		return types.InvalidUEID, errors.Wrap(err, "allocate UE IP")
	}
	if err := f.Pipeline.Cab.CreateUE(ip); err != nil {
		return types.InvalidUEID, errors.Wrap(err, "create UE in cabernet")
	}
	pos := f.toMeters(x, y)
	return f.Topology.AddUE(pos, ip), nil
}

// SetUEState moves a UE and, if changeIP is true, issues it a new allocated
// address and notifies Cabernet of the change.
func (f *Facade) SetUEState(id types.UEID, x, y float64, changeIP bool) error {
	pos := f.toMeters(x, y)

	var newIP *[4]byte
	if changeIP {
		ue, err := f.Topology.GetUE(id)
		if err != nil {
			return err
		}
		ip, err := f.Alloc.Next()
		if err != nil {
			return errors.Wrap(err, "allocate UE IP")
		}
		if err := f.Pipeline.Cab.ChangeIP(ue.IP, ip); err != nil {
			return errors.Wrap(err, "change IP in cabernet")
		}
		newIP = &ip
	}

	return f.Topology.SetUEState(id, &pos, newIP)
}

// GetUE returns a snapshot of a UE by id.
func (f *Facade) GetUE(id types.UEID) (topology.UE, error) {
	return f.Topology.GetUE(id)
}

// Pause stops pipeline processing.
func (f *Facade) Pause() {
	f.Pipeline.Pause()
}

// Resume restarts pipeline processing.
func (f *Facade) Resume() {
	f.Pipeline.Resume()
}

// SetDropping toggles simulated packet error injection.
func (f *Facade) SetDropping(enabled bool) {
	f.Pipeline.SetDropping(enabled)
}

// SetDelaying toggles simulated latency injection.
func (f *Facade) SetDelaying(enabled bool) {
	f.Pipeline.SetDelaying(enabled)
}

// LinkStats is the `/check/link/{id}` response payload: upload/download
// latency, bandwidth and packet-error-rate for a UE at the 1024-byte
// reference frame size, grounded on original_source's check_link handler.
type LinkStats struct {
	UploadLatencyMs       float64
	DownloadLatencyMs     float64
	UploadBandwidthMbps   float64
	DownloadBandwidthMbps float64
	UploadPER             float64
	DownloadPER           float64
}

// LinkStats computes a UE's current link quality against its serving
// tower. Returns an error if the UE does not exist or is not currently
// associated with any tower.
func (f *Facade) LinkStats(id types.UEID) (LinkStats, error) {
	ue := f.Topology.UERef(id)
	if ue == nil {
		return LinkStats{}, errors.Errorf("no such UE: %d", id)
	}
	if ue.Serving == types.InvalidTowerID {
		return LinkStats{}, errors.Errorf("UE %d is not associated with any tower", id)
	}

	tower := f.Topology.TowerRef(ue.Serving)
	model := f.Pipeline.ModelFor(tower.Profile)
	dServ := distance(ue.Pos, tower.Pos)

	ulInterf := distancesToUEs(f.Topology.ActiveUEs(ue.ID), tower.Pos)
	dlInterf := distancesToTowers(f.Topology.ActiveTowers(tower.ID), ue.Pos)

	sinrUL := model.SinrUl(dServ, ulInterf)
	sinrDL := model.SinrDl(dServ, dlInterf)

	upLat, _ := model.Latency(dServ, referenceFrameBytes, sinrUL)
	dnLat, _ := model.Latency(dServ, referenceFrameBytes, sinrDL)

	return LinkStats{
		UploadLatencyMs:       upLat,
		DownloadLatencyMs:     dnLat,
		UploadBandwidthMbps:   model.RateBps(sinrUL) / 1e6,
		DownloadBandwidthMbps: model.RateBps(sinrDL) / 1e6,
		UploadPER:             radiomodel.PacketErrorAt(sinrUL, referenceFrameBytes),
		DownloadPER:           radiomodel.PacketErrorAt(sinrDL, referenceFrameBytes),
	}, nil
}

func distance(a, b types.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func distancesToUEs(ues []*topology.UE, to types.Point) []float64 {
	out := make([]float64, len(ues))
	for i, u := range ues {
		out[i] = distance(u.Pos, to)
	}
	return out
}

func distancesToTowers(towers []*topology.Tower, to types.Point) []float64 {
	out := make([]float64, len(towers))
	for i, t := range towers {
		out[i] = distance(t.Pos, to)
	}
	return out
}
