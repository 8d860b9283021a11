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

// Package stats periodically snapshots per-UE link quality and exposes it
// both as a human-readable text report and as Prometheus gauges.
package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/progctx"
	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

const referenceFrameBytes = 1024

// ModelSource is the subset of *pipeline.Pipeline the reporter needs: the
// cached RadioModel for a tower's current TechProfile. Defined here rather
// than imported from pipeline, to avoid a stats->pipeline->stats cycle
// should the pipeline ever want to import stats for its own counters.
type ModelSource interface {
	ModelFor(profile *radiomodel.TechProfile) *radiomodel.Model
}

// Line is one UE's reported snapshot.
type Line struct {
	UEID             types.UEID
	ServingTower     types.TowerID // types.InvalidTowerID if none
	DistanceM        float64
	UploadPER        float64
	DownloadPER      float64
	UploadRateMbps   float64
	DownloadRateMbps float64
}

// Reporter snapshots Topology every interval and writes the result to an
// io.Writer (e.g. a text file) and, if Stdout is true, additionally to
// stdout.
type Reporter struct {
	Topology *topology.Topology
	Models   ModelSource
	Out      io.Writer
	Stdout   bool

	metrics *prometheusMetrics
}

// New returns a Reporter writing to out, optionally duplicating to stdout.
func New(top *topology.Topology, models ModelSource, out io.Writer, stdout bool) *Reporter {
	return &Reporter{
		Topology: top,
		Models:   models,
		Out:      out,
		Stdout:   stdout,
		metrics:  newPrometheusMetrics(),
	}
}

// Run starts the reporting loop under ctx, ticking every interval.
func (r *Reporter) Run(ctx *progctx.ProgCtx, interval time.Duration) {
	ctx.WaitAdd("stats-reporter", 1)
	go func() {
		defer ctx.WaitDone("stats-reporter")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.ReportOnce()
			}
		}
	}()
}

// ReportOnce computes and emits one snapshot. Exported for deterministic
// testing.
func (r *Reporter) ReportOnce() []Line {
	lines := r.Snapshot()
	for _, l := range lines {
		r.emit(l)
		r.metrics.observe(l)
	}
	return lines
}

// Snapshot computes, but does not emit, the current per-UE lines. It never
// mutates Topology state; every counter it reads is a best-effort snapshot.
func (r *Reporter) Snapshot() []Line {
	var lines []Line
	for _, u := range r.Topology.ListUERefs() {
		lines = append(lines, r.lineFor(u))
	}
	return lines
}

func (r *Reporter) lineFor(u *topology.UE) Line {
	if u.Serving == types.InvalidTowerID {
		return Line{UEID: u.ID, ServingTower: types.InvalidTowerID}
	}

	tower := r.Topology.TowerRef(u.Serving)
	if tower == nil {
		return Line{UEID: u.ID, ServingTower: types.InvalidTowerID}
	}

	model := r.Models.ModelFor(tower.Profile)
	dServ := distance(u.Pos, tower.Pos)

	ulInterf := distancesToUEs(r.Topology.ActiveUEs(u.ID), tower.Pos)
	dlInterf := distancesToTowers(r.Topology.ActiveTowers(tower.ID), u.Pos)

	sinrUL := model.SinrUl(dServ, ulInterf)
	sinrDL := model.SinrDl(dServ, dlInterf)

	return Line{
		UEID:             u.ID,
		ServingTower:     tower.ID,
		DistanceM:        dServ,
		UploadPER:        radiomodel.PacketErrorAt(sinrUL, referenceFrameBytes),
		DownloadPER:      radiomodel.PacketErrorAt(sinrDL, referenceFrameBytes),
		UploadRateMbps:   model.RateBps(sinrUL) / 1e6,
		DownloadRateMbps: model.RateBps(sinrDL) / 1e6,
	}
}

func (r *Reporter) emit(l Line) {
	text := formatLine(l)
	if r.Out != nil {
		if _, err := fmt.Fprintln(r.Out, text); err != nil {
			logger.Errorf("stats: write failed: %v", err)
		}
	}
	if r.Stdout {
		fmt.Println(text)
	}
}

func formatLine(l Line) string {
	serving := "none"
	if l.ServingTower != types.InvalidTowerID {
		serving = fmt.Sprintf("%d", l.ServingTower)
	}
	return fmt.Sprintf(
		"ue=%d serving=%s dist_m=%.1f ul_per=%.4f dl_per=%.4f ul_mbps=%.2f dl_mbps=%.2f",
		l.UEID, serving, l.DistanceM, l.UploadPER, l.DownloadPER, l.UploadRateMbps, l.DownloadRateMbps,
	)
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
