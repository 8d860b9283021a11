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

// Package pipeline wires RadioModel, Topology, the DelayQueues and the
// external Cabernet collaborator into the three-stage ingress/upload/
// download packet pipeline.
package pipeline

import (
	"strconv"
	"sync"
	"time"

	"github.com/cellsim/cellsim/cabernet"
	"github.com/cellsim/cellsim/ipalloc"
	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/progctx"
	"github.com/cellsim/cellsim/prng"
	"github.com/cellsim/cellsim/queue"
	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/topology"
)

// corruptionDrawSeed seeds the pipeline's single shared packet-corruption
// stream. Distinct from radiomodel.ShadowFadingSeed: the two concerns must
// not share a generator, or exercising one would perturb the other's
// sequence.
const corruptionDrawSeed = 11

// Pipeline owns the upload and download DelayQueues and drives the three
// logical stages (ingress poll, upload-stage drain, download-stage drain)
// against a Topology and a Cabernet collaborator.
type Pipeline struct {
	Topology *topology.Topology
	Alloc    *ipalloc.Allocator
	Cab      cabernet.Cabernet

	UploadQ   *queue.DelayQueue
	DownloadQ *queue.DelayQueue

	LogTap chan string

	dropping atomicBool
	delaying atomicBool
	corrupt  *prng.Stream

	modelsMu sync.Mutex
	models   map[*radiomodel.TechProfile]*radiomodel.Model

	pauseMu sync.Mutex
	paused  bool
	pauseCv *sync.Cond

	// workMu/workCh implement a select-compatible condition variable: every
	// Enqueue onto UploadQ or DownloadQ closes the current workCh and
	// replaces it, waking every drain loop parked on the old channel
	// immediately instead of making it wait for the next ticker tick.
	workMu sync.Mutex
	workCh chan struct{}
}

// New builds a Pipeline over the given Topology, IP allocator and Cabernet
// collaborator. Dropping and delaying are both enabled by default, and the
// pipeline starts paused, matching the control surface's documented
// `/init/simulation` unpause step.
func New(top *topology.Topology, alloc *ipalloc.Allocator, cab cabernet.Cabernet) *Pipeline {
	p := &Pipeline{
		Topology:  top,
		Alloc:     alloc,
		Cab:       cab,
		UploadQ:   queue.NewDelayQueue(),
		DownloadQ: queue.NewDelayQueue(),
		LogTap:    make(chan string, 256),
		corrupt:   prng.NewStream(corruptionDrawSeed),
		models:    map[*radiomodel.TechProfile]*radiomodel.Model{},
		paused:    true,
		workCh:    make(chan struct{}),
	}
	p.dropping.set(true)
	p.delaying.set(true)
	p.pauseCv = sync.NewCond(&p.pauseMu)
	return p
}

// signalWork wakes every drain loop currently parked on workSignal. Called
// after every DelayQueue.Enqueue so newly-arriving packets are picked up
// immediately rather than waiting out the next poll tick.
func (p *Pipeline) signalWork() {
	p.workMu.Lock()
	close(p.workCh)
	p.workCh = make(chan struct{})
	p.workMu.Unlock()
}

// workSignal returns the channel a drain loop should select on alongside
// its ticker and ctx.Done() to wake as soon as new work is enqueued.
func (p *Pipeline) workSignal() <-chan struct{} {
	p.workMu.Lock()
	defer p.workMu.Unlock()
	return p.workCh
}

// Step runs one synchronous pass through all three stages (ingress drained
// to empty, then one upload-drain pass, then one download-drain pass) and
// returns. It ignores Pause/Resume and bypasses Run's ticker-driven
// goroutines entirely, giving tests a deterministic, single-threaded
// cooperative alternative to starting and timing the background loops.
func (p *Pipeline) Step() {
	for p.IngressOnce() {
	}
	p.UploadDrainOnce()
	p.DownloadDrainOnce()
}

// modelFor returns the (lazily cached) RadioModel for a TechProfile.
// Profiles are compared by pointer identity: each canonical profile (e.g.
// radiomodel.LTE20MHz) owns exactly one Model and therefore one seeded
// shadow-fading stream, shared by every tower currently on that profile.
func (p *Pipeline) modelFor(profile *radiomodel.TechProfile) *radiomodel.Model {
	p.modelsMu.Lock()
	defer p.modelsMu.Unlock()

	m, ok := p.models[profile]
	if !ok {
		m = radiomodel.NewModel(profile)
		p.models[profile] = m
	}
	return m
}

// ModelFor exposes the (lazily cached) RadioModel for a TechProfile to
// callers outside the pipeline, such as the stats reporter.
func (p *Pipeline) ModelFor(profile *radiomodel.TechProfile) *radiomodel.Model {
	return p.modelFor(profile)
}

// SetDropping toggles error injection. When disabled, per_rate is forced to
// 0 at enqueue time for every subsequently-scheduled packet.
func (p *Pipeline) SetDropping(enabled bool) {
	p.dropping.set(enabled)
}

// SetDelaying toggles latency injection. When disabled, arrival_time is
// forced to "now" at enqueue time for every subsequently-scheduled packet.
func (p *Pipeline) SetDelaying(enabled bool) {
	p.delaying.set(enabled)
}

// Pause stops the running goroutines from doing further work until Resume
// is called. Idempotent.
func (p *Pipeline) Pause() {
	p.pauseMu.Lock()
	p.paused = true
	p.pauseMu.Unlock()
}

// Resume wakes any goroutines blocked in Pause and lets them proceed.
func (p *Pipeline) Resume() {
	p.pauseMu.Lock()
	p.paused = false
	p.pauseMu.Unlock()
	p.pauseCv.Broadcast()
}

func (p *Pipeline) waitWhilePaused(ctx *progctx.ProgCtx) {
	p.pauseMu.Lock()
	for p.paused && ctx.Err() == nil {
		p.pauseCv.Wait()
	}
	p.pauseMu.Unlock()
}

// Run starts the ingress, upload-drain and download-drain goroutines under
// ctx. Each loop polls at pollInterval when it finds no work, and respects
// Pause/Resume. Run returns immediately; goroutines are tracked via
// ctx.WaitAdd/WaitDone and stop when ctx is cancelled.
func (p *Pipeline) Run(ctx *progctx.ProgCtx, pollInterval time.Duration) {
	// Wake any goroutine parked in waitWhilePaused so cancellation is
	// observed promptly even if the pipeline is paused at shutdown.
	ctx.Defer(func() { p.pauseCv.Broadcast() })

	ctx.WaitAdd("pipeline-ingress", 1)
	go p.ingressLoop(ctx, pollInterval)

	ctx.WaitAdd("pipeline-upload-drain", 1)
	go p.drainLoop(ctx, pollInterval, "pipeline-upload-drain", p.UploadDrainOnce)

	ctx.WaitAdd("pipeline-download-drain", 1)
	go p.drainLoop(ctx, pollInterval, "pipeline-download-drain", p.DownloadDrainOnce)
}

func (p *Pipeline) ingressLoop(ctx *progctx.ProgCtx, pollInterval time.Duration) {
	defer ctx.WaitDone("pipeline-ingress")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.waitWhilePaused(ctx)
			for p.IngressOnce() {
				// Drain every ready frame before waiting for the next tick.
			}
		}
	}
}

func (p *Pipeline) drainLoop(ctx *progctx.ProgCtx, pollInterval time.Duration, name string, drainOnce func()) {
	defer ctx.WaitDone(name)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.workSignal():
		}
		p.waitWhilePaused(ctx)
		drainOnce()
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func (p *Pipeline) tapf(src, dst [4]byte, n int) {
	line := ipString(src) + " -> " + ipString(dst) + ": " + strconv.Itoa(n) + " bytes"
	select {
	case p.LogTap <- line:
	default:
		logger.Debugf("log tap full, dropping line: %s", line)
	}
}
