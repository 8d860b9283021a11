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

package control

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cellsim/cellsim/cabernet"
	"github.com/cellsim/cellsim/ipalloc"
	"github.com/cellsim/cellsim/pipeline"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	f, _ := newTestFacadeWithCab(t)
	return f
}

func newTestFacadeWithCab(t *testing.T) (*Facade, *cabernet.Sim) {
	t.Helper()
	top := topology.New()
	alloc, err := ipalloc.New(net.IPv4(10, 0, 0, 1))
	assert.NoError(t, err)
	cab := cabernet.NewSim()
	pipe := pipeline.New(top, alloc, cab)
	return New(top, alloc, pipe), cab
}

func TestAddTowerAndGetTower(t *testing.T) {
	f := newTestFacade(t)
	id := f.AddTower(100, 200)
	tower, err := f.GetTower(id)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, tower.Pos.X)
	assert.Equal(t, 200.0, tower.Pos.Y)
	assert.True(t, tower.Powered)
}

func TestAddUEAllocatesSequentialIPs(t *testing.T) {
	f := newTestFacade(t)
	id1, err := f.AddUE(0, 0)
	assert.NoError(t, err)
	id2, err := f.AddUE(10, 10)
	assert.NoError(t, err)

	ue1, err := f.GetUE(id1)
	assert.NoError(t, err)
	ue2, err := f.GetUE(id2)
	assert.NoError(t, err)
	assert.NotEqual(t, ue1.IP, ue2.IP)
}

func TestConfigureAppliesProfileToExistingTowers(t *testing.T) {
	f := newTestFacade(t)
	id := f.AddTower(0, 0)

	err := f.Configure(ConfigureRequest{PixelsPerMeter: 1, NetworkType: "NR_100"})
	assert.NoError(t, err)

	tower, err := f.GetTower(id)
	assert.NoError(t, err)
	assert.Equal(t, "NR_100", tower.Profile.Name)
}

func TestConfigureRejectsUnknownNetworkType(t *testing.T) {
	f := newTestFacade(t)
	err := f.Configure(ConfigureRequest{PixelsPerMeter: 1, NetworkType: "bogus"})
	assert.Error(t, err)
}

func TestPixelsPerMeterScalesFutureCoordinates(t *testing.T) {
	f := newTestFacade(t)
	assert.NoError(t, f.Configure(ConfigureRequest{PixelsPerMeter: 10, NetworkType: "LTE_20"}))

	id := f.AddTower(1000, 2000)
	tower, err := f.GetTower(id)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, tower.Pos.X)
	assert.Equal(t, 200.0, tower.Pos.Y)
}

func TestLinkStatsErrorsForUnassociatedUE(t *testing.T) {
	f := newTestFacade(t)
	id, err := f.AddUE(0, 0)
	assert.NoError(t, err)
	_, err = f.LinkStats(id)
	assert.Error(t, err)
}

func TestLinkStatsReturnsBoundedPER(t *testing.T) {
	f := newTestFacade(t)
	f.AddTower(0, 0)
	id, err := f.AddUE(100, 0)
	assert.NoError(t, err)

	stats, err := f.LinkStats(id)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.UploadPER, 0.0)
	assert.LessOrEqual(t, stats.UploadPER, 1.0)
	assert.GreaterOrEqual(t, stats.DownloadBandwidthMbps, 0.0)
}

func TestSetUEStateChangeIPIssuesNewAddress(t *testing.T) {
	f := newTestFacade(t)
	id, err := f.AddUE(0, 0)
	assert.NoError(t, err)
	before, err := f.GetUE(id)
	assert.NoError(t, err)

	err = f.SetUEState(id, 5, 5, true)
	assert.NoError(t, err)

	after, err := f.GetUE(id)
	assert.NoError(t, err)
	assert.NotEqual(t, before.IP, after.IP)
}

func TestAddUERegistersEndpointWithCabernet(t *testing.T) {
	f, cab := newTestFacadeWithCab(t)
	id, err := f.AddUE(0, 0)
	assert.NoError(t, err)

	ue, err := f.GetUE(id)
	assert.NoError(t, err)
	assert.True(t, cab.Registered(ue.IP))
}

func TestSetUEStateChangeIPNotifiesCabernet(t *testing.T) {
	f, cab := newTestFacadeWithCab(t)
	id, err := f.AddUE(0, 0)
	assert.NoError(t, err)
	before, err := f.GetUE(id)
	assert.NoError(t, err)

	assert.NoError(t, f.SetUEState(id, 5, 5, true))

	after, err := f.GetUE(id)
	assert.NoError(t, err)
	assert.False(t, cab.Registered(before.IP))
	assert.True(t, cab.Registered(after.IP))
}

func TestPauseResumeDelegateToPipeline(t *testing.T) {
	f := newTestFacade(t)
	f.Pause()
	f.Resume()
	f.SetDropping(false)
	f.SetDelaying(false)
}

func TestGetTowerUnknownIDErrors(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.GetTower(types.TowerID(99))
	assert.Error(t, err)
}
