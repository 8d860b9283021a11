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

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/types"
)

func TestAssociationNearestPoweredTower(t *testing.T) {
	top := New()
	t0 := top.AddTower(types.Point{X: 200, Y: 300}, true, radiomodel.LTE20MHz)
	top.AddTower(types.Point{X: 600, Y: 300}, true, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 150, Y: 250}, [4]byte{10, 0, 0, 1})

	u, err := top.GetUE(ue)
	assert.NoError(t, err)
	assert.Equal(t, t0, u.Serving)
}

func TestAssociationIgnoresUnpoweredTowers(t *testing.T) {
	top := New()
	top.AddTower(types.Point{X: 0, Y: 0}, false, radiomodel.LTE20MHz)
	t1 := top.AddTower(types.Point{X: 1000, Y: 1000}, true, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 1, Y: 1}, [4]byte{10, 0, 0, 1})

	u, err := top.GetUE(ue)
	assert.NoError(t, err)
	assert.Equal(t, t1, u.Serving)
}

func TestAssociationNoneWhenNoPoweredTowers(t *testing.T) {
	top := New()
	top.AddTower(types.Point{X: 0, Y: 0}, false, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 1, Y: 1}, [4]byte{10, 0, 0, 1})

	u, err := top.GetUE(ue)
	assert.NoError(t, err)
	assert.Equal(t, types.InvalidTowerID, u.Serving)
}

func TestAssociationTieBrokenByLowerTowerID(t *testing.T) {
	top := New()
	t0 := top.AddTower(types.Point{X: 0, Y: 0}, true, radiomodel.LTE20MHz)
	top.AddTower(types.Point{X: 0, Y: 0}, true, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 10, Y: 10}, [4]byte{10, 0, 0, 1})

	u, err := top.GetUE(ue)
	assert.NoError(t, err)
	assert.Equal(t, t0, u.Serving)
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	top := New()
	top.AddTower(types.Point{X: 200, Y: 300}, true, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 150, Y: 250}, [4]byte{10, 0, 0, 1})

	top.Synchronize()
	u1, _ := top.GetUE(ue)
	top.Synchronize()
	u2, _ := top.GetUE(ue)

	assert.Equal(t, u1.Serving, u2.Serving)
}

func TestResyncAfterPoweringDownServingTower(t *testing.T) {
	top := New()
	t0 := top.AddTower(types.Point{X: 0, Y: 0}, true, radiomodel.LTE20MHz)
	t1 := top.AddTower(types.Point{X: 1000, Y: 0}, true, radiomodel.LTE20MHz)
	ue := top.AddUE(types.Point{X: 1, Y: 0}, [4]byte{10, 0, 0, 1})

	u, _ := top.GetUE(ue)
	assert.Equal(t, t0, u.Serving)

	powered := false
	assert.NoError(t, top.SetTowerState(t0, nil, &powered, nil))

	u, _ = top.GetUE(ue)
	assert.Equal(t, t1, u.Serving)
}

func TestGetTowerUnknownID(t *testing.T) {
	top := New()
	_, err := top.GetTower(types.TowerID(99))
	assert.Error(t, err)
}
