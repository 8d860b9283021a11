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
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/types"
)

// Topology holds the live Tower/UE population and their serving-tower
// association. It is safe for concurrent use; callers mutate it only
// through its methods, each of which re-synchronizes the association
// before returning.
type Topology struct {
	mu          sync.RWMutex
	towers      []*Tower
	ues         []*UE
	nextTowerID types.TowerID
	nextUEID    types.UEID
}

// New returns an empty Topology.
func New() *Topology {
	return &Topology{}
}

// AddTower creates a new Tower at the given position and returns its id.
func (top *Topology) AddTower(pos types.Point, powered bool, profile *radiomodel.TechProfile) types.TowerID {
	top.mu.Lock()
	defer top.mu.Unlock()

	id := top.nextTowerID
	top.nextTowerID++
	top.towers = append(top.towers, &Tower{ID: id, Pos: pos, Powered: powered, Profile: profile})
	top.synchronizeLocked()
	return id
}

// AddUE creates a new UE at the given position with the given IP and
// returns its id. The caller is responsible for ensuring IP uniqueness
// (see the ipalloc package).
func (top *Topology) AddUE(pos types.Point, ip [4]byte) types.UEID {
	top.mu.Lock()
	defer top.mu.Unlock()

	id := top.nextUEID
	top.nextUEID++
	top.ues = append(top.ues, &UE{ID: id, Pos: pos, IP: ip, Serving: types.InvalidTowerID})
	top.synchronizeLocked()
	return id
}

// SetTowerState updates a Tower's mutable fields. Any of pos/powered/profile
// may be nil to leave that field unchanged.
func (top *Topology) SetTowerState(id types.TowerID, pos *types.Point, powered *bool, profile *radiomodel.TechProfile) error {
	top.mu.Lock()
	defer top.mu.Unlock()

	t := top.findTowerLocked(id)
	if t == nil {
		return errors.Errorf("no such tower: %d", id)
	}
	if pos != nil {
		t.Pos = *pos
	}
	if powered != nil {
		t.Powered = *powered
	}
	if profile != nil {
		t.Profile = profile
	}
	top.synchronizeLocked()
	return nil
}

// SetUEState updates a UE's mutable fields. pos may be nil to leave it
// unchanged; ip, if non-nil, reassigns the UE's address.
func (top *Topology) SetUEState(id types.UEID, pos *types.Point, ip *[4]byte) error {
	top.mu.Lock()
	defer top.mu.Unlock()

	u := top.findUELocked(id)
	if u == nil {
		return errors.Errorf("no such UE: %d", id)
	}
	if pos != nil {
		u.Pos = *pos
	}
	if ip != nil {
		u.IP = *ip
	}
	top.synchronizeLocked()
	return nil
}

// GetTower returns a snapshot copy of the Tower with the given id.
func (top *Topology) GetTower(id types.TowerID) (Tower, error) {
	top.mu.RLock()
	defer top.mu.RUnlock()

	t := top.findTowerLocked(id)
	if t == nil {
		return Tower{}, errors.Errorf("no such tower: %d", id)
	}
	return Tower{ID: t.ID, Pos: t.Pos, Powered: t.Powered, Profile: t.Profile}, nil
}

// GetUE returns a snapshot copy of the UE with the given id.
func (top *Topology) GetUE(id types.UEID) (UE, error) {
	top.mu.RLock()
	defer top.mu.RUnlock()

	u := top.findUELocked(id)
	if u == nil {
		return UE{}, errors.Errorf("no such UE: %d", id)
	}
	return UE{ID: u.ID, Pos: u.Pos, IP: u.IP, Serving: u.Serving}, nil
}

// TowerRef returns the live *Tower (not a copy) for internal use by the
// pipeline, e.g. to read its ActivityCounters or use it as a queue.Endpoint.
func (top *Topology) TowerRef(id types.TowerID) *Tower {
	top.mu.RLock()
	defer top.mu.RUnlock()
	return top.findTowerLocked(id)
}

// UERef returns the live *UE for internal use by the pipeline.
func (top *Topology) UERef(id types.UEID) *UE {
	top.mu.RLock()
	defer top.mu.RUnlock()
	return top.findUELocked(id)
}

// ListUERefs returns the live *UE pointers for every UE, for read-only
// iteration by the stats reporter. Callers must not mutate fields directly.
func (top *Topology) ListUERefs() []*UE {
	top.mu.RLock()
	defer top.mu.RUnlock()
	out := make([]*UE, len(top.ues))
	copy(out, top.ues)
	return out
}

// ListTowerRefs returns the live *Tower pointers for every tower.
func (top *Topology) ListTowerRefs() []*Tower {
	top.mu.RLock()
	defer top.mu.RUnlock()
	out := make([]*Tower, len(top.towers))
	copy(out, top.towers)
	return out
}

// UEByIP returns the live *UE with the given IP, or nil if none matches.
func (top *Topology) UEByIP(ip [4]byte) *UE {
	top.mu.RLock()
	defer top.mu.RUnlock()

	for _, u := range top.ues {
		if u.IP == ip {
			return u
		}
	}
	return nil
}

// ActiveUEs returns the live UEs whose upload counter is greater than 0,
// excluding the given id. Used by the pipeline to build the uplink
// interference snapshot.
func (top *Topology) ActiveUEs(excluding types.UEID) []*UE {
	top.mu.RLock()
	defer top.mu.RUnlock()

	var active []*UE
	for _, u := range top.ues {
		if u.ID == excluding {
			continue
		}
		if u.counters.UploadInFlight() > 0 {
			active = append(active, u)
		}
	}
	return active
}

// ActiveTowers returns the live, powered Towers whose upload counter is
// greater than 0, excluding the given id. Used by the pipeline to build
// the downlink interference snapshot.
func (top *Topology) ActiveTowers(excluding types.TowerID) []*Tower {
	top.mu.RLock()
	defer top.mu.RUnlock()

	var active []*Tower
	for _, t := range top.towers {
		if t.ID == excluding || !t.Powered {
			continue
		}
		if t.counters.UploadInFlight() > 0 {
			active = append(active, t)
		}
	}
	return active
}

// Synchronize recomputes every UE's serving tower: the argmin by Euclidean
// distance over powered towers, ties broken by lower tower id, or
// types.InvalidTowerID if no tower is powered. Idempotent: calling it
// repeatedly with unchanged state leaves associations unchanged. It is
// called automatically after every mutating method; exported so callers can
// force a resync after mutating returned Tower/UE refs directly (tests
// only — production code should go through the mutating methods).
func (top *Topology) Synchronize() {
	top.mu.Lock()
	defer top.mu.Unlock()
	top.synchronizeLocked()
}

func (top *Topology) synchronizeLocked() {
	for _, u := range top.ues {
		best := types.InvalidTowerID
		bestDist := math.Inf(1)
		for _, t := range top.towers {
			if !t.Powered {
				continue
			}
			d := distance(u.Pos, t.Pos)
			if d < bestDist {
				bestDist = d
				best = t.ID
			}
		}
		u.Serving = best
	}
}

func (top *Topology) findTowerLocked(id types.TowerID) *Tower {
	for _, t := range top.towers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (top *Topology) findUELocked(id types.UEID) *UE {
	for _, u := range top.ues {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func distance(a, b types.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
