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

// Package topology holds the live Tower and UE population and the
// serving-tower association between them.
package topology

import (
	"github.com/cellsim/cellsim/activity"
	"github.com/cellsim/cellsim/radiomodel"
	"github.com/cellsim/cellsim/types"
)

// Tower is a fixed radio access node.
type Tower struct {
	ID       types.TowerID
	Pos      types.Point
	Powered  bool
	Profile  *radiomodel.TechProfile
	counters activity.Counters
}

// Counters satisfies queue.Endpoint, letting a Tower be used as a Packet's
// source or destination.
func (t *Tower) Counters() *activity.Counters {
	return &t.counters
}

// UE is a mobile user-equipment endpoint.
type UE struct {
	ID      types.UEID
	Pos     types.Point
	IP      [4]byte
	Serving types.TowerID // types.InvalidTowerID if unassociated
	counters activity.Counters
}

// Counters satisfies queue.Endpoint.
func (u *UE) Counters() *activity.Counters {
	return &u.counters
}
