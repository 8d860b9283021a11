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

// Package activity tracks in-flight packet counts per endpoint (UE or
// Tower), used both to drive the pipeline's interference snapshots and to
// report link load to the stats reporter.
package activity

import (
	"sync/atomic"

	"github.com/cellsim/cellsim/logger"
)

// Counters holds the upload/download in-flight counts for one endpoint.
// Both fields are non-negative at all times; callers must pair every
// IncUpload/IncDownload with exactly one matching Dec call.
type Counters struct {
	uploadInFlight   int64
	downloadInFlight int64
}

// UploadInFlight returns the current number of packets in flight with this
// endpoint as the upload source.
func (c *Counters) UploadInFlight() int64 {
	return atomic.LoadInt64(&c.uploadInFlight)
}

// DownloadInFlight returns the current number of packets in flight with
// this endpoint as the download destination.
func (c *Counters) DownloadInFlight() int64 {
	return atomic.LoadInt64(&c.downloadInFlight)
}

// IncUpload increments the upload in-flight count. Called exactly once per
// packet, when it enters a DelayQueue with this endpoint as the source.
func (c *Counters) IncUpload() {
	atomic.AddInt64(&c.uploadInFlight, 1)
}

// DecUpload decrements the upload in-flight count. Called exactly once per
// packet, at its terminal state (Lost, Egressed, or Delivered).
func (c *Counters) DecUpload() {
	if atomic.AddInt64(&c.uploadInFlight, -1) < 0 {
		logger.Panicf("upload in-flight counter went negative")
	}
}

// IncDownload increments the download in-flight count.
func (c *Counters) IncDownload() {
	atomic.AddInt64(&c.downloadInFlight, 1)
}

// DecDownload decrements the download in-flight count.
func (c *Counters) DecDownload() {
	if atomic.AddInt64(&c.downloadInFlight, -1) < 0 {
		logger.Panicf("download in-flight counter went negative")
	}
}
