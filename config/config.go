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

// Package config holds cellsim's process-level defaults: the IP subnet the
// allocator hands out addresses from, the pipeline's poll interval, the
// stats reporter's tick interval, a default tech profile, a packet-corruption
// seed value and the control server's listen address. The default profile
// and DefaultCorruptSeed are not read by the simulator packages: new towers
// always start on radiomodel.LTE20MHz, and the pipeline seeds its corruption
// stream from its own constant.
// Both `cellsim serve` and `cellsim repl` build a *Config from flags and
// pass it down; library packages never import cobra or flag themselves.
package config

import (
	"net"
	"time"

	"github.com/cellsim/cellsim/radiomodel"
)

const (
	DefaultStartingIP    = "10.0.0.1"
	DefaultListenAddr    = ":8080"
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultStatsInterval = 500 * time.Millisecond
	DefaultCorruptSeed   = 11
	DefaultCabernet      = "sim"
)

// Config is the process-level configuration for a cellsim run. Values here
// govern bootstrap only: once the simulation is running, every further
// change goes through the ControlFacade (e.g. network_type per tower via
// `/configure`), not through Config.
type Config struct {
	// StartingIP is the first address the IpAllocator hands out (spec.md §6
	// "Subnet default"); subsequent addresses increment from it.
	StartingIP string

	// ListenAddr is the control HTTP server's bind address.
	ListenAddr string

	// PollInterval is how often the pipeline's ingress and drain loops poll
	// for work when idle.
	PollInterval time.Duration

	// StatsInterval is the StatsReporter's tick period (spec.md §4.5).
	StatsInterval time.Duration

	// DefaultProfile names a default tech profile. Nothing passes it on to
	// the control facade, whose AddTower always uses radiomodel.LTE20MHz.
	DefaultProfile *radiomodel.TechProfile

	// Cabernet selects the packet-transport collaborator: "sim" for the
	// in-memory loopback test-double, the only implementation in scope
	// (spec.md §1 Non-goals excludes a real TUN-backed Cabernet).
	Cabernet string

	// LogLevel is parsed by the cmd-layer into a logger.Level.
	LogLevel string
}

// Default returns a Config with cellsim's built-in defaults.
func Default() *Config {
	return &Config{
		StartingIP:     DefaultStartingIP,
		ListenAddr:     DefaultListenAddr,
		PollInterval:   DefaultPollInterval,
		StatsInterval:  DefaultStatsInterval,
		DefaultProfile: radiomodel.LTE20MHz,
		Cabernet:       DefaultCabernet,
		LogLevel:       "info",
	}
}

// ParseStartingIP resolves StartingIP to a net.IP, for handing to
// ipalloc.New. Returns nil if the field does not parse as an IPv4 address.
func (c *Config) ParseStartingIP() net.IP {
	ip := net.ParseIP(c.StartingIP)
	if ip == nil {
		return nil
	}
	return ip.To4()
}
