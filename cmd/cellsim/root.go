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

// Package main implements the cellsim CLI: `serve` runs the simulator as an
// HTTP-controlled process, `repl` drives the same ControlFacade
// interactively from a local shell, and `version` prints the build version.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cellsim/cellsim/config"
	"github.com/cellsim/cellsim/logger"
)

var cfg = config.Default()

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "cellsim",
	Short: "Interactive cellular network simulator",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.StartingIP, "starting-ip", cfg.StartingIP,
		"first IP address the allocator hands out")
	rootCmd.PersistentFlags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr,
		"control HTTP server bind address")
	rootCmd.PersistentFlags().DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval,
		"pipeline ingress/drain poll interval")
	rootCmd.PersistentFlags().DurationVar(&cfg.StatsInterval, "stats-interval", cfg.StatsInterval,
		"stats reporter tick interval")
	rootCmd.PersistentFlags().StringVar(&cfg.Cabernet, "cabernet", cfg.Cabernet,
		"packet transport collaborator (only \"sim\" is built in)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log", cfg.LogLevel, "log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(replCmd)
}

var logLevels = map[string]logger.Level{
	"trace": logger.TraceLevel,
	"debug": logger.DebugLevel,
	"info":  logger.InfoLevel,
	"warn":  logger.WarnLevel,
	"error": logger.ErrorLevel,
}

func applyLogLevel() {
	lv, ok := logLevels[logLevelFlag]
	if !ok {
		logger.Warnf("unknown log level %q, keeping default", logLevelFlag)
		return
	}
	logger.SetLevel(lv)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
