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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cellsim/cellsim/cabernet"
	"github.com/cellsim/cellsim/config"
	"github.com/cellsim/cellsim/control"
	"github.com/cellsim/cellsim/ipalloc"
	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/pipeline"
	"github.com/cellsim/cellsim/progctx"
	"github.com/cellsim/cellsim/stats"
	"github.com/cellsim/cellsim/topology"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator and its HTTP control surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyLogLevel()
		return serve(cfg)
	},
}

func serve(c *config.Config) error {
	startingIP := c.ParseStartingIP()
	if startingIP == nil {
		return errors.Errorf("invalid starting IP: %q", c.StartingIP)
	}

	top := topology.New()
	alloc, err := ipalloc.New(startingIP)
	if err != nil {
		return errors.Wrap(err, "build IP allocator")
	}

	var cab cabernet.Cabernet
	switch c.Cabernet {
	case "sim", "":
		cab = cabernet.NewSim()
	default:
		return errors.Errorf("unknown cabernet transport %q (only \"sim\" is built in)", c.Cabernet)
	}

	pipe := pipeline.New(top, alloc, cab)
	facade := control.New(top, alloc, pipe)
	reporter := stats.New(top, pipe, os.Stdout, true)

	ctx := progctx.New(context.Background())
	handleSignals(ctx)

	pipe.Run(ctx, c.PollInterval)
	reporter.Run(ctx, c.StatsInterval)

	mux := http.NewServeMux()
	mux.Handle("/metrics", reporter.Handler())
	mux.Handle("/", control.NewServer(facade))

	srv := &http.Server{Addr: c.ListenAddr, Handler: mux}
	ctx.Defer(func() {
		_ = srv.Close()
	})

	ctx.WaitAdd("http-server", 1)
	go func() {
		defer ctx.WaitDone("http-server")
		logger.Infof("cellsim: run_id=%s listening on %s", facade.RunID, c.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ctx.Cancel(errors.Wrap(err, "control server"))
		}
	}()

	ctx.Wait()
	return nil
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	ctx.WaitAdd("handle-signals", 1)
	go func() {
		defer ctx.WaitDone("handle-signals")
		select {
		case sig := <-c:
			logger.Infof("cellsim: signal received: %v", sig)
			ctx.Cancel(nil)
		case <-ctx.Done():
		}
	}()
}
