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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cellsim/cellsim/cabernet"
	"github.com/cellsim/cellsim/control"
	"github.com/cellsim/cellsim/ipalloc"
	"github.com/cellsim/cellsim/logger"
	"github.com/cellsim/cellsim/pipeline"
	"github.com/cellsim/cellsim/topology"
	"github.com/cellsim/cellsim/types"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Drive a local, in-process simulation from an interactive shell",
	Long: "Starts a ControlFacade in-process (no HTTP server) and exposes it " +
		"through commands typed at a prompt: add-tower, add-ue, pause, resume, " +
		"drop, delay, link, exit. There is no command that reads back a tower or a UE.",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyLogLevel()
		return runRepl(cfg.StartingIP)
	},
}

// replFacade builds a standalone Facade for the repl: no HTTP server and no
// background pipeline workers. No command runs the pipeline's stages; the
// commands only edit the topology, toggle pipeline flags and compute link
// statistics.
func replFacade(startingIP string) (*control.Facade, error) {
	top := topology.New()
	ip := parseStartingIPOrDefault(startingIP)
	alloc, err := ipalloc.New(ip)
	if err != nil {
		return nil, err
	}
	pipe := pipeline.New(top, alloc, cabernet.NewSim())
	pipe.Resume()
	return control.New(top, alloc, pipe), nil
}

func parseStartingIPOrDefault(s string) []byte {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return []byte{10, 0, 0, 1}
	}
	out := make([]byte, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return []byte{10, 0, 0, 1}
		}
		out[i] = byte(n)
	}
	return out
}

// runRepl prompts for commands with chzyer/readline when stdin is an
// interactive terminal (detected via golang.org/x/term, matching the
// teacher's cli.Help.update terminal-size check), and otherwise falls back
// to plain line-at-a-time scanning of stdin — so `cellsim repl` still works
// piped from a script or in CI.
func runRepl(startingIP string) error {
	facade, err := replFacade(startingIP)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return runReplNonInteractive(facade, os.Stdin, os.Stdout)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cellsim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		cmd := strings.TrimSpace(line)
		if cmd == "" {
			continue
		}
		if cmd == "exit" {
			return nil
		}
		handleReplCommand(facade, cmd, rl.Stdout())
	}
}

func runReplNonInteractive(facade *control.Facade, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		if cmd == "" {
			continue
		}
		if cmd == "exit" {
			return nil
		}
		handleReplCommand(facade, cmd, out)
	}
	return scanner.Err()
}

func handleReplCommand(facade *control.Facade, cmd string, out io.Writer) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "add-tower":
		x, y := argsAsFloats(fields[1:], 2)
		id := facade.AddTower(x, y)
		fmt.Fprintf(out, "tower id=%d\n", id)
	case "add-ue":
		x, y := argsAsFloats(fields[1:], 2)
		id, err := facade.AddUE(x, y)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "ue id=%d\n", id)
	case "pause":
		facade.Pause()
		fmt.Fprintln(out, "paused")
	case "resume":
		facade.Resume()
		fmt.Fprintln(out, "resumed")
	case "drop":
		facade.SetDropping(replBoolArg(fields))
		fmt.Fprintln(out, "ok")
	case "delay":
		facade.SetDelaying(replBoolArg(fields))
		fmt.Fprintln(out, "ok")
	case "link":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: link <ue-id>")
			return
		}
		id, _ := strconv.Atoi(fields[1])
		stats, err := facade.LinkStats(types.UEID(id))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "upload=%.2fMbps/%.4fPER download=%.2fMbps/%.4fPER\n",
			stats.UploadBandwidthMbps, stats.UploadPER, stats.DownloadBandwidthMbps, stats.DownloadPER)
	default:
		logger.Warnf("repl: unknown command %q", fields[0])
		fmt.Fprintf(out, "unknown command: %s\n", fields[0])
	}
}

func argsAsFloats(fields []string, n int) (float64, float64) {
	var out [2]float64
	for i := 0; i < n && i < len(fields); i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err == nil {
			out[i] = v
		}
	}
	return out[0], out[1]
}

func replBoolArg(fields []string) bool {
	if len(fields) < 2 {
		return true
	}
	return fields[1] != "off" && fields[1] != "false"
}
