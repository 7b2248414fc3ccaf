// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ezrec/regvm/codec"
	"github.com/ezrec/regvm/config"
	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/io"
	"github.com/ezrec/regvm/isa"
)

// parseArgs parses a comma separated list of words.
func parseArgs(text string) (args []isa.Value, err error) {
	if len(text) == 0 {
		return
	}

	for _, item := range strings.Split(text, ",") {
		var w uint64
		w, err = strconv.ParseUint(strings.TrimSpace(item), 0, 64)
		if err != nil {
			return
		}
		args = append(args, isa.Word(w))
	}

	return
}

func main() {
	var program string
	var configFile string
	var list bool
	var stepLimit int
	var verbose bool
	var argList string

	flag.StringVar(&program, "p", "", "Program file to run")
	flag.StringVar(&configFile, "c", "", "regvm.toml machine configuration")
	flag.BoolVar(&list, "l", false, "List program, do not execute")
	flag.IntVar(&stepLimit, "n", 0, "Step limit (0 for no limit)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&argList, "a", "", "Comma separated word arguments pushed on the stack")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(program) == 0 {
		log.Fatalf("%v: -p program file required", os.Args[0])
	}

	code, err := codec.ReadFile(program)
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	if list {
		for pc, inst := range code {
			fmt.Printf("%04x: %v\n", pc, inst)
		}
		return
	}

	args, err := parseArgs(argList)
	if err != nil {
		log.Fatalf("-a %v: %v", argList, err)
	}

	console := &io.Console{Input: os.Stdin, Output: os.Stdout}

	emu := emulator.NewEmulator(cpu.PortSyscalls(console)...)
	emu.Verbose = verbose

	if len(configFile) != 0 {
		cfg, err := config.Load(configFile)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
		cfg.Apply(emu, console)
	}

	if stepLimit != 0 {
		emu.StepLimit = stepLimit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emu.Load(code, args...)
	result, err := emu.Run(ctx)
	if err != nil {
		if verbose {
			log.Print(emu.Cpu.String())
		}
		stop()
		log.Fatalf("%v: %v", program, err)
	}

	if verbose {
		log.Printf("%v: halted after %d steps", program, result.Steps)
	}
}
