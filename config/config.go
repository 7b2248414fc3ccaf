// Package config handles regvm.toml machine configuration.
//
// Example:
//
//	[machine]
//	step-limit = 1000000
//	verbose = false
//
//	[[port]]
//	addr = 0x8000
//	kind = "console"
//
//	[[port]]
//	addr = 0x8001
//	kind = "queue"
//	capacity = 64
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/io"
)

// Port kinds.
const (
	PORT_KIND_CONSOLE = "console" // Process stdin/stdout.
	PORT_KIND_QUEUE   = "queue"   // Fixed capacity FIFO.
)

// Config represents a regvm.toml machine configuration.
type Config struct {
	Machine Machine `toml:"machine"`
	Ports   []Port  `toml:"port"`
}

// Machine configures the emulator.
type Machine struct {
	StepLimit int  `toml:"step-limit"`
	Verbose   bool `toml:"verbose"`
}

// Port attaches an I/O port at an In/Out address.
type Port struct {
	Addr     uint64 `toml:"addr"`
	Kind     string `toml:"kind"`
	Capacity int    `toml:"capacity"`
}

// Parse decodes and validates a configuration. Unknown keys are rejected.
func Parse(text string) (cfg *Config, err error) {
	cfg = &Config{}

	md, err := toml.Decode(text, cfg)
	if err != nil {
		cfg = nil
		err = errors.Join(ErrConfig, err)
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		cfg = nil
		err = &ErrUnknownKey{Keys: strings.Join(keys, ", ")}
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
		return
	}

	return
}

// Load reads and parses the configuration file at path.
func Load(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	return Parse(string(data))
}

// Validate checks the port table and machine limits.
func (cfg *Config) Validate() (err error) {
	if cfg.Machine.StepLimit < 0 {
		err = errors.Join(ErrConfig, ErrStepLimit)
		return
	}

	seen := map[uint64]bool{}
	for index, port := range cfg.Ports {
		switch port.Kind {
		case PORT_KIND_CONSOLE:
		case PORT_KIND_QUEUE:
			if port.Capacity <= 0 {
				err = &ErrPort{Index: index, Err: ErrPortCapacity}
				return
			}
		default:
			err = &ErrPort{Index: index, Err: ErrPortKind}
			return
		}

		if seen[port.Addr] {
			err = &ErrPort{Index: index, Err: ErrPortAddr}
			return
		}
		seen[port.Addr] = true
	}

	return
}

// Apply configures the emulator and attaches the port table. Console
// ports share the console port.
func (cfg *Config) Apply(emu *emulator.Emulator, console io.Port) {
	emu.StepLimit = cfg.Machine.StepLimit
	emu.Verbose = emu.Verbose || cfg.Machine.Verbose

	for _, port := range cfg.Ports {
		switch port.Kind {
		case PORT_KIND_CONSOLE:
			emu.Memory.Attach(port.Addr, console)
		case PORT_KIND_QUEUE:
			emu.Memory.Attach(port.Addr, io.NewQueue(port.Capacity))
		}
	}
}
