package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/io"
)

const example = `
[machine]
step-limit = 1000
verbose = true

[[port]]
addr = 0x8000
kind = "console"

[[port]]
addr = 0x8001
kind = "queue"
capacity = 4
`

func TestParse(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Parse(example)
	assert.NoError(err)
	assert.Equal(&Config{
		Machine: Machine{StepLimit: 1000, Verbose: true},
		Ports: []Port{
			{Addr: 0x8000, Kind: PORT_KIND_CONSOLE},
			{Addr: 0x8001, Kind: PORT_KIND_QUEUE, Capacity: 4},
		},
	}, cfg)

	cfg, err = Parse("")
	assert.NoError(err)
	assert.Equal(&Config{}, cfg)
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		text string
		err  error
	}{
		{"[machine\n", ErrConfig},
		{"[machine]\nstep-limit = \"lots\"\n", ErrConfig},
		{"[machine]\nstep-limit = -1\n", ErrStepLimit},
		{"[machine]\nstack-limit = 1\n", ErrConfig},
		{"[[port]]\naddr = 1\nkind = \"tape\"\n", ErrPortKind},
		{"[[port]]\naddr = 1\nkind = \"queue\"\n", ErrPortCapacity},
		{"[[port]]\naddr = 1\nkind = \"console\"\n[[port]]\naddr = 1\nkind = \"queue\"\ncapacity = 1\n", ErrPortAddr},
	}

	for _, entry := range table {
		cfg, err := Parse(entry.text)
		assert.Nil(cfg, entry.text)
		assert.ErrorIs(err, entry.err, entry.text)
		assert.ErrorIs(err, ErrConfig, entry.text)
	}
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "regvm.toml")
	assert.NoError(os.WriteFile(path, []byte(example), 0o644))

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(1000, cfg.Machine.StepLimit)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Parse(example)
	assert.NoError(err)

	console := &io.Console{Output: &bytes.Buffer{}}
	emu := emulator.NewEmulator()
	cfg.Apply(emu, console)

	assert.Equal(1000, emu.StepLimit)
	assert.True(emu.Verbose)
	assert.Equal([]uint64{0x8000, 0x8001}, emu.Memory.Ports())

	port, ok := emu.Memory.Port(0x8000)
	assert.True(ok)
	assert.Same(console, port)

	port, ok = emu.Memory.Port(0x8001)
	assert.True(ok)
	queue, ok := port.(*io.Queue)
	assert.True(ok)
	assert.Equal(4, queue.Capacity)
}
