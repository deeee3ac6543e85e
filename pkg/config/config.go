// Package config holds the immutable parameters shared by every protocol execution,
// and their TOML form.
package config

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cronokirby/saferith"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-bbs/pkg/cl"
	"github.com/taurusgroup/threshold-bbs/pkg/pool"
)

// Config is passed to every component instead of process wide state.
type Config struct {
	// Group is the group of unknown order in which the encryption keys live.
	Group cl.Group
	// Pool runs per-party work. A nil Pool runs everything on the calling goroutine.
	Pool *pool.Pool
	Log  zerolog.Logger
}

// New returns a Config over group without a worker pool and with logging disabled.
func New(group cl.Group) *Config {
	return &Config{Group: group, Log: zerolog.Nop()}
}

// File is the TOML representation of a Config.
type File struct {
	Group GroupSection `toml:"group"`
	Pool  PoolSection  `toml:"pool"`
	Log   LogSection   `toml:"log"`
}

type GroupSection struct {
	// Modulus is N in hexadecimal.
	Modulus string `toml:"modulus"`
}

type PoolSection struct {
	// Workers is the number of goroutines of the pool, 0 for one per CPU and -1 for no pool.
	Workers int `toml:"workers"`
}

type LogSection struct {
	// Level is a zerolog level name, "disabled" when empty.
	Level string `toml:"level"`
}

// Load reads a File from path.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return &f, nil
}

// Decode parses a File from its TOML text.
func Decode(data string) (*File, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &f, nil
}

// Encode writes f as TOML.
func (f *File) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(f)
}

// FromGroup returns the File describing group, with the other sections left at their defaults.
func FromGroup(group *cl.NSquare) *File {
	return &File{Group: GroupSection{Modulus: group.N().Big().Text(16)}}
}

// Config builds the group, the pool and the logger described by f.
//
// The caller owns the returned pool and should call TearDown on it.
func (f *File) Config() (*Config, error) {
	if f.Group.Modulus == "" {
		return nil, errors.New("config: missing group modulus")
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(f.Group.Modulus, "0x"), 16)
	if !ok {
		return nil, errors.New("config: group modulus is not hexadecimal")
	}
	group, err := cl.New(new(saferith.Nat).SetBig(n, n.BitLen()))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := NewLogger(f.Log.Level)
	if err != nil {
		return nil, err
	}
	var pl *pool.Pool
	if f.Pool.Workers >= 0 {
		pl = pool.NewPool(f.Pool.Workers)
	}
	return &Config{Group: group, Pool: pl, Log: log}, nil
}

// NewLogger returns a console logger at the given level.
func NewLogger(level string) (zerolog.Logger, error) {
	if level == "" {
		return zerolog.Nop(), nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("config: log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger(), nil
}
