package cryptosim

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/cryptosim/internal/human"
	"github.com/stealthrocket/cryptosim/internal/tracelog"
)

const (
	defaultConfigPath = "~/.cryptosim/config.yaml"
	defaultSocketPath = "~/.cryptosim/cryptosim.sock"

	defaultMaxKeys    = 128
	defaultOperations = 32
)

// ConfigPath is the location of the cryptosim configuration file.
var ConfigPath human.Path = defaultConfigPath

// Config is the cryptosim configuration.
type Config struct {
	Server struct {
		Socket       human.Path  `json:"socket" yaml:"socket"`
		MaxFrameSize human.Bytes `json:"max-frame-size" yaml:"max-frame-size"`
	} `json:"server" yaml:"server"`

	Limits struct {
		MaxKeys          int `json:"max-keys" yaml:"max-keys"`
		HashOperations   int `json:"hash-operations" yaml:"hash-operations"`
		MacOperations    int `json:"mac-operations" yaml:"mac-operations"`
		CipherOperations int `json:"cipher-operations" yaml:"cipher-operations"`
	} `json:"limits" yaml:"limits"`

	Trace struct {
		Path        human.Path           `json:"path" yaml:"path"`
		Compression tracelog.Compression `json:"compression" yaml:"compression"`
	} `json:"trace" yaml:"trace"`
}

// DefaultConfig is the configuration used when no file exists, and the base
// that configuration files are merged over.
func DefaultConfig() *Config {
	c := new(Config)
	c.Server.Socket = defaultSocketPath
	c.Server.MaxFrameSize = DefaultMaxFrameSize
	c.Limits.MaxKeys = defaultMaxKeys
	c.Limits.HashOperations = defaultOperations
	c.Limits.MacOperations = defaultOperations
	c.Limits.CipherOperations = defaultOperations
	c.Trace.Compression = tracelog.Zstd
	return c
}

// LoadConfig opens and reads the configuration file.
func LoadConfig() (*Config, error) {
	r, _, err := OpenConfig()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadConfig(r)
}

// OpenConfig opens the configuration file. When none exists the default
// configuration is returned instead, serialized as it would appear on disk.
func OpenConfig() (io.ReadCloser, string, error) {
	path, err := ConfigPath.Expand()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		c := DefaultConfig()
		b, _ := yaml.Marshal(c)
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// ReadConfig reads and parses configuration, rejecting unknown keys. Values
// absent from the input keep their defaults.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		return nil, err
	}
	return c, nil
}
