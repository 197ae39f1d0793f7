package gibbs

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"

	file "github.com/wangkuiyi/file"
	"gopkg.in/yaml.v3"
)

// Config contains the recognized options of an inference run.
type Config struct {
	// Topics is the number of latent topics, at least 2.
	Topics int `json:"topics" yaml:"topics"`

	// Cycles is the number of sampling cycles a trainer runs.  Engine
	// itself takes the count as an argument of Run.
	Cycles int `json:"cycles" yaml:"cycles"`

	// After BurnIn cycles, phi and theta are accumulated every
	// SampleLag cycles and alpha is re-estimated every
	// OptimizeInterval cycles.  OptimizeInterval 0 disables
	// optimization.
	BurnIn             int `json:"burn_in" yaml:"burn_in"`
	SampleLag          int `json:"sample_lag" yaml:"sample_lag"`
	OptimizeInterval   int `json:"optimize_interval" yaml:"optimize_interval"`
	OptimizeIterations int `json:"optimize_iterations" yaml:"optimize_iterations"` // 0 for DefaultOptimizeIterations

	// Perplexity is logged every PerplexityInterval cycles; 0 never.
	PerplexityInterval int `json:"perplexity_interval" yaml:"perplexity_interval"`

	// Workers is the size of the goroutine pool, 0 for NumCPU.
	// Partitions is the number of document and word partitions, 0 for
	// the same as Workers.
	Workers    int `json:"workers" yaml:"workers"`
	Partitions int `json:"partitions" yaml:"partitions"`

	// Prior parameters
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`

	// Seed seeds topic initialization; document partition p samples
	// with a generator seeded by Seed+p+1.
	Seed int64 `json:"seed" yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Topics:             10,
		Cycles:             1000,
		BurnIn:             100,
		SampleLag:          10,
		OptimizeInterval:   10,
		OptimizeIterations: DefaultOptimizeIterations,
		PerplexityInterval: 10,
		Alpha:              DefaultAlpha,
		Beta:               0.01,
		Seed:               1,
	}
}

func (c *Config) Validate() error {
	msg := ""
	if c.Topics < 2 {
		msg += fmt.Sprintf("c.Topics (%d) must be at least 2. ", c.Topics)
	}
	if c.Cycles < 0 {
		msg += "c.Cycles must not be negative. "
	}
	if c.BurnIn < 0 {
		msg += "c.BurnIn must not be negative. "
	}
	if c.SampleLag < 1 {
		msg += "c.SampleLag must be a positive value. "
	}
	if c.OptimizeInterval < 0 || c.OptimizeIterations < 0 {
		msg += "c.OptimizeInterval and c.OptimizeIterations must not be negative. "
	}
	if c.PerplexityInterval < 0 {
		msg += "c.PerplexityInterval must not be negative. "
	}
	if c.Workers < 0 || c.Partitions < 0 {
		msg += "c.Workers and c.Partitions must not be negative. "
	}
	if !(c.Alpha > 0) || !(c.Beta > 0) {
		msg += "c.Alpha and c.Beta must be positive values."
	}
	if len(msg) > 0 {
		return errors.New(strings.TrimSpace(msg))
	}
	return nil
}

// NumWorkers resolves Workers.
func (c *Config) NumWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// NumPartitions resolves Partitions before it is capped by the corpus
// size.
func (c *Config) NumPartitions() int {
	if c.Partitions > 0 {
		return c.Partitions
	}
	return c.NumWorkers()
}

// Encode returns the JSON-encoded Config, which can be used as the
// value of the -config flag.
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if e := json.NewEncoder(&buf).Encode(c); e != nil {
		return "", fmt.Errorf("JSON encoding failed: %v", e)
	}
	return strings.TrimSpace(buf.String()), nil
}

// String is required by interface flag.Value.
func (c *Config) String() string {
	if c == nil {
		return ""
	}
	if b, e := json.MarshalIndent(c, " ", "  "); e == nil {
		return string(b)
	}
	return ""
}

// Set is required by interface flag.Value.  It decodes a JSON encoded
// Config on top of the current values.
func (c *Config) Set(value string) error {
	e := json.NewDecoder(strings.NewReader(value)).Decode(c)
	if e != nil {
		return fmt.Errorf("Error decoding JSON: %v", e)
	}
	return nil
}

// RegisterAsFlag registers a flag named config in fs that accepts a
// JSON encoded Config object as the value.  It must be called before
// fs.Parse().
func (c *Config) RegisterAsFlag(fs *flag.FlagSet) {
	fs.Var(c, "config", "JSON encoded configuration")
}

// fsName prefixes a bare local path with file.LocalPrefix, so that
// both "lda.yaml" and "file:lda.yaml" name the same file.
func fsName(filename string) string {
	if i := strings.Index(filename, ":"); i < 0 || strings.Contains(filename[:i], "/") {
		return file.LocalPrefix + filename
	}
	return filename
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON file over
// DefaultConfig and validates the result.  filename is a local path or
// a name qualified by a filesystem prefix, e.g. inmem:/lda.yaml.
func LoadConfig(filename string) (*Config, error) {
	f, e := file.Open(fsName(filename))
	if e != nil {
		return nil, fmt.Errorf("Cannot open config file %s: %w", filename, e)
	}
	defer f.Close()

	cfg := DefaultConfig()
	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		e = yaml.NewDecoder(f).Decode(&cfg)
	default:
		e = json.NewDecoder(f).Decode(&cfg)
	}
	if e != nil && e != io.EOF {
		return nil, fmt.Errorf("Parse config file %s: %w", filename, e)
	}

	if e := cfg.Validate(); e != nil {
		return nil, fmt.Errorf("Invalid configuration: %w", e)
	}
	return &cfg, nil
}
