package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

// Config is the training configuration
type Config struct {
	Scan   Scan   `yaml:"scan"`
	Cooc   Cooc   `yaml:"cooc"`
	PMI    PMI    `yaml:"pmi"`
	SVD    SVD    `yaml:"svd"`
	Tagged Tagged `yaml:"tagged"`
	Store  Store  `yaml:"store"`

	// ProgressEvery is the sentence interval between progress log lines
	ProgressEvery int `yaml:"progress_every"`
}

// Scan configures subword discovery on plain corpora
type Scan struct {
	Submax        int   `yaml:"submax"`
	MinCount      int64 `yaml:"min_count"`
	PrunePerSent  int   `yaml:"prune_per_sent"`
	PruneMinCount int64 `yaml:"prune_min_count"`
}

// Cooc configures co-occurrence counting on plain corpora
type Cooc struct {
	MinCount      int64 `yaml:"min_count"`
	PrunePerSent  int   `yaml:"prune_per_sent"`
	PruneMinCount int64 `yaml:"prune_min_count"`
	Width         int   `yaml:"width"`
}

// PMI configures the PMI transform
type PMI struct {
	Beta   float64 `yaml:"beta"`
	MinPMI float64 `yaml:"min_pmi"`
	Shift  float64 `yaml:"shift"`
}

// SVD configures the factorization
type SVD struct {
	Rank int `yaml:"rank"`
}

// Tagged configures the L/R pipeline over four-column corpora
type Tagged struct {
	VocabMinCount   int64 `yaml:"vocab_min_count"`
	FeatureMinCount int64 `yaml:"feature_min_count"`
	MinCooccurrence int64 `yaml:"min_cooccurrence"`
	PrunePerSent    int   `yaml:"prune_per_sent"`
	PruneMinCount   int64 `yaml:"prune_min_count"`
	// AdjectiveSplit reads the adjective-split column of the corpus
	AdjectiveSplit bool `yaml:"adjective_split"`
}

// Store configures model persistence
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Scan: Scan{
			Submax:        5,
			MinCount:      10,
			PrunePerSent:  2000000,
			PruneMinCount: 2,
		},
		Cooc: Cooc{
			MinCount:      2,
			PrunePerSent:  1000000,
			PruneMinCount: 2,
			Width:         5,
		},
		PMI: PMI{
			Beta:   0.75,
			MinPMI: 0,
			Shift:  1,
		},
		SVD: SVD{Rank: 300},
		Tagged: Tagged{
			VocabMinCount:   10,
			FeatureMinCount: 5,
			MinCooccurrence: 2,
			PrunePerSent:    100000,
			PruneMinCount:   2,
		},
		Store:         Store{Path: "korsub.db"},
		ProgressEvery: 10000,
	}
}

// Load reads a YAML configuration. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML
func (c Config) Marshal() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Validate checks every section
func (c Config) Validate() error {
	if err := c.ScanOptions(nil).Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if err := c.CoocOptions(nil).Validate(); err != nil {
		return fmt.Errorf("cooc: %w", err)
	}
	if err := c.TaggedCoocOptions(nil).Validate(); err != nil {
		return fmt.Errorf("tagged: %w", err)
	}
	if c.Tagged.VocabMinCount < 0 || c.Tagged.FeatureMinCount < 0 {
		return fmt.Errorf("tagged: %w: min counts must be >= 0", internalerr.ErrInvalidConfig)
	}
	if err := c.PMIOptions().Validate(); err != nil {
		return fmt.Errorf("pmi: %w", err)
	}
	if c.SVD.Rank < 1 {
		return fmt.Errorf("svd: %w: rank must be >= 1, got %d", internalerr.ErrInvalidConfig, c.SVD.Rank)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("%w: progress_every must be >= 0", internalerr.ErrInvalidConfig)
	}
	return nil
}
