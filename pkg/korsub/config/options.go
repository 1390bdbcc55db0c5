package config

import (
	"log/slog"

	"github.com/cognicore/korsub/pkg/korsub/cooc"
	"github.com/cognicore/korsub/pkg/korsub/pmi"
	"github.com/cognicore/korsub/pkg/korsub/scan"
)

// ScanOptions converts the scan section
func (c Config) ScanOptions(log *slog.Logger) scan.Options {
	return scan.Options{
		Submax:        c.Scan.Submax,
		MinCount:      c.Scan.MinCount,
		PrunePerSent:  c.Scan.PrunePerSent,
		PruneMinCount: c.Scan.PruneMinCount,
		ProgressEvery: c.ProgressEvery,
		Logger:        log,
	}
}

// CoocOptions converts the cooc section
func (c Config) CoocOptions(log *slog.Logger) cooc.Options {
	return cooc.Options{
		MinCount:      c.Cooc.MinCount,
		PrunePerSent:  c.Cooc.PrunePerSent,
		PruneMinCount: c.Cooc.PruneMinCount,
		Width:         c.Cooc.Width,
		ProgressEvery: c.ProgressEvery,
		Logger:        log,
	}
}

// UnitScanOptions converts the unit vocabulary threshold of the tagged section
func (c Config) UnitScanOptions(log *slog.Logger) scan.LROptions {
	return scan.LROptions{
		MinCount:      c.Tagged.VocabMinCount,
		ProgressEvery: c.ProgressEvery,
		Logger:        log,
	}
}

// FeatureScanOptions converts the feature threshold of the tagged section
func (c Config) FeatureScanOptions(log *slog.Logger) scan.LROptions {
	return scan.LROptions{
		MinCount:      c.Tagged.FeatureMinCount,
		ProgressEvery: c.ProgressEvery,
		Logger:        log,
	}
}

// TaggedCoocOptions converts the counting thresholds of the tagged section
func (c Config) TaggedCoocOptions(log *slog.Logger) cooc.Options {
	return cooc.Options{
		MinCount:      c.Tagged.MinCooccurrence,
		PrunePerSent:  c.Tagged.PrunePerSent,
		PruneMinCount: c.Tagged.PruneMinCount,
		Width:         cooc.DefaultWidth,
		ProgressEvery: c.ProgressEvery,
		Logger:        log,
	}
}

// PMIOptions converts the pmi section
func (c Config) PMIOptions() pmi.Options {
	return pmi.Options{
		Beta:   c.PMI.Beta,
		MinPMI: c.PMI.MinPMI,
		Shift:  c.PMI.Shift,
	}
}
