package korsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/korsub/pkg/korsub/config"
	"github.com/cognicore/korsub/pkg/korsub/cooc"
	"github.com/cognicore/korsub/pkg/korsub/corpus"
	"github.com/cognicore/korsub/pkg/korsub/features"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
	"github.com/cognicore/korsub/pkg/korsub/matrix"
	"github.com/cognicore/korsub/pkg/korsub/pmi"
	"github.com/cognicore/korsub/pkg/korsub/scan"
	"github.com/cognicore/korsub/pkg/korsub/store"
	"github.com/cognicore/korsub/pkg/korsub/svd"
)

// Variants recorded in Model.Params
const (
	VariantSubword = "subword"
	VariantLR      = "lr"
)

// Trainer runs the counting, PMI and factorization pipeline
type Trainer struct {
	cfg config.Config
	log *slog.Logger
}

// Options configures a Trainer
type Options struct {
	Config config.Config
	Logger *slog.Logger
}

// New validates the configuration and creates a Trainer
func New(opts Options) (*Trainer, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Trainer{cfg: opts.Config, log: log}, nil
}

// Config returns the trainer configuration
func (t *Trainer) Config() config.Config {
	return t.cfg
}

// TrainSubwords learns subword embeddings from a plain corpus:
// scan, count, assemble, PMI, SVD.
func (t *Trainer) TrainSubwords(src corpus.Source) (*Model, error) {
	started := time.Now()

	res, err := scan.ScanSubwords(src, t.cfg.ScanOptions(t.log))
	if err != nil {
		return nil, fmt.Errorf("scan subwords: %w", err)
	}
	t.log.Info("scanned subwords", "subwords", len(res.Subwords), "features", len(res.Features))

	table, err := cooc.Count(src, res.Subwords, res.Features, t.cfg.CoocOptions(t.log))
	if err != nil {
		return nil, fmt.Errorf("count co-occurrences: %w", err)
	}

	m, err := t.fit(matrix.Assemble(table))
	if err != nil {
		return nil, err
	}
	m.Params = map[string]string{"variant": VariantSubword}
	t.log.Info("trained subword model", "rows", len(m.X.RowLabels()), "cols", len(m.X.ColLabels()),
		"rank", m.Embedding.Rank(), "elapsed", time.Since(started).Round(time.Millisecond))
	return m, nil
}

// TrainLR learns embeddings for the left and right units of a tagged
// corpus: ScanLR, ScanFeatures, CountLR, assemble, PMI, SVD.
func (t *Trainer) TrainLR(src corpus.LRSource) (*Model, error) {
	started := time.Now()

	lr, err := scan.ScanLR(src, t.cfg.UnitScanOptions(t.log))
	if err != nil {
		return nil, fmt.Errorf("scan units: %w", err)
	}
	t.log.Info("scanned units", "l", lr.L.Len(), "r", lr.R.Len())

	known := lr.Known()
	feats, err := scan.ScanFeatures(src, known, t.cfg.FeatureScanOptions(t.log))
	if err != nil {
		return nil, fmt.Errorf("scan features: %w", err)
	}
	t.log.Info("scanned features", "features", feats.Len())

	table, err := cooc.CountLR(src, known, feats, t.cfg.TaggedCoocOptions(t.log))
	if err != nil {
		return nil, fmt.Errorf("count co-occurrences: %w", err)
	}

	m, err := t.fit(matrix.Assemble(table))
	if err != nil {
		return nil, err
	}
	m.RowTags, m.RowMorphs = analyses(m.X.RowLabels(), lr.Analysis)
	m.Params = map[string]string{"variant": VariantLR}
	t.log.Info("trained lr model", "rows", len(m.X.RowLabels()), "cols", len(m.X.ColLabels()),
		"rank", m.Embedding.Rank(), "elapsed", time.Since(started).Round(time.Millisecond))
	return m, nil
}

// analyses aligns the dominant morpheme and tag of every left unit with
// the row labels. Right units and unanalysed units get empty strings.
func analyses(rows []string, byL map[string]scan.Analysis) (tags, morphs []string) {
	tags = make([]string, len(rows))
	morphs = make([]string, len(rows))
	for i, label := range rows {
		u, ok := features.ParseUnit(label)
		if !ok || u.Tag != features.TagL {
			continue
		}
		if a, ok := byL[u.Text]; ok {
			tags[i], morphs[i] = a.Tag, a.Morph
		}
	}
	return tags, morphs
}

// FromCounts derives PMI and embeddings from an existing count matrix
func (t *Trainer) FromCounts(x *matrix.Matrix) (*Model, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil count matrix", internalerr.ErrInvalidInput)
	}
	return t.fit(x)
}

func (t *Trainer) fit(x *matrix.Matrix) (*Model, error) {
	res, err := pmi.Transform(x, t.cfg.PMIOptions())
	if err != nil {
		return nil, fmt.Errorf("pmi: %w", err)
	}
	emb, err := svd.Factorize(res.PMI, t.cfg.SVD.Rank)
	if err != nil {
		return nil, fmt.Errorf("svd: %w", err)
	}
	if emb.Rank() < t.cfg.SVD.Rank {
		t.log.Debug("rank reduced", "requested", t.cfg.SVD.Rank, "rank", emb.Rank())
	}
	return &Model{
		X:         x,
		PMI:       res.PMI,
		Px:        res.Px,
		Py:        res.Py,
		Embedding: emb,
	}, nil
}

// Save persists the count matrix and label arrays of m under name. The
// trainer configuration is recorded alongside.
func (t *Trainer) Save(ctx context.Context, st store.Store, name string, m *Model) (string, error) {
	params := make(map[string]string, len(m.Params)+1)
	for k, v := range m.Params {
		params[k] = v
	}
	cfg, err := t.cfg.Marshal()
	if err != nil {
		return "", err
	}
	params["config"] = cfg

	id, err := st.SaveModel(ctx, store.Model{
		Name:      name,
		Counts:    m.X,
		RowTags:   m.RowTags,
		RowMorphs: m.RowMorphs,
		Params:    params,
	})
	if err != nil {
		return "", fmt.Errorf("save model %q: %w", name, err)
	}
	m.ID = id
	t.log.Info("saved model", "id", id, "name", name)
	return id, nil
}

// Restore loads a stored count matrix and recomputes PMI and embeddings
// with the trainer configuration.
func (t *Trainer) Restore(ctx context.Context, st store.Store, id string) (*Model, error) {
	sm, err := st.LoadModel(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.restore(sm)
}

// RestoreLatest restores the most recent model saved under name
func (t *Trainer) RestoreLatest(ctx context.Context, st store.Store, name string) (*Model, error) {
	sm, err := st.LatestModel(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.restore(sm)
}

func (t *Trainer) restore(sm store.Model) (*Model, error) {
	m, err := t.fit(sm.Counts)
	if err != nil {
		return nil, fmt.Errorf("restore model %s: %w", sm.ID, err)
	}
	m.ID = sm.ID
	m.RowTags = sm.RowTags
	m.RowMorphs = sm.RowMorphs
	m.Params = sm.Params
	return m, nil
}
