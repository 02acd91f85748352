// Package pipeline runs the conversion stages in their fixed order.
//
// Stages communicate only through the store: each stage writes whole
// tables and later stages rebuild the lookup indexes they need by reading
// those tables back.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/taxoload/pkg/taxoload/config"
	"github.com/cognicore/taxoload/pkg/taxoload/dedup"
	"github.com/cognicore/taxoload/pkg/taxoload/extract"
	"github.com/cognicore/taxoload/pkg/taxoload/integrity"
	"github.com/cognicore/taxoload/pkg/taxoload/internalerr"
	"github.com/cognicore/taxoload/pkg/taxoload/localize"
	"github.com/cognicore/taxoload/pkg/taxoload/lookup"
	"github.com/cognicore/taxoload/pkg/taxoload/records"
	"github.com/cognicore/taxoload/pkg/taxoload/resolve"
	"github.com/cognicore/taxoload/pkg/taxoload/source"
	"github.com/cognicore/taxoload/pkg/taxoload/store"
)

// Options configures a Pipeline.
type Options struct {
	Config       config.Config
	Store        store.Store
	Loader       *source.Loader
	Localization localize.Source
	Logger       *log.Logger
	// ManifestPath receives manifest.yaml after a full run. Empty skips it.
	ManifestPath string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline converts one taxonomy distribution into tables.
type Pipeline struct {
	cfg          config.Config
	store        store.Store
	loader       *source.Loader
	loc          localize.Source
	logger       *log.Logger
	manifestPath string
	now          func() time.Time

	duplicates map[string]int
	coverage   []localize.Coverage
}

// New creates a pipeline with the given dependencies.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		cfg:          opts.Config,
		store:        opts.Store,
		loader:       opts.Loader,
		loc:          opts.Localization,
		logger:       opts.Logger,
		manifestPath: opts.ManifestPath,
		now:          now,
		duplicates:   make(map[string]int),
	}
}

// Stage is one numbered step.
type Stage struct {
	Name string
	run  func(ctx context.Context) error
}

// Stages returns the stages in execution order. Stage N is Stages()[N-1].
func (p *Pipeline) Stages() []Stage {
	stages := []Stage{
		{"Version check", p.checkVersion},
		{"Verticals", p.verticals},
		{"Categories", p.categories},
		{"Attributes", p.attributes},
		{"Attribute values", p.attributeValues},
		{"Attribute value mappings", p.attributeValueMappings},
		{"Category attribute mappings", p.categoryAttributeMappings},
		{"Attribute extended mappings", p.attributeExtendedMappings},
		{"Duplicate check", p.checkDuplicates},
	}
	for _, k := range localizationOrder {
		stages = append(stages, Stage{
			Name: fmt.Sprintf("Localizations (%s)", k.kind.Entity),
			run:  p.localizeStage(k),
		})
	}
	return stages
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Tables     map[string]int
	Duplicates map[string]int
	Coverage   []localize.Coverage
	Integrity  *integrity.Report
	Started    time.Time
	Finished   time.Time
}

// Run executes every stage in order, stopping at the first error. When
// verification is enabled the finished store is checked and violations are
// logged as warnings.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.duplicates = make(map[string]int)
	p.coverage = nil

	sum := Summary{Started: p.now().UTC()}
	for i, s := range p.Stages() {
		if err := p.runStage(ctx, i+1, s); err != nil {
			return sum, err
		}
	}

	if p.cfg.Verify {
		report, err := integrity.Check(ctx, p.store)
		if err != nil {
			p.logger.Error("Error processing integrity check", "err", err)
			return sum, fmt.Errorf("integrity check: %w", err)
		}
		for _, v := range report.Violations {
			p.logger.Warn("Integrity violation", "violation", v.String())
		}
		sum.Integrity = &report
	}

	counts, err := tableCounts(ctx, p.store)
	if err != nil {
		return sum, err
	}
	sum.Tables = counts
	sum.Duplicates = p.duplicates
	sum.Coverage = p.coverage
	sum.Finished = p.now().UTC()
	sum.RunID = newRunID(sum.Started)

	if p.manifestPath != "" {
		m := newManifest(p.cfg, sum)
		if err := WriteManifest(p.manifestPath, m); err != nil {
			return sum, fmt.Errorf("write manifest: %w", err)
		}
		p.logger.Info("Manifest written", "path", p.manifestPath, "run_id", sum.RunID)
	}
	return sum, nil
}

// Step runs the single stage n (1-based). Stages that depend on tables an
// earlier stage has not yet written fail with internalerr.ErrTableNotFound.
func (p *Pipeline) Step(ctx context.Context, n int) error {
	stages := p.Stages()
	if n < 1 || n > len(stages) {
		return fmt.Errorf("%w: no step %d (have 1-%d)", internalerr.ErrInvalidInput, n, len(stages))
	}
	return p.runStage(ctx, n, stages[n-1])
}

func (p *Pipeline) runStage(ctx context.Context, n int, s Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info(fmt.Sprintf("Step %d: %s", n, s.Name))
	if err := s.run(ctx); err != nil {
		p.logger.Error("Error processing stage", "step", n, "stage", s.Name, "err", err)
		return fmt.Errorf("step %d (%s): %w", n, s.Name, err)
	}
	p.logger.Info(s.Name + ": OK")
	return nil
}

func (p *Pipeline) write(ctx context.Context, name string, columns []string, rows [][]string) error {
	if err := p.store.Write(ctx, store.Table{Name: name, Columns: columns, Rows: rows}); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	p.logger.Debug("Table written", "table", name, "rows", len(rows))
	return nil
}

func (p *Pipeline) checkVersion(context.Context) error {
	doc, err := p.loader.Taxonomy(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	if doc.Version != p.cfg.Version {
		return fmt.Errorf("%w: distribution is %q, configured %q", internalerr.ErrVersionMismatch, doc.Version, p.cfg.Version)
	}
	return nil
}

func (p *Pipeline) verticals(ctx context.Context) error {
	doc, err := p.loader.Categories(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	return p.write(ctx, records.TableVerticals, records.VerticalColumns, records.Rows(extract.Verticals(doc)))
}

func (p *Pipeline) categories(ctx context.Context) error {
	doc, err := p.loader.Categories(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	verticals, err := lookup.VerticalsByPrefix(ctx, p.store)
	if err != nil {
		return err
	}
	cats := extract.Categories(doc, verticals)
	resolve.CategoryParents(cats)
	return p.write(ctx, records.TableCategories, records.CategoryColumns, records.Rows(cats))
}

func (p *Pipeline) attributes(ctx context.Context) error {
	doc, err := p.loader.Attributes(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	attrs, ext := extract.Attributes(doc, extract.AttributeOptions{StripMarkup: p.cfg.StripMarkup})
	if err := p.write(ctx, records.TableAttributes, records.AttributeColumns, records.Rows(attrs)); err != nil {
		return err
	}
	return p.write(ctx, records.TableExtendedAttributes, records.ExtendedAttributeColumns, records.Rows(ext))
}

func (p *Pipeline) attributeValues(ctx context.Context) error {
	doc, err := p.loader.Values(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	return p.write(ctx, records.TableAttributeValues, records.AttributeValueColumns, records.Rows(extract.AttributeValues(doc)))
}

func (p *Pipeline) attributeValueMappings(ctx context.Context) error {
	doc, err := p.loader.Attributes(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	attrs, err := lookup.AttributesBySourceID(ctx, p.store)
	if err != nil {
		return err
	}
	values, err := lookup.ValuesBySourceID(ctx, p.store)
	if err != nil {
		return err
	}
	rows := resolve.AttributeValueMappings(doc, attrs, values)
	return p.write(ctx, records.TableAttributeValueMappings, records.AttributeValueMappingColumns, records.Rows(rows))
}

func (p *Pipeline) categoryAttributeMappings(ctx context.Context) error {
	doc, err := p.loader.Categories(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	cats, err := lookup.CategoriesBySourceID(ctx, p.store)
	if err != nil {
		return err
	}
	attrs, err := lookup.AttributesBySourceID(ctx, p.store)
	if err != nil {
		return err
	}
	ext, err := lookup.ExtendedAttributesByHandle(ctx, p.store)
	if err != nil {
		return err
	}
	rows := resolve.CategoryAttributeMappings(doc, cats, attrs, ext)
	return p.write(ctx, records.TableCategoryAttributeMappings, records.CategoryAttributeMappingColumns, records.Rows(rows))
}

func (p *Pipeline) attributeExtendedMappings(ctx context.Context) error {
	doc, err := p.loader.Attributes(p.cfg.SourceLanguage)
	if err != nil {
		return err
	}
	attrs, err := lookup.AttributesBySourceID(ctx, p.store)
	if err != nil {
		return err
	}
	ext, err := lookup.ExtendedAttributesByHandle(ctx, p.store)
	if err != nil {
		return err
	}
	rows := resolve.AttributeExtendedMappings(doc, attrs, ext)
	return p.write(ctx, records.TableAttributeExtendedMappings, records.AttributeExtendedMappingColumns, records.Rows(rows))
}

var mappingTables = []string{
	records.TableAttributeValueMappings,
	records.TableCategoryAttributeMappings,
	records.TableAttributeExtendedMappings,
}

func (p *Pipeline) checkDuplicates(ctx context.Context) error {
	for _, name := range mappingTables {
		n, err := dedup.Table(ctx, p.store, name, p.logger)
		if err != nil {
			return err
		}
		p.duplicates[name] = n
	}
	return nil
}

type localization struct {
	kind  records.LocalizationKind
	index func(context.Context, store.Reader) (*lookup.Index, error)
}

var localizationOrder = []localization{
	{records.CategoryLocalization, lookup.CategoriesByHandle},
	{records.AttributeLocalization, lookup.AttributesByHandle},
	{records.AttributeValueLocalization, lookup.ValuesByHandle},
	{records.VerticalLocalization, lookup.VerticalsByPrefix},
	{records.ExtendedAttributeLocalization, lookup.ExtendedAttributesByHandle},
}

func (p *Pipeline) localizeStage(l localization) func(context.Context) error {
	return func(ctx context.Context) error {
		ix, err := l.index(ctx, p.store)
		if err != nil {
			return err
		}
		locs, cov, err := localize.Localize(ctx, l.kind, p.cfg.Languages, ix, p.loc, p.logger)
		if err != nil {
			return err
		}
		p.coverage = append(p.coverage, cov)
		return p.write(ctx, l.kind.Table(), l.kind.Columns(), records.LocalizationRows(l.kind, locs))
	}
}

func tableCounts(ctx context.Context, r store.Reader) (map[string]int, error) {
	names, err := r.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	counts := make(map[string]int, len(names))
	for _, name := range names {
		t, err := r.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		counts[name] = len(t.Rows)
	}
	return counts, nil
}
