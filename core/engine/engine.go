// Package engine prices quote requests.
// The CLI is a thin wrapper around this engine.
//
// One call runs the whole pipeline in a fixed order:
//  1. assemble line items (consulting promotions and the catalog)
//  2. apply jurisdiction taxes and fees
//  3. check that no amount went negative
//  4. totalize
//
// The engine holds no per-quote state and never mutates its inputs, so one
// Engine may price independent requests concurrently.
package engine

import (
	"encoding/json"
	"runtime"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"wireless-quote/core/assembler"
	"wireless-quote/core/catalog"
	"wireless-quote/core/determinism"
	"wireless-quote/core/guards"
	"wireless-quote/core/promotion"
	"wireless-quote/core/tax"
	"wireless-quote/core/totalizer"
	"wireless-quote/core/types"
	"wireless-quote/internal/config"
	ierr "wireless-quote/internal/errors"
)

// Phase names a pipeline step, for logs
type Phase string

const (
	PhaseAssemble Phase = "assemble"
	PhaseTax      Phase = "tax"
	PhaseGuard    Phase = "guard"
	PhaseTotalize Phase = "totalize"
)

// Options configures an Engine
type Options struct {
	// Logger defaults to a no-op logger
	Logger *zap.Logger

	// Strict makes a negative financed principal an error instead of a clamp
	Strict bool

	// Concurrency caps QuoteBatch parallelism; 0 means GOMAXPROCS
	Concurrency int
}

// Engine is the quote pricing entry point
type Engine struct {
	assembler   *assembler.Assembler
	taxes       *tax.Engine
	logger      *zap.Logger
	strict      bool
	concurrency int
}

// New creates an engine
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		assembler:   assembler.New(promotion.NewResolver(logger.Named("promotion")), logger.Named("assembler")),
		taxes:       tax.New(logger.Named("tax")),
		logger:      logger,
		strict:      opts.Strict,
		concurrency: concurrency,
	}
}

// FromConfig creates an engine from the engine section of the config
func FromConfig(cfg config.EngineConfig, logger *zap.Logger) *Engine {
	return New(Options{
		Logger:      logger,
		Strict:      cfg.Strict(),
		Concurrency: cfg.BatchConcurrency,
	})
}

// Strict reports whether the engine fails on negative principals
func (e *Engine) Strict() bool {
	return e.strict
}

// Quote prices one request against c. Identical requests against the same
// catalog produce identical quotes, IDs included.
func (e *Engine) Quote(c *catalog.Catalog, req *types.QuoteRequest) (*types.ItemizedQuote, error) {
	if err := guards.RequireSealed(c); err != nil {
		return nil, err
	}
	guard := guards.NewOverflowGuard(e.strict, e.logger)

	asm, err := e.assembler.Assemble(c, req, guard)
	if err != nil {
		return nil, e.fail(PhaseAssemble, c, req, err)
	}

	jurisdiction, err := c.TaxSchedule(req.JurisdictionID)
	if err != nil {
		return nil, e.fail(PhaseTax, c, req, err)
	}
	items := e.taxes.ApplyTaxes(asm.Items, jurisdiction, asm.VoiceLines, asm.Devices, tax.OptionsFor(asm.Plan))

	if err := guard.Items(items); err != nil {
		return nil, e.fail(PhaseGuard, c, req, err)
	}

	quote := totalizer.Totalize(items)
	if !totalizer.Check(quote) {
		return nil, e.fail(PhaseTotalize, c, req, ierr.New(ierr.TypeInternal, "quote totals do not match itemization"))
	}

	id, err := quoteID(c, req)
	if err != nil {
		return nil, e.fail(PhaseTotalize, c, req, err)
	}
	quote.ID = id
	quote.CatalogVersion = c.Version()
	quote.CatalogHash = c.Hash().Hex()
	if w := guard.Warnings(); len(w) > 0 {
		quote.Warnings = w
	}

	e.logger.Debug("quote computed",
		zap.String("quote_id", quote.ID),
		zap.String("catalog_version", quote.CatalogVersion),
		zap.Int("voice_lines", asm.VoiceLines),
		zap.Int("accessory_lines", len(req.Accessories)),
		zap.Int("items", len(quote.Items)),
		zap.String("total_monthly", quote.TotalMonthly.String()),
		zap.String("total_upfront", quote.TotalUpfront.String()),
	)
	return quote, nil
}

// QuoteBatch prices independent requests in parallel. Results keep the
// order of reqs; a failed request leaves a nil slot and its error is joined
// into the returned error.
func (e *Engine) QuoteBatch(c *catalog.Catalog, reqs []*types.QuoteRequest) ([]*types.ItemizedQuote, error) {
	mapper := iter.Mapper[*types.QuoteRequest, *types.ItemizedQuote]{MaxGoroutines: e.concurrency}
	return mapper.MapErr(reqs, func(req **types.QuoteRequest) (*types.ItemizedQuote, error) {
		return e.Quote(c, *req)
	})
}

// Result is the outcome of one request in QuoteEach
type Result struct {
	Quote *types.ItemizedQuote
	Err   error
}

// QuoteEach prices independent requests in parallel and reports each
// outcome separately, in the order of reqs.
func (e *Engine) QuoteEach(c *catalog.Catalog, reqs []*types.QuoteRequest) []Result {
	mapper := iter.Mapper[*types.QuoteRequest, Result]{MaxGoroutines: e.concurrency}
	return mapper.Map(reqs, func(req **types.QuoteRequest) Result {
		q, err := e.Quote(c, *req)
		return Result{Quote: q, Err: err}
	})
}

// fail logs err at a level matching its type and returns it unchanged.
// Catalog misses are configuration defects and always log at Error.
func (e *Engine) fail(phase Phase, c *catalog.Catalog, req *types.QuoteRequest, err error) error {
	fields := []zap.Field{
		zap.String("phase", string(phase)),
		zap.String("catalog_version", c.Version()),
		zap.String("plan_id", planID(req)),
		zap.String("error_type", string(ierr.TypeOf(err))),
		zap.Error(err),
	}
	switch ierr.TypeOf(err) {
	case ierr.TypeInvalidRequest:
		e.logger.Debug("quote rejected", fields...)
	case ierr.TypeNotFound:
		e.logger.Error("catalog lookup failed", fields...)
	default:
		e.logger.Error("quote failed", fields...)
	}
	return err
}

func planID(req *types.QuoteRequest) string {
	if req == nil {
		return ""
	}
	return req.PlanID
}

func quoteID(c *catalog.Catalog, req *types.QuoteRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", ierr.Internal("encode request for quote id", err)
	}
	hash := c.Hash()
	return determinism.StableID(hash[:], data).String(), nil
}
