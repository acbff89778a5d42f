package variant

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/worksheets/internal/planner"
	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
)

// Config controls an Assembler.
type Config struct {
	// Concurrency bounds how many variants are planned at once.
	// Values below 1 mean one at a time.
	Concurrency int

	// MaxQuotaRatio rejects requests whose total quota exceeds this
	// fraction of the bank size. Zero disables the guard.
	MaxQuotaRatio float64

	// MaxSteps is passed to the planner for every variant.
	MaxSteps int
}

// DefaultConfig returns the recommended Assembler settings.
func DefaultConfig() Config {
	return Config{
		Concurrency:   4,
		MaxQuotaRatio: 1.0,
	}
}

// Assembler produces batches of variants.
type Assembler struct {
	cfg     Config
	planner *planner.Planner
	log     *zap.Logger
}

// New creates an Assembler. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Assembler{
		cfg:     cfg,
		planner: planner.New(planner.Options{MaxSteps: cfg.MaxSteps, Logger: log.Named("planner")}),
		log:     log,
	}
}

// Assemble plans req.VariantsCount variants against bank. Each variant is
// planned independently with its own derived seed; tasks may repeat across
// variants but never within one. If any variant fails the whole batch fails
// and no variants are returned.
func (a *Assembler) Assemble(ctx context.Context, bank *taskbank.Bank, req Request) (*Batch, error) {
	if req.VariantsCount < 1 {
		return nil, ErrNoVariants
	}
	if err := template.Validate(req.Template); err != nil {
		return nil, err
	}

	slots := template.ExpandSlots(req.Template)
	tasks := bank.Tasks()

	// Section shortfalls take precedence over the batch-wide quota guard.
	if err := planner.Precheck(slots, tasks); err != nil {
		return nil, &VariantError{
			VariantIndex:         0,
			VariantsCount:        req.VariantsCount,
			RemainingUniqueTasks: bank.Len(),
			Err:                  err,
		}
	}
	if err := a.checkQuota(bank, req.Template); err != nil {
		return nil, err
	}

	base := req.BaseSeed
	if base == "" {
		base = NewBaseSeed()
	}
	start := time.Now()

	variants := make([]Variant, req.VariantsCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i := 0; i < req.VariantsCount; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seed := VariantSeed(base, i)
			assignments, stats, err := a.planner.Solve(slots, tasks, seed)
			if err != nil {
				return &VariantError{
					VariantIndex:         i,
					VariantsCount:        req.VariantsCount,
					RemainingUniqueTasks: bank.Len(),
					Err:                  err,
				}
			}
			if req.Shuffle {
				assignments = Shuffle(assignments, ShuffleSeed(seed))
			}
			variants[i] = Variant{Index: i, Seed: seed, Assignments: assignments}
			a.log.Debug("variant planned",
				zap.Int("variant", i),
				zap.String("seed", seed),
				zap.Int("steps", stats.Steps),
				zap.Int("backtracks", stats.Backtracks))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Warn("batch failed",
			zap.String("template", req.Template.ID),
			zap.String("base_seed", base),
			zap.Error(err))
		return nil, err
	}

	a.log.Info("batch planned",
		zap.String("template", req.Template.ID),
		zap.String("base_seed", base),
		zap.Int("variants", req.VariantsCount),
		zap.Int("slots", len(slots)),
		zap.Bool("shuffle", req.Shuffle),
		zap.Duration("elapsed", time.Since(start)))
	return &Batch{BaseSeed: base, Variants: variants}, nil
}

// checkQuota rejects templates whose total demand exceeds the configured
// share of the bank before any search runs.
func (a *Assembler) checkQuota(bank *taskbank.Bank, t template.Template) error {
	if a.cfg.MaxQuotaRatio <= 0 {
		return nil
	}
	total := template.TotalQuota(t)
	limit := int(a.cfg.MaxQuotaRatio * float64(bank.Len()))
	if total <= limit {
		return nil
	}
	return &planner.InsufficientTasksError{
		SectionLabel:   "*",
		RequiredCount:  total,
		AvailableCount: limit,
		Source:         planner.SourceQuota,
		Cause:          fmt.Errorf("total quota %d exceeds %.0f%% of the %d-task bank", total, a.cfg.MaxQuotaRatio*100, bank.Len()),
	}
}
