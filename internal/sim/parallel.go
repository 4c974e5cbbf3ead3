package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/worker"
)

// Pool runs independent simulations concurrently, at most limit at a time.
type Pool struct {
	limit int
	build func(index int, cfg *config.Config) []Option
}

// NewPool returns a pool running up to limit simulations at once; limit <= 0
// means one per CPU. build, if not nil, supplies the options of each run so
// that observers and metrics are not shared between goroutines.
func NewPool(limit int, build func(index int, cfg *config.Config) []Option) *Pool {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Pool{limit: limit, build: build}
}

func (p *Pool) Limit() int { return p.limit }

// Run builds and runs one simulation per config. Messages from run i are sent
// to r prefixed with its label. The first failure cancels the remaining runs;
// results of runs that finished stay in place, others are nil.
func (p *Pool) Run(ctx context.Context, cfgs []*config.Config, r worker.Reporter) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			var opts []Option
			if p.build != nil {
				opts = p.build(i, cfg)
			}
			s, err := New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}

			label := Label(cfg)
			prefixed := worker.ReporterFunc(func(msg string) {
				if r != nil {
					r.Report("[" + label + "] " + msg)
				}
			})

			res, err := s.Run(ctx, prefixed)
			results[i] = res
			if err != nil {
				return fmt.Errorf("run %d (%s): %w", i, label, err)
			}
			return nil
		})
	}

	return results, g.Wait()
}

// Label names a run by its state point.
func Label(cfg *config.Config) string {
	return fmt.Sprintf("T=%.3f rho=%.3f N=%d", cfg.System.Temperature, cfg.System.Density, cfg.System.ParticleCount)
}
