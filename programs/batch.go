package programs

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is a single program invocation.
type Job func() (*Claim, error)

// Run executes independent invocations concurrently, at most GOMAXPROCS at a
// time, and returns their claims in order. The first failure is returned and
// the jobs still queued behind it are skipped.
func Run(ctx context.Context, jobs ...Job) ([]*Claim, error) {
	return runLimited(ctx, runtime.GOMAXPROCS(0), jobs)
}

func runLimited(ctx context.Context, limit int, jobs []Job) ([]*Claim, error) {
	BatchSize.Observe(float64(len(jobs)))
	claims := make([]*Claim, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, job := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			claim, err := job()
			if err != nil {
				return err
			}
			claims[i] = claim
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return claims, nil
}
