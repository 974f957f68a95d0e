package pinup

import (
	"context"
	"sync"
	"time"
)

func (p *Pinup) schedule(ctx context.Context, interval time.Duration) <-chan time.Time {
	out := make(chan time.Time)
	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		t := p.now()
		for {
			select {
			case out <- t:
			case <-ctx.Done():
				return
			}

			select {
			case t = <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (p *Pinup) refreshWorker(ctx context.Context, in <-chan time.Time) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for range in {
			if err := p.Refresh(ctx); err != nil {
				// Cancellation while waiting on the panel is a clean stop
				if ctx.Err() != nil {
					return
				}
				errc <- err
				return
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Run refreshes immediately and then every interval until ctx is done or a
// cycle fails. Cycles never overlap. Any extra error channels, such as from
// a preview server, stop the loop when they yield an error.
func (p *Pinup) Run(ctx context.Context, interval time.Duration, errs ...<-chan error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return waitForPipeline(append(errs, p.refreshWorker(ctx, p.schedule(ctx, interval)))...)
}
