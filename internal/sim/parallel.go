package sim

import (
	"context"
	"sync"

	"github.com/kmurari/springpend/internal/dynamo"
)

// RunBatch integrates one trajectory per initial condition, each on its
// own goroutine. newSim must return a fresh simulator per call because
// compiled systems and integrator scratch buffers are not shared safely.
func RunBatch(ctx context.Context, newSim func() *Simulator, inits []dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(inits))
	errs := make([]error, len(inits))

	var wg sync.WaitGroup
	for i := range inits {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = newSim().Run(ctx, inits[idx], cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
