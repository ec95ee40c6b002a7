package compat

import (
	"context"

	cc "github.com/speakeasy-api/contractcompat"
	"golang.org/x/sync/errgroup"
)

// ValidateParallel is Validate with one goroutine per contract. Contracts
// share no mutable state; per-contract diagnostics are merged in contract
// name order, so the result equals Validate's for the same inputs.
//
// A shared Fingerprinter is created when opts does not supply one. The only
// error returned is ctx.Err() when the context ends before all contracts
// are checked.
func ValidateParallel(ctx context.Context, old, new cc.Snapshot, opts ...Options) (*Result, error) {
	opt := resolveOptions(opts)
	if opt.Fingerprinter == nil {
		opt.Fingerprinter = NewFingerprinter()
	}
	log := loggerFor(opt)

	diags := DiagnosticList(checkTombstones(old, new))

	tombstones := old.Tombstones.Union(new.Tombstones)
	pairings, matchDiags := contractPairings(old, new, tombstones)
	diags = append(diags, matchDiags...)

	perContract := make([]DiagnosticList, len(pairings))
	contracts := make([]string, len(pairings))

	g, gctx := errgroup.WithContext(ctx)
	if opt.Parallelism > 0 {
		g.SetLimit(opt.Parallelism)
	}
	for i, p := range pairings {
		contracts[i] = p.Name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := newWalker(opt, log.With(map[string]any{"contract": p.Name}), tombstones)
			perContract[i] = w.contract(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range perContract {
		diags = append(diags, d...)
	}
	result := finish(opt, old, new, diags, contracts)
	log.Infof("validated %d contracts in parallel: %s (%d diagnostics)",
		len(contracts), result.Decision, len(result.Diagnostics))
	return result, nil
}
