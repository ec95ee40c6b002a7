// Package compat decides whether a new version of a contract's declaration
// tree is a storage-safe evolution of the deployed one.
//
// The validator is a pure function of its inputs: it never mutates the
// declaration trees or tombstone registries it is given, holds no state
// between calls, and always walks both trees completely so that a rejection
// lists every violation at once.
//
// Example:
//
//	result := compat.Validate(deployed, candidate)
//	if !result.Allowed() {
//	    for _, d := range result.Diagnostics {
//	        fmt.Println(d)
//	    }
//	}
package compat

import (
	"time"

	cc "github.com/speakeasy-api/contractcompat"
)

// Validate compares every contract of old against new and checks the
// tombstone registries. The result is Allow iff no diagnostic was produced;
// a single violation anywhere rejects the whole candidate.
func Validate(old, new cc.Snapshot, opts ...Options) *Result {
	opt := resolveOptions(opts)
	log := loggerFor(opt)
	start := time.Now()

	diags := DiagnosticList(checkTombstones(old, new))

	tombstones := old.Tombstones.Union(new.Tombstones)
	pairings, matchDiags := contractPairings(old, new, tombstones)
	diags = append(diags, matchDiags...)

	contracts := make([]string, 0, len(pairings))
	for _, p := range pairings {
		contracts = append(contracts, p.Name)
		w := newWalker(opt, log.With(map[string]any{"contract": p.Name}), tombstones)
		diags = append(diags, w.contract(p)...)
	}

	result := finish(opt, old, new, diags, contracts)
	log.Infof("validated %d contracts in %s: %s (%d diagnostics)",
		len(contracts), time.Since(start).Round(time.Microsecond), result.Decision, len(result.Diagnostics))
	return result
}

// ValidateContract validates a single contract. Tombstone checks are limited
// to entries at or below the contract, plus its own account-scope entry.
func ValidateContract(name string, old, new cc.Snapshot, opts ...Options) *Result {
	opt := resolveOptions(opts)
	log := loggerFor(opt).With(map[string]any{"contract": name})

	var diags DiagnosticList
	for _, d := range checkTombstones(old, new) {
		if d.Path.HasPrefix(cc.QualifiedName{name}) {
			diags = append(diags, d)
		}
	}

	tombstones := old.Tombstones.Union(new.Tombstones)
	pairings, matchDiags := contractPairings(
		cc.Snapshot{Schema: only(old.Schema, name), Tombstones: old.Tombstones},
		cc.Snapshot{Schema: only(new.Schema, name), Tombstones: new.Tombstones},
		tombstones,
	)
	diags = append(diags, matchDiags...)

	var contracts []string
	for _, p := range pairings {
		contracts = append(contracts, p.Name)
		diags = append(diags, newWalker(opt, log, tombstones).contract(p)...)
	}

	return finish(opt, old, new, diags, contracts)
}

func finish(opt Options, old, new cc.Snapshot, diags DiagnosticList, contracts []string) *Result {
	result := newResult(diags, contracts)
	fp := opt.Fingerprinter
	if fp == nil {
		fp = NewFingerprinter()
	}
	result.OldDigest = fp.FingerprintSnapshot(old)
	result.NewDigest = fp.FingerprintSnapshot(new)
	return result
}

func only(s cc.Schema, name string) cc.Schema {
	out := cc.Schema{}
	if d, ok := s[name]; ok {
		out[name] = d
	}
	return out
}

func resolveOptions(opts []Options) Options {
	if len(opts) > 0 {
		return opts[0]
	}
	return DefaultOptions()
}
