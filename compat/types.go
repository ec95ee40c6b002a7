package compat

import (
	"fmt"

	cc "github.com/speakeasy-api/contractcompat"
)

// Options configures a validation run.
type Options struct {
	// Limits bounding adversarially large inputs
	MaxDepth        int // Max nesting depth below a contract (default: 64)
	MaxDeclarations int // Max declarations visited per contract (default: 100000)

	// Parallelism caps concurrent contracts in ValidateParallel.
	// 0 means one goroutine per contract.
	Parallelism int

	// Logging configuration
	LogLevel   string // Log level: "error", "warn", "info", "debug" (default: "warn")
	TimeFormat string // strftime layout for log timestamps (default: "%Y-%m-%dT%H:%M:%S%z")

	// Logger overrides the logger built from LogLevel. Nil means no logging
	// unless LogLevel is set explicitly by the caller.
	Logger Logger

	// Fingerprinter is shared across calls when set, so repeated validations
	// of the same trees reuse cached layout digests.
	Fingerprinter *Fingerprinter
}

// DefaultOptions returns the default configuration for validation.
func DefaultOptions() Options {
	return Options{
		MaxDepth:        64,
		MaxDeclarations: 100000,
		Parallelism:     0,
		LogLevel:        "warn",
		TimeFormat:      "%Y-%m-%dT%H:%M:%S%z",
	}
}

// Decision is the outcome of a validation.
type Decision int

const (
	Allow Decision = iota
	Reject
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "reject"
}

// Result is the decision plus every diagnostic found. Decision is Allow iff
// Diagnostics is empty.
type Result struct {
	Decision    Decision
	Diagnostics DiagnosticList

	// OldDigest and NewDigest fingerprint the storage-relevant layout of the
	// compared snapshots.
	OldDigest string
	NewDigest string

	// Contracts lists every contract name that was compared, sorted.
	Contracts []string
}

// Allowed reports whether the upgrade may be applied.
func (r *Result) Allowed() bool {
	return r != nil && r.Decision == Allow
}

// Err returns the diagnostics as an error, or nil when allowed.
func (r *Result) Err() error {
	if r == nil || len(r.Diagnostics) == 0 {
		return nil
	}
	return r.Diagnostics
}

// String returns a short summary for debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	if r.Decision == Allow {
		return fmt.Sprintf("Result{allow, contracts: %d}", len(r.Contracts))
	}
	return fmt.Sprintf("Result{reject, contracts: %d, diagnostics: %d}", len(r.Contracts), len(r.Diagnostics))
}

func newResult(diags DiagnosticList, contracts []string) *Result {
	r := &Result{Diagnostics: diags, Contracts: contracts}
	if len(diags) > 0 {
		r.Decision = Reject
	}
	return r
}

// PairingKind classifies how a name relates across versions within a scope.
type PairingKind int

const (
	Added PairingKind = iota
	Removed
	Matched
	Reintroduced
)

func (k PairingKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Matched:
		return "matched"
	case Reintroduced:
		return "reintroduced"
	default:
		return "unknown"
	}
}

// Pairing is one name within a scope and the declarations holding it in the
// old and new version. Old is nil for Added, New is nil for Removed.
type Pairing struct {
	Kind  PairingKind
	Scope cc.QualifiedName
	Name  string
	Old   *cc.Declaration
	New   *cc.Declaration

	// Tombstoned is set on Removed pairings whose name was retired with a
	// removal marker in the same scope.
	Tombstoned bool
}

// Path is the qualified name of the paired declaration.
func (p Pairing) Path() cc.QualifiedName {
	return p.Scope.Child(p.Name)
}
