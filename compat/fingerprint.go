package compat

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"

	cc "github.com/speakeasy-api/contractcompat"
)

// Fingerprinter computes layout digests: hashes over the storage-relevant
// part of a declaration tree. Two trees with the same digest persist values
// identically; access modifiers, member order (except enum cases) and
// functions do not contribute.
//
// A Fingerprinter caches per declaration pointer and is safe for concurrent
// use.
type Fingerprinter struct {
	mu       sync.RWMutex
	cache    map[*cc.Declaration]string
	maxDepth int // guardrail for pathological nesting
}

// NewFingerprinter creates a new fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{
		cache:    make(map[*cc.Declaration]string, 256),
		maxDepth: 1000,
	}
}

// FingerprintDeclaration returns a deterministic hex digest for d.
func (fp *Fingerprinter) FingerprintDeclaration(d *cc.Declaration) string {
	if d == nil {
		return "none"
	}

	fp.mu.RLock()
	if sum, ok := fp.cache[d]; ok {
		fp.mu.RUnlock()
		return sum
	}
	fp.mu.RUnlock()

	var w strings.Builder
	canonicalize(&w, d, 0, fp.maxDepth)
	hex := digest(w.String())

	fp.mu.Lock()
	fp.cache[d] = hex
	fp.mu.Unlock()

	return hex
}

// FingerprintSnapshot digests every contract plus the tombstone registry.
func (fp *Fingerprinter) FingerprintSnapshot(s cc.Snapshot) string {
	var w strings.Builder
	for _, name := range s.Schema.Names() {
		w.WriteString(name)
		w.WriteByte('=')
		w.WriteString(fp.FingerprintDeclaration(s.Schema[name]))
		w.WriteByte(';')
	}
	for _, t := range s.Tombstones.Entries() {
		w.WriteString("tomb:")
		w.WriteString(t.Path().String())
		w.WriteByte(';')
	}
	return digest(w.String())
}

// FingerprintType digests a type expression's canonical form.
func (fp *Fingerprinter) FingerprintType(t cc.TypeExpr) string {
	if t == nil {
		return "none"
	}
	return digest(t.String())
}

// Len reports the number of cached digests.
func (fp *Fingerprinter) Len() int {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return len(fp.cache)
}

// Reset clears the cache.
func (fp *Fingerprinter) Reset() {
	fp.mu.Lock()
	fp.cache = make(map[*cc.Declaration]string, 256)
	fp.mu.Unlock()
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum[:])
}

// canonicalize writes the storage-relevant shape of d.
func canonicalize(w *strings.Builder, d *cc.Declaration, depth, maxDepth int) {
	if d == nil {
		w.WriteString("nil")
		return
	}
	if depth > maxDepth {
		w.WriteString("...")
		return
	}

	w.WriteString(d.Kind.String())
	w.WriteByte(' ')
	w.WriteString(d.Identifier)

	switch d.Kind {
	case cc.KindField:
		w.WriteString(": ")
		if d.Type != nil {
			w.WriteString(d.Type.String())
		}
		return
	case cc.KindEnum:
		w.WriteString(": ")
		if d.RawType != nil {
			w.WriteString(d.RawType.String())
		}
		w.WriteString(" [")
		for i, c := range d.Cases() {
			if i > 0 {
				w.WriteByte(',')
			}
			w.WriteString(c.Identifier)
		}
		w.WriteByte(']')
		return
	case cc.KindEnumCase, cc.KindFunction, cc.KindEvent, cc.KindConstructor:
		return
	}

	if len(d.Conformances) > 0 {
		conf := append([]string(nil), d.Conformances...)
		sort.Strings(conf)
		w.WriteString(" : ")
		w.WriteString(strings.Join(conf, ","))
	}

	members := make([]*cc.Declaration, 0, len(d.Members))
	for _, m := range d.Members {
		if m != nil && m.Kind.IsPersisted() {
			members = append(members, m)
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Identifier < members[j].Identifier })

	w.WriteString(" {")
	for i, m := range members {
		if i > 0 {
			w.WriteByte(';')
		}
		canonicalize(w, m, depth+1, maxDepth)
	}
	w.WriteByte('}')
}
