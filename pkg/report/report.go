// Package report renders validation results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/itchyny/go-yaml"
	"github.com/itchyny/timefmt-go"
	"github.com/mattn/go-runewidth"
	"github.com/speakeasy-api/contractcompat/compat"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, json or yaml)", s)
}

// Report is the serialisable form of a compat.Result.
type Report struct {
	Decision    string   `json:"decision" yaml:"decision"`
	GeneratedAt string   `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	OldDigest   string   `json:"oldDigest" yaml:"oldDigest"`
	NewDigest   string   `json:"newDigest" yaml:"newDigest"`
	Contracts   []string `json:"contracts" yaml:"contracts"`
	Diagnostics []Entry  `json:"diagnostics" yaml:"diagnostics"`
}

// Entry is one rendered diagnostic.
type Entry struct {
	Kind     string `json:"kind" yaml:"kind"`
	Location string `json:"location" yaml:"location"`
	Position *int   `json:"position,omitempty" yaml:"position,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Hint     string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Options controls rendering.
type Options struct {
	Format Format
	// Color enables ANSI colours in text output.
	Color bool
	// Hints adds the per-kind explanation and fix suggestion.
	Hints bool
	// TimeFormat is a strftime layout for the generatedAt stamp; empty
	// omits it.
	TimeFormat string
	// Now defaults to time.Now.
	Now func() time.Time
}

// New converts a result into a Report.
func New(r *compat.Result, opts Options) *Report {
	rep := &Report{
		Decision:    r.Decision.String(),
		OldDigest:   r.OldDigest,
		NewDigest:   r.NewDigest,
		Contracts:   append([]string{}, r.Contracts...),
		Diagnostics: make([]Entry, 0, len(r.Diagnostics)),
	}
	if opts.TimeFormat != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		rep.GeneratedAt = timefmt.Format(now().UTC(), opts.TimeFormat)
	}
	for _, d := range r.Diagnostics {
		e := Entry{Kind: string(d.Kind), Location: d.Location(), Message: d.Message}
		if d.Position != compat.NoPosition {
			pos := d.Position
			e.Position = &pos
		}
		if opts.Hints {
			e.Summary, e.Hint = classifyAndHint(d.Kind)
		}
		rep.Diagnostics = append(rep.Diagnostics, e)
	}
	return rep
}

// Render writes r to w in the selected format.
func Render(w io.Writer, r *compat.Result, opts Options) error {
	rep := New(r, opts)
	switch opts.Format {
	case FormatJSON:
		return JSON(w, rep)
	case FormatYAML:
		return YAML(w, rep)
	case FormatText, "":
		return Text(w, rep, opts.Color)
	}
	return fmt.Errorf("unknown report format %q", opts.Format)
}

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// YAML writes rep as a YAML document.
func YAML(w io.Writer, rep *Report) error {
	out, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = w.Write(out)
	return err
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

// Text writes a human readable table. Columns are padded by display width
// so that wide identifiers stay aligned.
func Text(w io.Writer, rep *Report, color bool) error {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	var b strings.Builder
	decision := strings.ToUpper(rep.Decision)
	if rep.Decision == compat.Allow.String() {
		decision = paint(ansiGreen, decision)
	} else {
		decision = paint(ansiRed, decision)
	}
	fmt.Fprintf(&b, "%s: %d contract(s), %d diagnostic(s)", decision, len(rep.Contracts), len(rep.Diagnostics))
	if rep.GeneratedAt != "" {
		fmt.Fprintf(&b, " at %s", rep.GeneratedAt)
	}
	b.WriteByte('\n')

	if len(rep.Diagnostics) > 0 {
		kindWidth, locWidth := len("KIND"), len("LOCATION")
		for _, e := range rep.Diagnostics {
			kindWidth = max(kindWidth, runewidth.StringWidth(e.Kind))
			locWidth = max(locWidth, runewidth.StringWidth(e.Location))
		}

		fmt.Fprintf(&b, "%s  %s  %s\n",
			runewidth.FillRight("KIND", kindWidth), runewidth.FillRight("LOCATION", locWidth), "MESSAGE")
		for _, e := range rep.Diagnostics {
			kind := runewidth.FillRight(e.Kind, kindWidth)
			fmt.Fprintf(&b, "%s  %s  %s\n", paint(ansiRed, kind), runewidth.FillRight(e.Location, locWidth), e.Message)
			if e.Summary != "" {
				fmt.Fprintf(&b, "  %s\n", paint(ansiDim, e.Summary))
			}
			if e.Hint != "" {
				fmt.Fprintf(&b, "  How to fix: %s\n", e.Hint)
			}
		}
	}

	if rep.OldDigest != "" || rep.NewDigest != "" {
		fmt.Fprintf(&b, "layout: %s -> %s\n", short(rep.OldDigest), short(rep.NewDigest))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
