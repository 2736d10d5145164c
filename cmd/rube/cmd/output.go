package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corey/rube/internal/app"
	"github.com/corey/rube/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// paint wraps s in color when color output is on.
func paint(color, s string, on bool) string {
	if !on {
		return s
	}
	return color + s + colorReset
}

// formatOutcome renders a pipeline run for the terminal.
//
//	⚡ catex │ 3 sequences (1 cached) │ 1204 attempts │ 4ms
//	  ate  cat  tex
//	pngrk
func formatOutcome(out *app.Outcome, color bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s │ %d sequences (%d cached) │ %d attempts │ %s\n",
		paint(colorBold, "⚡ "+out.Assembled, color),
		len(out.Sequences), out.CachedHits, out.Attempts, roundDuration(out.Elapsed)))
	sb.WriteString("  ")
	sb.WriteString(paint(colorGray, strings.Join(out.Sequences, "  "), color))
	sb.WriteString("\n")
	sb.WriteString(paint(colorGreen, out.Output, color))
	sb.WriteString("\n")
	return sb.String()
}

// formatMatches renders digest/sequence pairs sorted by sequence.
func formatMatches(matches map[string]string, color bool) string {
	type pair struct{ digest, seq string }
	pairs := make([]pair, 0, len(matches))
	for d, s := range matches {
		pairs = append(pairs, pair{d, s})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].seq < pairs[j].seq })

	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(fmt.Sprintf("%s  %s\n", paint(colorCyan, p.digest, color), p.seq))
	}
	return sb.String()
}

// formatRun renders a stored run summary.
func formatRun(rec *ports.RunRecord, color bool) string {
	if rec == nil {
		return "  Last run:   " + paint(colorYellow, "none", color) + "\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  Last run:   %s\n", paint(colorMagenta, rec.ID, color)))
	sb.WriteString(fmt.Sprintf("  Started:    %s\n", rec.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("  Algorithm:  %s\n", rec.Algorithm))
	sb.WriteString(fmt.Sprintf("  Targets:    %d (%d cached)\n", rec.Targets, rec.CachedHits))
	sb.WriteString(fmt.Sprintf("  Attempts:   %d in %s\n", rec.Attempts, roundDuration(rec.Elapsed)))
	sb.WriteString(fmt.Sprintf("  Output:     %s\n", paint(colorGreen, rec.Output, color)))
	return sb.String()
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Microsecond)
	}
	return d
}
