// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/signal-now/signal-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintActivity outputs the fetched activity window for a target.
func (p *Printer) PrintActivity(target string, events []types.ActivityEvent, now time.Time) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target:  %s\n", target))
	sb.WriteString(fmt.Sprintf("Events:  %d\n", len(events)))

	if len(events) > 0 {
		sb.WriteString("\n")
		count := min(len(events), maxItemsToShow)
		for i := 0; i < count; i++ {
			ev := events[i]
			msg := ev.Message
			if len(msg) > 38 {
				msg = msg[:35] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", ev.Kind, msg))
			sb.WriteString(fmt.Sprintf("    %s, %s\n", ev.Repository, types.RelativeTime(ev.Timestamp, now)))
		}
		if len(events) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(events)-maxItemsToShow))
		}
	}

	p.printBox("ACTIVITY WINDOW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResearchReport outputs the researcher stage's findings.
func (p *Printer) PrintResearchReport(report *types.ResearchReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pattern:  %s\n", report.ActivityPattern))

	summary := report.Summary
	if summary != "" {
		sb.WriteString("\n")
		sb.WriteString(wrapText(summary, boxWidth-6))
		sb.WriteString("\n")
	}

	if len(report.PrimaryTechnologies) > 0 {
		sb.WriteString("\nTechnologies:\n")
		count := min(len(report.PrimaryTechnologies), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.PrimaryTechnologies[i]))
		}
	}

	if len(report.NotableSignals) > 0 {
		sb.WriteString("\nSignals:\n")
		count := min(len(report.NotableSignals), 3)
		for i := 0; i < count; i++ {
			signal := report.NotableSignals[i]
			if len(signal) > 50 {
				signal = signal[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", signal))
		}
	}

	p.printBox("RESEARCH REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStrategy outputs the strategist stage's readiness assessment.
func (p *Printer) PrintStrategy(strategy *types.ReadinessStrategy) {
	if strategy == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:       %d/100 (%s)\n", strategy.ReadinessScore, strategy.ReadinessLevel))
	sb.WriteString(fmt.Sprintf("Confidence:  %s\n", strategy.Confidence))

	if strategy.TimingAnalysis != "" {
		sb.WriteString("\nTiming:\n")
		sb.WriteString(wrapText(strategy.TimingAnalysis, boxWidth-6))
		sb.WriteString("\n")
	}
	if strategy.Bridge != "" {
		sb.WriteString("\nBridge:\n")
		sb.WriteString(wrapText(strategy.Bridge, boxWidth-6))
		sb.WriteString("\n")
	}
	if strategy.TheHook != "" {
		sb.WriteString("\nHook:\n")
		sb.WriteString(wrapText(strategy.TheHook, boxWidth-6))
	}

	p.printBox("READINESS STRATEGY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs a completed assessment, including the icebreaker when
// one was drafted.
func (p *Printer) PrintResult(result *types.AssessmentResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target:    %s\n", result.Target))
	sb.WriteString(fmt.Sprintf("Decision:  %s", result.Decision))
	if result.Cached {
		sb.WriteString("  (cached)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Score:     %d/100 (%s)\n", result.Score, result.ReadinessLevel))
	sb.WriteString(fmt.Sprintf("Next:      %s\n", result.NextStep))

	if result.Reasoning != "" {
		sb.WriteString("\nReasoning:\n")
		sb.WriteString(wrapText(result.Reasoning, boxWidth-6))
		sb.WriteString("\n")
	}
	if result.Icebreaker != "" {
		sb.WriteString("\nIcebreaker:\n")
		sb.WriteString(wrapText(result.Icebreaker, boxWidth-6))
	}

	p.printBox("ASSESSMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs ranked discovery candidates.
func (p *Printer) PrintCandidates(candidates []types.Candidate) {
	if len(candidates) == 0 {
		p.printBox("DISCOVERED CANDIDATES", "No candidates found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d candidates:\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s  (score %d)\n", i+1, c.Handle, c.HeuristicScore))
		if c.Bio != "" {
			bio := c.Bio
			if len(bio) > 48 {
				bio = bio[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", bio))
		}
		if c.OriginRepository != "" {
			sb.WriteString(fmt.Sprintf("    via %s\n", c.OriginRepository))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(candidates)-maxItemsToShow))
	}

	p.printBox("DISCOVERED CANDIDATES", sb.String())
}

// wrapText wraps text at word boundaries to the given width.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if lineLen > 0 && lineLen+1+len(word) > width {
			sb.WriteString("\n")
			lineLen = 0
		} else if i > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
