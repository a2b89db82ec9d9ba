package cmd

import (
	"fmt"
	"strings"
	"time"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/feature/roster"

	"github.com/pterm/pterm"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	nameWidth  = 28
	emailWidth = 24
)

func printBanner(folder string, files, workers int) {
	pterm.DefaultHeader.WithFullWidth().Println("ATTENDANCE RECONCILER")
	pterm.Println()
	pterm.Info.Printfln("Source: %s", folder)
	pterm.Info.Printfln("Found %d Excel file(s)", files)
	pterm.Info.Printfln("Processing with %d workers", workers)
	pterm.Println()
}

func phaseTitle(p reconcile.Pass) string {
	switch p {
	case reconcile.PassEmailRequired:
		return "Phase 1: sheets with an email column"
	case reconcile.PassNameOnly:
		return "Phase 2: name-only sheets"
	default:
		return p.String()
	}
}

// printPhase lists files that contributed rows, then failures of the phase.
func printPhase(report reconcile.PhaseReport) {
	pterm.DefaultSection.Println(phaseTitle(report.Pass))
	for _, line := range phaseLines(report) {
		pterm.Println(line)
	}
	for _, res := range report.Results {
		if !res.Success {
			pterm.Error.Printfln("%s: %s", res.File, res.Error)
		}
	}
	if report.TimedOut {
		pterm.Warning.Printfln("Phase timed out after %s, remaining files were skipped", report.Duration.Round(time.Millisecond))
	}
}

func phaseLines(report reconcile.PhaseReport) []string {
	var lines []string
	for _, res := range report.Results {
		if res.Success && res.RowsProcessed > 0 {
			lines = append(lines, fmt.Sprintf("✓ %s: %d people from %d sheet(s)", res.File, res.RowsProcessed, res.SheetsProcessed))
		}
	}
	return lines
}

func printTop(entries []roster.Entry, top int) {
	pterm.DefaultSection.Println("Final report (highest to lowest attendance)")
	_ = pterm.DefaultTable.WithHasHeader().WithData(topTable(entries, top)).Render()
	if more := len(entries) - top; top > 0 && more > 0 {
		pterm.Printfln("... and %d more", more)
	}
}

func topTable(entries []roster.Entry, top int) pterm.TableData {
	data := pterm.TableData{{"Rank", "Name", "Email", "Count"}}
	for i, e := range entries {
		if top > 0 && i >= top {
			break
		}
		data = append(data, []string{
			fmt.Sprint(e.Rank),
			truncate(e.Name, nameWidth),
			truncate(e.Email, emailWidth),
			fmt.Sprint(e.Count),
		})
	}
	return data
}

func printSummary(s reconcile.Summary) {
	pterm.DefaultSection.Println("Performance")
	for _, line := range summaryLines(s) {
		pterm.Println(line)
	}
	if s.Failures > 0 {
		pterm.Warning.Printfln("%d file(s) failed", s.Failures)
	}
}

// summaryLines renders counts with English digit grouping.
func summaryLines(s reconcile.Summary) []string {
	p := message.NewPrinter(language.English)
	return []string{
		p.Sprintf("  Files processed: %d of %d", s.FilesProcessed, s.Files),
		p.Sprintf("  People processed: %d", s.RowsProcessed),
		p.Sprintf("  Unique people: %d", s.Identities),
		p.Sprintf("  Elapsed: %s", s.Elapsed.Round(time.Millisecond)),
		p.Sprintf("  Throughput: %.2f files/sec", s.Throughput),
		p.Sprintf("  Name to email bindings created: %d", s.Bindings),
	}
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return strings.TrimRight(string(r[:max-3]), " ") + "..."
}
