// Package report renders a batch of valuations as a Markdown decision report,
// with HTML and PDF renderings of the same document.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joelkehle/bidvalue/internal/batch"
	"github.com/joelkehle/bidvalue/internal/valuation"
)

// Meta describes the run a report belongs to.
type Meta struct {
	Title       string
	Source      string
	Simulations int
	Workers     int
	Seed        uint64
	Thresholds  valuation.DecisionThresholds
	GeneratedAt time.Time
}

// BuildMarkdown renders the batch summary. Projects appear in input order;
// rejected rows are listed with their errors at the end.
func BuildMarkdown(sum batch.Summary, meta Meta) string {
	var b strings.Builder
	title := meta.Title
	if title == "" {
		title = "Bid Participation Report"
	}
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	fmt.Fprintf(&b, "# %s\n\n", sanitize(title))
	fmt.Fprintf(&b, "- Run ID: %s\n", sum.RunID)
	if meta.Source != "" {
		fmt.Fprintf(&b, "- Input: %s\n", sanitize(meta.Source))
	}
	fmt.Fprintf(&b, "- Date: %s\n", generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Simulations per project: %d (%d partitions)\n", meta.Simulations, meta.Workers)
	if meta.Seed != 0 {
		fmt.Fprintf(&b, "- Seed: %d\n", meta.Seed)
	}
	fmt.Fprintf(&b, "- Projects: %d valued, %d rejected\n\n", sum.Succeeded, sum.Failed)

	results := sum.Results()
	writeSummaryTable(&b, results)
	writeDecisionMix(&b, results)
	writeMethod(&b, meta.Thresholds)
	for _, r := range results {
		writeProject(&b, r)
	}
	writeFailures(&b, sum.Failures())
	return b.String()
}

func writeSummaryTable(b *strings.Builder, results []valuation.Result) {
	fmt.Fprintf(b, "## Summary\n\n")
	if len(results) == 0 {
		fmt.Fprintf(b, "No project could be valued.\n\n")
		return
	}
	fmt.Fprintf(b, "| Project | Contract | Type | Phase | NPV | ROV net | TPV | 90%% interval | Decision | Robustness | Change |\n")
	fmt.Fprintf(b, "|---|---:|---|---|---:|---:|---:|---|---|---:|---|\n")
	for _, r := range results {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s to %s | %s | %s | %s |\n",
			sanitize(r.ProjectID), amount(r.ContractAmount), r.InfraType, r.DesignPhase,
			amount(r.NPV), amount(r.ROVNet), amount(r.TPV),
			amount(r.TPVLower), amount(r.TPVUpper),
			r.TPVDecision, pct(r.Robustness), change(r))
	}
	fmt.Fprintf(b, "\n")
}

func writeDecisionMix(b *strings.Builder, results []valuation.Result) {
	if len(results) == 0 {
		return
	}
	counts := map[valuation.Decision]int{}
	var flipped []string
	for _, r := range results {
		counts[r.TPVDecision]++
		if r.DecisionChanged && r.Direction != valuation.DirectionNoChange {
			flipped = append(flipped, fmt.Sprintf("%s (%s)", sanitize(r.ProjectID), r.Direction))
		}
	}
	fmt.Fprintf(b, "### Decision mix\n\n")
	for _, d := range []valuation.Decision{
		valuation.DecisionStrongParticipate,
		valuation.DecisionParticipate,
		valuation.DecisionConditional,
		valuation.DecisionReject,
	} {
		fmt.Fprintf(b, "- %s: %d\n", d, counts[d])
	}
	if len(flipped) > 0 {
		sort.Strings(flipped)
		fmt.Fprintf(b, "\nOption value reverses the NPV-only call for: %s.\n", strings.Join(flipped, ", "))
	}
	fmt.Fprintf(b, "\n")
}

func writeMethod(b *strings.Builder, t valuation.DecisionThresholds) {
	fmt.Fprintf(b, "## How This Report Works\n\n")
	fmt.Fprintf(b, "Each project is valued by Monte Carlo simulation. Every iteration samples cost ratio, "+
		"competition, follow-on odds and firm capacity, computes the stage-one NPV as "+
		"`contract x (1 - cost ratio)`, prices seven real options (follow-on, capability, resource, "+
		"abandonment, contract, switch, stage) and deducts interaction, risk-premium and deferral charges. "+
		"Net option value is capped at %.0f%% of |NPV|.\n\n", valuation.ROVCapRatio*100)
	fmt.Fprintf(b, "Total project value is `TPV = NPV + ROV net`. Each iteration's TPV is classified against the mean NPV:\n\n")
	fmt.Fprintf(b, "| Category | Relative test | Absolute test |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Strong Participate | TPV > %.2f x NPV | and TPV > %s |\n", t.StrongMultiple, amount(t.StrongFloor))
	fmt.Fprintf(b, "| Participate | %.2f x NPV < TPV <= %.2f x NPV | or %s < TPV <= %s |\n",
		t.ParticipateMultiple, t.StrongMultiple, amount(t.ParticipateFloor), amount(t.StrongFloor))
	fmt.Fprintf(b, "| Conditional | %.2f x NPV < TPV <= %.2f x NPV | or 0 < TPV <= %s |\n",
		t.ConditionalMultiple, t.ParticipateMultiple, amount(t.ParticipateFloor))
	fmt.Fprintf(b, "| Reject | otherwise | or TPV <= 0 |\n\n")
	fmt.Fprintf(b, "The reported decision is the most likely category; robustness is its probability.\n\n")
}

func writeProject(b *strings.Builder, r valuation.Result) {
	fmt.Fprintf(b, "## Project %s\n\n", sanitize(r.ProjectID))
	fmt.Fprintf(b, "- %s %s design, contract %s\n", r.InfraType, strings.ToLower(string(r.DesignPhase)), amount(r.ContractAmount))
	fmt.Fprintf(b, "- NPV %s (std %s), NPV-only call: %s\n", amount(r.NPV), amount(r.NPVStd), r.NPVDecision)
	fmt.Fprintf(b, "- TPV %s (std %s), 90%% interval %s to %s\n", amount(r.TPV), amount(r.TPVStd), amount(r.TPVLower), amount(r.TPVUpper))
	if r.TPVToNPV != nil {
		fmt.Fprintf(b, "- TPV/NPV: %.2f\n", *r.TPVToNPV)
	} else {
		fmt.Fprintf(b, "- TPV/NPV: undefined (NPV is zero)\n")
	}
	fmt.Fprintf(b, "- ROV cap bound in %s of iterations\n\n", pct(r.CapRate))

	fmt.Fprintf(b, "| Component | Mean | Std |\n|---|---:|---:|\n")
	rows := []struct {
		name string
		s    valuation.Stat
	}{
		{"Follow-on", r.Options.FollowOn},
		{"Capability", r.Options.Capability},
		{"Resource", r.Options.Resource},
		{"Abandonment", r.Options.Abandonment},
		{"Contract", r.Options.Contract},
		{"Switch", r.Options.Switch},
		{"Stage", r.Options.Stage},
		{"Interaction (-)", r.Adjustments.Interaction},
		{"Risk premium (-)", r.Adjustments.RiskPremium},
		{"Deferral (-)", r.Adjustments.Deferral},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s | %s |\n", row.name, amount(row.s.Mean), amount(row.s.Std))
	}
	fmt.Fprintf(b, "| **ROV gross** | %s | |\n| **ROV net** | %s | |\n\n", amount(r.ROVGross), amount(r.ROVNet))

	p := r.Probabilities
	fmt.Fprintf(b, "Decision: **%s** (robustness %s). Strong %s, participate %s, conditional %s, reject %s.",
		r.TPVDecision, pct(r.Robustness), pct(p.StrongParticipate), pct(p.Participate), pct(p.Conditional), pct(p.Reject))
	if r.HasFollowOn {
		fmt.Fprintf(b, " Follow-on option in the money in %s of iterations.", pct(r.FollowOnActiveRate))
	}
	fmt.Fprintf(b, "\n\n")
}

func writeFailures(b *strings.Builder, failed []batch.Outcome) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(b, "## Rejected Rows\n\n")
	fmt.Fprintf(b, "| Line | Project | Error |\n|---:|---|---|\n")
	for _, o := range failed {
		id := o.ProjectID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(b, "| %d | %s | %s |\n", o.Line, sanitize(id), sanitize(o.Err.Error()))
	}
	fmt.Fprintf(b, "\n")
}

func change(r valuation.Result) string {
	if !r.DecisionChanged {
		return "-"
	}
	if r.Direction == valuation.DirectionNoChange {
		return "Conditional"
	}
	return string(r.Direction)
}

func amount(v float64) string { return fmt.Sprintf("%.1f", v) }

func pct(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }

// sanitize keeps free text from breaking table rows.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
