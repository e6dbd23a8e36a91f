package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/joelkehle/bidvalue/internal/valuation"
)

type column struct {
	name  string
	value func(r valuation.Result) string
}

func num(v float64) string  { return strconv.FormatFloat(v, 'f', 4, 64) }
func prob(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

var outputColumns = []column{
	{"project_id", func(r valuation.Result) string { return r.ProjectID }},
	{"contract_amount", func(r valuation.Result) string { return num(r.ContractAmount) }},
	{"infra_type", func(r valuation.Result) string { return string(r.InfraType) }},
	{"design_phase", func(r valuation.Result) string { return string(r.DesignPhase) }},
	{"npv", func(r valuation.Result) string { return num(r.NPV) }},
	{"npv_std", func(r valuation.Result) string { return num(r.NPVStd) }},
	{"npv_decision", func(r valuation.Result) string { return string(r.NPVDecision) }},
	{"rov_follow_on", func(r valuation.Result) string { return num(r.Options.FollowOn.Mean) }},
	{"rov_capability", func(r valuation.Result) string { return num(r.Options.Capability.Mean) }},
	{"rov_resource", func(r valuation.Result) string { return num(r.Options.Resource.Mean) }},
	{"rov_abandonment", func(r valuation.Result) string { return num(r.Options.Abandonment.Mean) }},
	{"rov_contract", func(r valuation.Result) string { return num(r.Options.Contract.Mean) }},
	{"rov_switch", func(r valuation.Result) string { return num(r.Options.Switch.Mean) }},
	{"rov_stage", func(r valuation.Result) string { return num(r.Options.Stage.Mean) }},
	{"rov_gross", func(r valuation.Result) string { return num(r.ROVGross) }},
	{"interaction_adjustment", func(r valuation.Result) string { return num(r.Adjustments.Interaction.Mean) }},
	{"risk_premium", func(r valuation.Result) string { return num(r.Adjustments.RiskPremium.Mean) }},
	{"deferral_value", func(r valuation.Result) string { return num(r.Adjustments.Deferral.Mean) }},
	{"rov_net", func(r valuation.Result) string { return num(r.ROVNet) }},
	{"tpv", func(r valuation.Result) string { return num(r.TPV) }},
	{"tpv_std", func(r valuation.Result) string { return num(r.TPVStd) }},
	{"tpv_ci_lower", func(r valuation.Result) string { return num(r.TPVLower) }},
	{"tpv_ci_upper", func(r valuation.Result) string { return num(r.TPVUpper) }},
	{"prob_strong_participate", func(r valuation.Result) string { return prob(r.Probabilities.StrongParticipate) }},
	{"prob_participate", func(r valuation.Result) string { return prob(r.Probabilities.Participate) }},
	{"prob_conditional", func(r valuation.Result) string { return prob(r.Probabilities.Conditional) }},
	{"prob_reject", func(r valuation.Result) string { return prob(r.Probabilities.Reject) }},
	{"decision_robustness", func(r valuation.Result) string { return prob(r.Robustness) }},
	{"tpv_decision", func(r valuation.Result) string { return string(r.TPVDecision) }},
	{"decision_changed", func(r valuation.Result) string { return strconv.FormatBool(r.DecisionChanged) }},
	{"decision_direction", func(r valuation.Result) string { return string(r.Direction) }},
	{"tpv_npv_ratio", func(r valuation.Result) string {
		if r.TPVToNPV == nil {
			return ""
		}
		return num(*r.TPVToNPV)
	}},
	{"rov_cap_rate", func(r valuation.Result) string { return prob(r.CapRate) }},
	{"follow_on_active_rate", func(r valuation.Result) string { return prob(r.FollowOnActiveRate) }},
	{"iterations", func(r valuation.Result) string { return strconv.Itoa(r.Iterations) }},
	{"seed", func(r valuation.Result) string { return strconv.FormatUint(r.Seed, 10) }},
}

// OutputColumns lists the output table header in order.
func OutputColumns() []string {
	names := make([]string, len(outputColumns))
	for i, c := range outputColumns {
		names[i] = c.name
	}
	return names
}

// WriteResults writes one CSV row per result. An undefined TPV/NPV ratio is
// written as an empty cell.
func WriteResults(w io.Writer, results []valuation.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputColumns()); err != nil {
		return fmt.Errorf("tabular: write header: %w", err)
	}
	row := make([]string, len(outputColumns))
	for _, r := range results {
		for i, c := range outputColumns {
			row[i] = c.value(r)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("tabular: write %s: %w", r.ProjectID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("tabular: flush: %w", err)
	}
	return nil
}

// WriteJSONL writes each result as one JSON object per line, including the
// per-option standard deviations the CSV omits.
func WriteJSONL(w io.Writer, results []valuation.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("tabular: encode %s: %w", r.ProjectID, err)
		}
	}
	return nil
}
