package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joelkehle/bidvalue/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestReadProjectsAliases(t *testing.T) {
	items, err := ReadProjects(readFixture(t, "projects.csv"))
	require.NoError(t, err)
	require.Len(t, items, 10)

	for _, it := range items {
		require.NoError(t, it.Err, "line %d", it.Line)
		require.NoError(t, it.Input.Validate())
	}

	r01 := items[0]
	assert.Equal(t, 2, r01.Line)
	assert.Equal(t, valuation.Tier0Input{
		ProjectID:          "R01",
		ContractAmount:     520,
		InfraType:          valuation.InfraRoad,
		DesignPhase:        valuation.PhaseBasic,
		ContractDuration:   2.5,
		ProcurementType:    valuation.ProcurementOpen,
		ClientType:         valuation.ClientCentral,
		FirmSize:           valuation.FirmLarge,
		BIMYears:           8,
		SameTypeCount:      6,
		CurrentUtilization: 0.70,
	}, r01.Input)

	assert.Equal(t, valuation.ProcurementNegotiated, items[4].Input.ProcurementType)
	assert.Equal(t, valuation.ClientPublicCorp, items[2].Input.ClientType)
	assert.Equal(t, valuation.PhaseDetailed, items[7].Input.DesignPhase)
}

func TestReadProjectsRowErrors(t *testing.T) {
	items, err := ReadProjects(readFixture(t, "mixed.csv"))
	require.NoError(t, err)
	require.Len(t, items, 4, "blank lines are skipped")

	assert.NoError(t, items[0].Err)
	assert.Equal(t, 6, items[0].Input.SameTypeCount)

	var verr *valuation.ValidationError
	require.ErrorAs(t, items[1].Err, &verr)
	assert.Equal(t, "contract_amount", verr.Field)
	assert.Contains(t, items[1].Err.Error(), "line 3")

	require.ErrorAs(t, items[2].Err, &verr)
	assert.Equal(t, "infra_type", verr.Field)
	assert.Equal(t, 5, items[2].Line)

	// Decodes cleanly; range checks belong to the engine.
	assert.NoError(t, items[3].Err)
	assert.Error(t, items[3].Input.Validate())
}

func TestReadProjectsStructuralErrors(t *testing.T) {
	_, err := ReadProjects(strings.NewReader(""))
	assert.EqualError(t, err, "tabular: empty input")

	_, err = ReadProjects(strings.NewReader("project_id,contract_amount\nX,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "infra_type")
}

func sampleResult() valuation.Result {
	ratio := 0.97
	return valuation.Result{
		ProjectID:      "R01",
		ContractAmount: 520,
		InfraType:      valuation.InfraRoad,
		DesignPhase:    valuation.PhaseBasic,
		Iterations:     5000,
		Seed:           42,
		NPV:            48.9,
		NPVStd:         31.8,
		NPVDecision:    valuation.DecisionParticipate,
		Options: valuation.OptionStats{
			FollowOn: valuation.Stat{Mean: 1.25, Std: 4.1},
			Stage:    valuation.Stat{Mean: 42.12, Std: 0},
		},
		ROVGross: 54.2,
		ROVNet:   -1.4,
		TPV:      47.5,
		Probabilities: valuation.Probabilities{
			StrongParticipate: 0.2, Participate: 0.45, Conditional: 0.2, Reject: 0.15,
		},
		Robustness:      0.45,
		TPVDecision:     valuation.DecisionParticipate,
		Direction:       valuation.DirectionNoChange,
		TPVToNPV:        &ratio,
		CapRate:         0.02,
		DecisionChanged: false,
	}
}

func TestWriteResults(t *testing.T) {
	undefined := sampleResult()
	undefined.ProjectID = "R02"
	undefined.TPVToNPV = nil

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []valuation.Result{sampleResult(), undefined}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, OutputColumns(), rows[0])

	col := func(name string) int {
		for i, c := range rows[0] {
			if c == name {
				return i
			}
		}
		t.Fatalf("no column %s", name)
		return -1
	}
	assert.Equal(t, "R01", rows[1][col("project_id")])
	assert.Equal(t, "48.9000", rows[1][col("npv")])
	assert.Equal(t, "1.2500", rows[1][col("rov_follow_on")])
	assert.Equal(t, "Participate", rows[1][col("tpv_decision")])
	assert.Equal(t, "false", rows[1][col("decision_changed")])
	assert.Equal(t, "No Change", rows[1][col("decision_direction")])
	assert.Equal(t, "0.9700", rows[1][col("tpv_npv_ratio")])
	assert.Equal(t, "", rows[2][col("tpv_npv_ratio")])
}

func TestOutputColumnsCoverSchema(t *testing.T) {
	cols := OutputColumns()
	for _, want := range []string{
		"project_id", "contract_amount", "infra_type", "design_phase", "npv", "npv_std", "npv_decision",
		"rov_follow_on", "rov_capability", "rov_resource", "rov_abandonment", "rov_contract", "rov_switch", "rov_stage",
		"rov_gross", "interaction_adjustment", "risk_premium", "deferral_value", "rov_net",
		"tpv", "tpv_std", "tpv_ci_lower", "tpv_ci_upper",
		"prob_strong_participate", "prob_participate", "prob_conditional", "prob_reject",
		"decision_robustness", "tpv_decision", "decision_changed", "decision_direction",
	} {
		assert.Contains(t, cols, want)
	}
}

func TestWriteJSONL(t *testing.T) {
	undefined := sampleResult()
	undefined.TPVToNPV = nil

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, []valuation.Result{sampleResult(), undefined}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "R01", first["project_id"])
	assert.Equal(t, 0.97, first["tpv_npv_ratio"])
	options := first["options"].(map[string]any)
	assert.Equal(t, 4.1, options["follow_on"].(map[string]any)["std"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Nil(t, second["tpv_npv_ratio"])
	assert.Contains(t, second, "tpv_npv_ratio")
}
