package valuation

import "math"

// Stat is a mean and population standard deviation over all iterations.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

type OptionStats struct {
	FollowOn    Stat `json:"follow_on"`
	Capability  Stat `json:"capability"`
	Resource    Stat `json:"resource"`
	Abandonment Stat `json:"abandonment"`
	Contract    Stat `json:"contract"`
	Switch      Stat `json:"switch"`
	Stage       Stat `json:"stage"`
}

type AdjustmentStats struct {
	Interaction Stat `json:"interaction"`
	RiskPremium Stat `json:"risk_premium"`
	Deferral    Stat `json:"deferral"`
}

// Result is the aggregated valuation of one project. It is a plain value and
// belongs to the caller.
type Result struct {
	ProjectID      string      `json:"project_id"`
	ContractAmount float64     `json:"contract_amount"`
	InfraType      InfraType   `json:"infra_type"`
	DesignPhase    DesignPhase `json:"design_phase"`
	HasFollowOn    bool        `json:"has_follow_on"`

	Iterations int    `json:"iterations"`
	Workers    int    `json:"workers"`
	Seed       uint64 `json:"seed"`

	NPV         float64  `json:"npv"`
	NPVStd      float64  `json:"npv_std"`
	NPVDecision Decision `json:"npv_decision"`

	Options     OptionStats     `json:"options"`
	Adjustments AdjustmentStats `json:"adjustments"`
	ROVGross    float64         `json:"rov_gross"`
	ROVNet      float64         `json:"rov_net"`

	TPV      float64 `json:"tpv"`
	TPVStd   float64 `json:"tpv_std"`
	TPVLower float64 `json:"tpv_ci_lower"`
	TPVUpper float64 `json:"tpv_ci_upper"`

	Probabilities   Probabilities `json:"probabilities"`
	Robustness      float64       `json:"decision_robustness"`
	TPVDecision     Decision      `json:"tpv_decision"`
	DecisionChanged bool          `json:"decision_changed"`
	Direction       Direction     `json:"decision_direction"`

	// TPVToNPV is nil when the mean NPV is too close to zero for the ratio
	// to mean anything.
	TPVToNPV           *float64 `json:"tpv_npv_ratio"`
	CapRate            float64  `json:"rov_cap_rate"`
	FollowOnActiveRate float64  `json:"follow_on_active_rate"`
}

const ratioEpsilon = 1e-9

func ratio(num, den float64) *float64 {
	if math.Abs(den) < ratioEpsilon {
		return nil
	}
	r := num / den
	return &r
}

func buildResult(in Tier0Input, p Tier1Parameters, acc *accumulator, t DecisionThresholds) Result {
	n := acc.count()
	meanNPV := acc.npv.mean
	probs := classifyAll(t, acc.tpvs, meanNPV)
	dominant, robustness := probs.Dominant()
	npvCall := npvDecision(meanNPV)
	changed, direction := compareDecisions(npvCall, probs)
	bounds := acc.percentiles(0.05, 0.95)

	return Result{
		ProjectID:      in.ProjectID,
		ContractAmount: in.ContractAmount,
		InfraType:      in.InfraType,
		DesignPhase:    in.DesignPhase,
		HasFollowOn:    p.HasFollowOn,
		Iterations:     n,

		NPV:         meanNPV,
		NPVStd:      acc.npv.std(),
		NPVDecision: npvCall,

		Options: OptionStats{
			FollowOn:    acc.options[0].stat(),
			Capability:  acc.options[1].stat(),
			Resource:    acc.options[2].stat(),
			Abandonment: acc.options[3].stat(),
			Contract:    acc.options[4].stat(),
			Switch:      acc.options[5].stat(),
			Stage:       acc.options[6].stat(),
		},
		Adjustments: AdjustmentStats{
			Interaction: acc.adjust[0].stat(),
			RiskPremium: acc.adjust[1].stat(),
			Deferral:    acc.adjust[2].stat(),
		},
		ROVGross: acc.rovGross.mean,
		ROVNet:   acc.rovNet.mean,

		TPV:      acc.tpv.mean,
		TPVStd:   acc.tpv.std(),
		TPVLower: bounds[0],
		TPVUpper: bounds[1],

		Probabilities:   probs,
		Robustness:      robustness,
		TPVDecision:     dominant,
		DecisionChanged: changed,
		Direction:       direction,

		TPVToNPV:           ratio(acc.tpv.mean, meanNPV),
		CapRate:            float64(acc.capped) / float64(n),
		FollowOnActiveRate: float64(acc.followOnActive) / float64(n),
	}
}
