package valuation

import "math"

type CompetitionDistribution struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

type BetaShape struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Tier1Parameters are the deterministic structural parameters derived once
// per project from its Tier0Input.
type Tier1Parameters struct {
	InfraType   InfraType   `json:"infra_type"`
	DesignPhase DesignPhase `json:"design_phase"`

	HasFollowOn             bool      `json:"has_follow_on"`
	FollowOnMultiplierRange Range     `json:"follow_on_multiplier_range"`
	FollowOnBeta            BetaShape `json:"follow_on_beta_params"`

	ComplexityBase float64 `json:"complexity_base"`
	// TypeComplexity is the unescalated complexity of the infrastructure type;
	// volatility scales with the sampled complexity's deviation from it.
	TypeComplexity    float64 `json:"type_complexity"`
	BaseVolatility    float64 `json:"base_volatility"`
	DesignFlexibility float64 `json:"design_flexibility"`

	Competition       CompetitionDistribution `json:"competition_distribution"`
	MilestoneCount    int                     `json:"milestone_count"`
	ClientReliability float64                 `json:"client_reliability"`
	CostRatioBase     float64                 `json:"cost_ratio_base"`
	BIMExpertise      float64                 `json:"bim_expertise"`
	StrategicFit      float64                 `json:"strategic_fit"`
	IdleResourceRatio float64                 `json:"idle_resource_ratio"`
	TimeToDecision    float64                 `json:"time_to_decision"`
}

// DeriveTier1 maps a validated input to its structural parameters. It is pure:
// equal inputs always give equal outputs.
func DeriveTier1(in Tier0Input) (Tier1Parameters, error) {
	if err := in.Validate(); err != nil {
		return Tier1Parameters{}, err
	}

	p := Tier1Parameters{
		InfraType:         in.InfraType,
		DesignPhase:       in.DesignPhase,
		HasFollowOn:       in.DesignPhase == PhaseBasic,
		TypeComplexity:    typeComplexity[in.InfraType],
		ComplexityBase:    typeComplexity[in.InfraType],
		BaseVolatility:    baseVolatility[in.InfraType],
		DesignFlexibility: designFlexibility[in.InfraType],
		Competition:       competitionByProcurement[in.ProcurementType],
		MilestoneCount:    milestoneCount[in.InfraType],
		ClientReliability: lookupOr(clientReliability, in.ClientType, defaultClientReliability),
		CostRatioBase:     lookupOr(costRatioBase, in.FirmSize, defaultCostRatioBase),
		BIMExpertise:      bimExpertise(in.BIMYears),
		StrategicFit:      strategicFit(in.SameTypeCount),
		IdleResourceRatio: 1 - in.CurrentUtilization,
		TimeToDecision:    in.ContractDuration,
	}
	if in.ContractAmount > largeProjectThreshold {
		p.ComplexityBase = escalatedComplexity[in.InfraType]
	}

	if p.HasFollowOn {
		base := followOnMultiplierBase[in.InfraType]
		p.FollowOnMultiplierRange = Range{
			Low:  base * (1 - followOnRangeSpread),
			High: base * (1 + followOnRangeSpread),
		}
		p.FollowOnBeta = followOnBetaBasic
	} else {
		// The sampler pins probability and multiplier to zero without a
		// follow-on stage; the shape is kept for reporting only.
		p.FollowOnBeta = followOnBetaDetailed
	}
	return p, nil
}

func bimExpertise(years int) float64 {
	if float64(years) >= bimSaturationYears {
		return 1
	}
	return math.Log1p(float64(years)) / math.Log1p(bimSaturationYears)
}

func strategicFit(sameTypeCount int) float64 {
	n := min(sameTypeCount, strategicFitRefCount)
	return strategicFitFloor + (strategicFitCeiling-strategicFitFloor)*float64(n)/strategicFitRefCount
}

func lookupOr[K comparable](m map[K]float64, k K, fallback float64) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	return fallback
}
