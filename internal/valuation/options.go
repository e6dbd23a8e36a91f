package valuation

import "math"

// OptionValues holds the seven option values for one iteration. Any of them
// may be negative.
type OptionValues struct {
	FollowOn    float64 `json:"follow_on"`
	Capability  float64 `json:"capability"`
	Resource    float64 `json:"resource"`
	Abandonment float64 `json:"abandonment"`
	Contract    float64 `json:"contract"`
	Switch      float64 `json:"switch"`
	Stage       float64 `json:"stage"`
}

func (o OptionValues) Gross() float64 {
	return o.FollowOn + o.Capability + o.Resource + o.Abandonment + o.Contract + o.Switch + o.Stage
}

// Active counts options that are in the money.
func (o OptionValues) Active() int {
	n := 0
	for _, v := range [...]float64{o.FollowOn, o.Capability, o.Resource, o.Abandonment, o.Contract, o.Switch, o.Stage} {
		if v > 0 {
			n++
		}
	}
	return n
}

// Adjustments are the non-negative charges deducted from gross option value.
type Adjustments struct {
	Interaction float64 `json:"interaction"`
	RiskPremium float64 `json:"risk_premium"`
	Deferral    float64 `json:"deferral"`
}

type OptionValuation struct {
	Options     OptionValues
	Adjustments Adjustments
	Gross       float64
	NetRaw      float64
	Net         float64
	Capped      bool
}

// NPV is the stage-one margin for a sampled cost ratio.
func NPV(contract float64, s Tier2Sample) float64 {
	return contract * (1 - s.CostRatio)
}

// ValueOptions prices the seven options and three adjustments for one
// sample. It is deterministic in its arguments.
func ValueOptions(contract float64, p Tier1Parameters, s Tier2Sample) OptionValuation {
	npv := NPV(contract, s)
	discount := 1 - competitionDiscountWeight*s.CompetitionLevel

	opts := OptionValues{
		FollowOn:    followOnOption(contract, npv, p, s, discount),
		Capability:  capabilityOption(contract, s) * discount,
		Resource:    resourceOption(contract, s) * discount,
		Abandonment: abandonmentOption(contract, npv, s),
		Contract:    contract * s.DesignFlexibility * adverseCostSignal(s.CostRatio) * contractFlexibilityRate,
		Switch:      contract * (1 - switchComplexityWeight*s.Complexity) * s.AlternativeAttractiveness * switchMobilityRate,
		Stage:       contract * float64(s.MilestoneCount) * min(s.TimeToDecision, stageInformationHorizon) / stageInformationHorizon * stageCheckpointValue,
	}
	gross := opts.Gross()

	var adj Adjustments
	adj.Interaction = max(gross, 0) * interactionRate(opts.Active())
	afterInteraction := gross - adj.Interaction
	adj.RiskPremium = max(afterInteraction, 0) *
		(riskPremiumBase + riskPremiumVolatility*s.Volatility + riskPremiumComplexity*s.Complexity)
	market := s.AlternativeAttractiveness * (1 + s.ResourceUtilization)
	adj.Deferral = contract * (1 - s.StrategicAlignment) * market * deferralMultiplier * math.Sqrt(s.TimeToDecision)

	v := OptionValuation{
		Options:     opts,
		Adjustments: adj,
		Gross:       gross,
		NetRaw:      afterInteraction - adj.RiskPremium - adj.Deferral,
	}
	v.Net = v.NetRaw
	if ceiling := ROVCapRatio * math.Abs(npv); rovCapEnabled && v.NetRaw > ceiling {
		v.Net = ceiling
		v.Capped = true
	}
	return v
}

// followOnOption is a compound option on the next design stage. It is only
// exercised when stage one is profitable, the follow-on is likely and the
// work is strategically aligned.
func followOnOption(contract, npv float64, p Tier1Parameters, s Tier2Sample, discount float64) float64 {
	if !s.HasFollowOn || s.FollowOnProb <= 0 {
		return 0
	}
	if npv <= 0 || s.FollowOnProb <= followOnProbGate || s.StrategicAlignment <= followOnAlignmentGate {
		return 0
	}
	s2 := contract * s.FollowOnMultiplier * s.FollowOnProb
	k2 := contract * s.FollowOnMultiplier * s.CostRatio

	intrinsic := max(s2-k2, 0)
	if s.StrategicAlignment < alignmentPenaltyPivot {
		// Misaligned follow-on work carries a real cost and may go negative.
		intrinsic = (s2 - k2) - (alignmentPenaltyPivot-s.StrategicAlignment)*contract*alignmentPenaltyRate
	}
	decay := math.Exp(-riskFreeRate * p.TimeToDecision)
	return intrinsic * decay * followOnRealization[s.InfraType] * discount
}

func capabilityOption(contract float64, s Tier2Sample) float64 {
	scale := contract * s.Complexity
	if s.CapabilityLevel < capabilityThreshold {
		cost := scale * (capabilityThreshold - s.CapabilityLevel) * learningCostRate
		benefit := scale * s.CapabilityLevel * learningBenefitRate
		return benefit - cost
	}
	return scale * capabilityGrowthRate * (1 - math.Pow(s.CapabilityLevel, capabilityCurveExponent))
}

func resourceOption(contract float64, s Tier2Sample) float64 {
	u := s.ResourceUtilization
	if u > overloadThreshold {
		overload := (u - overloadThreshold) * contract * overloadCostRate
		idle := contract * (1 - u) * resourceUtilizationRate
		return idle - overload
	}
	return contract * (1 - u) * resourceUtilizationRate * s.Complexity
}

// abandonmentOption costs the firm when the project is already profitable.
func abandonmentOption(contract, npv float64, s Tier2Sample) float64 {
	if npv > 0 {
		return -contract * abandonmentLossRate
	}
	if npv < contract*abandonmentNPVFloor || s.StrategicAlignment < abandonmentAlignmentFloor {
		salvage := contract * completionCheckpoint * progressPaymentRecovery
		realloc := contract * (1 - completionCheckpoint) * s.ResourceUtilization * reallocationRate
		return max(salvage+realloc-contract*completionCheckpoint, 0)
	}
	return 0
}

func adverseCostSignal(costRatio float64) float64 {
	return adverseCostScale * max(0, costRatio-adverseCostThreshold)
}
