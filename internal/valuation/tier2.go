package valuation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tier2Sample is one stochastic realization of the uncertain model inputs.
type Tier2Sample struct {
	CostRatio                 float64
	FollowOnProb              float64
	FollowOnMultiplier        float64
	StrategicAlignment        float64
	AlternativeAttractiveness float64
	Volatility                float64
	CapabilityLevel           float64
	ResourceUtilization       float64
	CompetitionLevel          float64
	Complexity                float64

	MilestoneCount    int
	TimeToDecision    float64
	HasFollowOn       bool
	InfraType         InfraType
	DesignFlexibility float64
}

// Sampler draws Tier2 samples from a source it owns exclusively. A Sampler is
// not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	src rand.Source
	rng *rand.Rand
}

func NewSampler(src rand.Source) *Sampler {
	return &Sampler{src: src, rng: rand.New(src)}
}

// NewSeededSampler returns a sampler on a PCG stream.
func NewSeededSampler(seed, stream uint64) *Sampler {
	return NewSampler(rand.NewPCG(seed, stream))
}

// Sample draws one realization. Every field is clipped to its support before
// returning; invalid parameters yield a *SamplingError.
func (s *Sampler) Sample(p Tier1Parameters) (Tier2Sample, error) {
	if err := checkTier1(p); err != nil {
		return Tier2Sample{}, err
	}

	out := Tier2Sample{
		MilestoneCount:    p.MilestoneCount,
		TimeToDecision:    p.TimeToDecision,
		HasFollowOn:       p.HasFollowOn,
		InfraType:         p.InfraType,
		DesignFlexibility: p.DesignFlexibility,
	}

	// Competition and complexity come first: cost ratio and volatility depend on them.
	out.CompetitionLevel = clamp(s.normal(p.Competition.Mean, p.Competition.Std), 0, 1)
	out.Complexity = clamp(p.ComplexityBase+s.normal(0, complexityNoise), complexityMin, complexityMax)

	mode := p.CostRatioBase + competitionPenaltyScale*out.CompetitionLevel
	if p.DesignPhase == PhaseDetailed {
		mode += detailedPhasePenalty
	}
	mode = clamp(mode, costRatioMin, costRatioMax)
	out.CostRatio = clamp(s.triangle(costRatioMin, mode, costRatioMax), costRatioMin, costRatioMax)

	if p.HasFollowOn {
		beta := distuv.Beta{Alpha: p.FollowOnBeta.Alpha, Beta: p.FollowOnBeta.Beta, Src: s.src}
		out.FollowOnProb = clamp(beta.Rand(), 0, 1)
		r := p.FollowOnMultiplierRange
		out.FollowOnMultiplier = clamp(distuv.Uniform{Min: r.Low, Max: r.High, Src: s.src}.Rand(), 0, r.High)
	}

	fit := p.StrategicFit
	lo := max(alignmentMin, fit-alignmentSpread)
	hi := min(alignmentMax, fit+alignmentSpread)
	out.StrategicAlignment = clamp(s.triangle(lo, clamp(fit, lo, hi), hi), alignmentMin, alignmentMax)

	out.AlternativeAttractiveness = clamp(
		s.triangle(attractivenessMin, attractivenessMode, attractivenessMax),
		attractivenessMin, attractivenessMax)

	sigma0 := p.BaseVolatility
	scaled := sigma0 * (1 + (out.Complexity-p.TypeComplexity)/p.TypeComplexity)
	out.Volatility = clamp(scaled+s.normal(0, volatilityNoiseScale*sigma0), volatilityMin, volatilityMax)

	out.CapabilityLevel = clamp(p.BIMExpertise+s.uniform(-capabilityNoise, capabilityNoise), capabilityMin, capabilityMax)
	out.ResourceUtilization = clamp(
		1-p.IdleResourceRatio+s.uniform(-utilizationNoise, utilizationNoise),
		utilizationMin, utilizationMax)

	return out, nil
}

func (s *Sampler) normal(mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

func (s *Sampler) triangle(lo, mode, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return distuv.NewTriangle(lo, hi, mode, s.src).Rand()
}

func checkTier1(p Tier1Parameters) error {
	switch {
	case p.Competition.Std < 0 || math.IsNaN(p.Competition.Std):
		return &SamplingError{Param: "competition_distribution.std", Value: p.Competition.Std}
	case math.IsNaN(p.Competition.Mean):
		return &SamplingError{Param: "competition_distribution.mean", Value: p.Competition.Mean}
	case !(p.TypeComplexity > 0):
		return &SamplingError{Param: "type_complexity", Value: p.TypeComplexity}
	case !(p.BaseVolatility >= 0):
		return &SamplingError{Param: "base_volatility", Value: p.BaseVolatility}
	case math.IsNaN(p.CostRatioBase):
		return &SamplingError{Param: "cost_ratio_base", Value: p.CostRatioBase}
	case math.IsNaN(p.StrategicFit):
		return &SamplingError{Param: "strategic_fit", Value: p.StrategicFit}
	}
	if p.HasFollowOn {
		switch {
		case !(p.FollowOnBeta.Alpha > 0) || !(p.FollowOnBeta.Beta > 0):
			return &SamplingError{Param: "follow_on_beta_params", Value: p.FollowOnBeta}
		case !(p.FollowOnMultiplierRange.Low >= 0) || p.FollowOnMultiplierRange.High < p.FollowOnMultiplierRange.Low:
			return &SamplingError{Param: "follow_on_multiplier_range", Value: p.FollowOnMultiplierRange}
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
