package valuation

// Structural model constants. These are literature-derived and fixed; only the
// decision thresholds (see DecisionThresholds) are runtime configuration.

const (
	MinSimulations     = 100
	MaxSimulations     = 100000
	DefaultSimulations = 5000
)

// Tier 1 derivation.
const (
	largeProjectThreshold = 500.0
	bimSaturationYears    = 10.0
	strategicFitFloor     = 0.40
	strategicFitCeiling   = 0.95
	strategicFitRefCount  = 10
	followOnRangeSpread   = 0.15

	defaultClientReliability = 0.85
	defaultCostRatioBase     = 0.92
)

var typeComplexity = map[InfraType]float64{
	InfraRoad:   0.60,
	InfraBridge: 0.85,
	InfraTunnel: 1.00,
}

// escalatedComplexity is the one-step-up complexity used above largeProjectThreshold.
var escalatedComplexity = map[InfraType]float64{
	InfraRoad:   0.85,
	InfraBridge: 1.00,
	InfraTunnel: 1.15,
}

var baseVolatility = map[InfraType]float64{
	InfraRoad:   0.22,
	InfraBridge: 0.35,
	InfraTunnel: 0.42,
}

var designFlexibility = map[InfraType]float64{
	InfraRoad:   1.00,
	InfraBridge: 0.65,
	InfraTunnel: 0.48,
}

var milestoneCount = map[InfraType]int{
	InfraRoad:   3,
	InfraBridge: 3,
	InfraTunnel: 4,
}

// followOnMultiplierBase is the detailed-to-basic design fee ratio.
var followOnMultiplierBase = map[InfraType]float64{
	InfraRoad:   1.67,
	InfraBridge: 1.84,
	InfraTunnel: 1.84,
}

// followOnRealization is the share of follow-on stages not re-tendered separately.
var followOnRealization = map[InfraType]float64{
	InfraRoad:   0.25,
	InfraBridge: 0.42,
	InfraTunnel: 0.55,
}

var competitionByProcurement = map[ProcurementType]CompetitionDistribution{
	ProcurementOpen:       {Mean: 0.72, Std: 0.14},
	ProcurementLimited:    {Mean: 0.48, Std: 0.10},
	ProcurementNegotiated: {Mean: 0.21, Std: 0.04},
}

var clientReliability = map[ClientType]float64{
	ClientCentral:    0.92,
	ClientPublicCorp: 0.88,
	ClientLocal:      0.81,
}

var costRatioBase = map[FirmSize]float64{
	FirmLarge:  0.87,
	FirmMedium: 0.92,
	FirmSmall:  0.97,
}

var (
	followOnBetaBasic    = BetaShape{Alpha: 4, Beta: 2}
	followOnBetaDetailed = BetaShape{Alpha: 1.5, Beta: 4}
)

// Tier 2 sampling bounds and noise.
const (
	costRatioMin            = 0.75
	costRatioMax            = 1.05
	competitionPenaltyScale = 0.10
	detailedPhasePenalty    = 0.03

	alignmentMin    = 0.30
	alignmentMax    = 0.95
	alignmentSpread = 0.15

	attractivenessMin  = 0.35
	attractivenessMode = 0.55
	attractivenessMax  = 0.75

	volatilityMin        = 0.05
	volatilityMax        = 1.00
	volatilityNoiseScale = 0.18

	capabilityMin   = 0.30
	capabilityMax   = 1.00
	capabilityNoise = 0.05

	utilizationMin   = 0.40
	utilizationMax   = 0.95
	utilizationNoise = 0.05

	complexityMin   = 0.10
	complexityMax   = 1.20
	complexityNoise = 0.08
)

// Option valuation.
const (
	riskFreeRate              = 0.035
	competitionDiscountWeight = 0.25

	followOnProbGate        = 0.5
	followOnAlignmentGate   = 0.4
	alignmentPenaltyPivot   = 0.50
	alignmentPenaltyRate    = 0.15
	capabilityThreshold     = 0.60
	learningCostRate        = 0.20
	learningBenefitRate     = 0.10
	capabilityGrowthRate    = 0.10
	capabilityCurveExponent = 1.5

	overloadThreshold       = 0.80
	overloadCostRate        = 0.15
	resourceUtilizationRate = 0.06

	abandonmentLossRate       = 0.02
	abandonmentNPVFloor       = 0.15
	abandonmentAlignmentFloor = 0.30
	completionCheckpoint      = 0.45
	progressPaymentRecovery   = 0.80
	reallocationRate          = 0.50

	adverseCostThreshold    = 0.85
	adverseCostScale        = 2.0
	contractFlexibilityRate = 0.05

	switchComplexityWeight = 0.5
	switchMobilityRate     = 0.04

	stageInformationHorizon = 2.0
	stageCheckpointValue    = 0.03

	riskPremiumBase       = 0.15
	riskPremiumVolatility = 0.30
	riskPremiumComplexity = 0.10

	deferralMultiplier = 0.18

	rovCapEnabled = true
)

// ROVCapRatio bounds net option value at this multiple of |NPV|.
const ROVCapRatio = 0.80

// interactionRate grows with the number of options currently in the money.
func interactionRate(active int) float64 {
	var rate float64
	switch {
	case active >= 6:
		rate = 0.22 + float64(active-6)*0.04
	case active >= 4:
		rate = 0.15 + float64(active-4)*0.035
	default:
		rate = 0.08 + float64(active)*0.023
	}
	return min(rate, 0.30)
}
