package valuation

import "fmt"

// DecisionThresholds parameterizes TPV categorization. Multiples are applied
// to the mean NPV; floors are absolute amounts in the input currency unit.
type DecisionThresholds struct {
	StrongMultiple      float64 `yaml:"strong_multiple" json:"strong_multiple"`
	ParticipateMultiple float64 `yaml:"participate_multiple" json:"participate_multiple"`
	ConditionalMultiple float64 `yaml:"conditional_multiple" json:"conditional_multiple"`
	StrongFloor         float64 `yaml:"strong_floor" json:"strong_floor"`
	ParticipateFloor    float64 `yaml:"participate_floor" json:"participate_floor"`
}

// DefaultThresholds are calibrated for amounts in millions.
func DefaultThresholds() DecisionThresholds {
	return DecisionThresholds{
		StrongMultiple:      1.5,
		ParticipateMultiple: 1.05,
		ConditionalMultiple: 0.80,
		StrongFloor:         30,
		ParticipateFloor:    10,
	}
}

func (t DecisionThresholds) Validate() error {
	if !(t.StrongMultiple >= t.ParticipateMultiple && t.ParticipateMultiple >= t.ConditionalMultiple && t.ConditionalMultiple > 0) {
		return fmt.Errorf("decision multiples must satisfy strong >= participate >= conditional > 0, got %v/%v/%v",
			t.StrongMultiple, t.ParticipateMultiple, t.ConditionalMultiple)
	}
	if !(t.StrongFloor >= t.ParticipateFloor && t.ParticipateFloor >= 0) {
		return fmt.Errorf("decision floors must satisfy strong >= participate >= 0, got %v/%v",
			t.StrongFloor, t.ParticipateFloor)
	}
	return nil
}

// Classify assigns one TPV draw to exactly one category. Bands are tested in
// order, so a draw matching several is counted once, in the highest.
func (t DecisionThresholds) Classify(tpv, meanNPV float64) Decision {
	if tpv <= 0 {
		return DecisionReject
	}
	strongRel := t.StrongMultiple * meanNPV
	partRel := t.ParticipateMultiple * meanNPV
	condRel := t.ConditionalMultiple * meanNPV

	switch {
	case tpv > strongRel && tpv > t.StrongFloor:
		return DecisionStrongParticipate
	case (tpv > partRel && tpv <= strongRel) || (tpv > t.ParticipateFloor && tpv <= t.StrongFloor):
		return DecisionParticipate
	case (tpv > condRel && tpv <= partRel) || tpv <= t.ParticipateFloor:
		return DecisionConditional
	default:
		return DecisionReject
	}
}

type Probabilities struct {
	StrongParticipate float64 `json:"prob_strong_participate"`
	Participate       float64 `json:"prob_participate"`
	Conditional       float64 `json:"prob_conditional"`
	Reject            float64 `json:"prob_reject"`
}

func (p Probabilities) Sum() float64 {
	return p.StrongParticipate + p.Participate + p.Conditional + p.Reject
}

// Dominant returns the most likely category and its probability. Ties go to
// the more favourable category.
func (p Probabilities) Dominant() (Decision, float64) {
	best, prob := DecisionStrongParticipate, p.StrongParticipate
	for _, c := range []struct {
		d Decision
		p float64
	}{
		{DecisionParticipate, p.Participate},
		{DecisionConditional, p.Conditional},
		{DecisionReject, p.Reject},
	} {
		if c.p > prob {
			best, prob = c.d, c.p
		}
	}
	return best, prob
}

// Leaning collapses the four categories into Participate, Reject or
// Conditional when neither side holds a majority.
func (p Probabilities) Leaning() Decision {
	switch {
	case p.StrongParticipate+p.Participate > 0.5:
		return DecisionParticipate
	case p.Reject > 0.5:
		return DecisionReject
	default:
		return DecisionConditional
	}
}

func classifyAll(t DecisionThresholds, tpvs []float64, meanNPV float64) Probabilities {
	var counts [4]int
	for _, v := range tpvs {
		switch t.Classify(v, meanNPV) {
		case DecisionStrongParticipate:
			counts[0]++
		case DecisionParticipate:
			counts[1]++
		case DecisionConditional:
			counts[2]++
		default:
			counts[3]++
		}
	}
	n := float64(len(tpvs))
	if n == 0 {
		return Probabilities{}
	}
	return Probabilities{
		StrongParticipate: float64(counts[0]) / n,
		Participate:       float64(counts[1]) / n,
		Conditional:       float64(counts[2]) / n,
		Reject:            float64(counts[3]) / n,
	}
}

func npvDecision(meanNPV float64) Decision {
	if meanNPV >= 0 {
		return DecisionParticipate
	}
	return DecisionReject
}

// compareDecisions reports whether the option-adjusted view disagrees with
// the NPV-only call, and in which direction.
func compareDecisions(npvCall Decision, p Probabilities) (bool, Direction) {
	leaning := p.Leaning()
	changed := npvCall != leaning
	switch {
	case npvCall == DecisionReject && leaning == DecisionParticipate:
		return changed, DirectionUp
	case npvCall == DecisionParticipate && leaning == DecisionReject:
		return changed, DirectionDown
	default:
		return changed, DirectionNoChange
	}
}
