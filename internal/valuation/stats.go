package valuation

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// moments is a running count, mean and sum of squared deviations
// (Welford). Two moments combine exactly with merge.
type moments struct {
	n    int
	mean float64
	m2   float64
}

func (m *moments) add(x float64) {
	m.n++
	d := x - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (x - m.mean)
}

func (m moments) merge(o moments) moments {
	switch {
	case m.n == 0:
		return o
	case o.n == 0:
		return m
	}
	n := m.n + o.n
	d := o.mean - m.mean
	return moments{
		n:    n,
		mean: m.mean + d*float64(o.n)/float64(n),
		m2:   m.m2 + o.m2 + d*d*float64(m.n)*float64(o.n)/float64(n),
	}
}

// std is the population standard deviation.
func (m moments) std() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(max(m.m2, 0) / float64(m.n))
}

func (m moments) stat() Stat {
	return Stat{Mean: m.mean, Std: m.std()}
}

const (
	numOptions     = 7
	numAdjustments = 3
)

// accumulator collects one partition's iterations. TPV draws are retained
// because category thresholds depend on the mean NPV over all partitions.
type accumulator struct {
	npv      moments
	tpv      moments
	rovGross moments
	rovNet   moments
	options  [numOptions]moments
	adjust   [numAdjustments]moments

	capped         int
	followOnActive int

	tpvs []float64
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{tpvs: make([]float64, 0, capacity)}
}

func (a *accumulator) add(npv float64, v OptionValuation) {
	tpv := npv + v.Net
	a.npv.add(npv)
	a.tpv.add(tpv)
	a.rovGross.add(v.Gross)
	a.rovNet.add(v.Net)

	o := v.Options
	for i, x := range [numOptions]float64{o.FollowOn, o.Capability, o.Resource, o.Abandonment, o.Contract, o.Switch, o.Stage} {
		a.options[i].add(x)
	}
	adj := v.Adjustments
	for i, x := range [numAdjustments]float64{adj.Interaction, adj.RiskPremium, adj.Deferral} {
		a.adjust[i].add(x)
	}

	if v.Capped {
		a.capped++
	}
	if o.FollowOn > 0 {
		a.followOnActive++
	}
	a.tpvs = append(a.tpvs, tpv)
}

// merge combines two partitions. It is associative; TPV draw order differs
// with grouping but nothing downstream depends on it.
func (a *accumulator) merge(o *accumulator) *accumulator {
	out := &accumulator{
		npv:            a.npv.merge(o.npv),
		tpv:            a.tpv.merge(o.tpv),
		rovGross:       a.rovGross.merge(o.rovGross),
		rovNet:         a.rovNet.merge(o.rovNet),
		capped:         a.capped + o.capped,
		followOnActive: a.followOnActive + o.followOnActive,
		tpvs:           slices.Concat(a.tpvs, o.tpvs),
	}
	for i := range out.options {
		out.options[i] = a.options[i].merge(o.options[i])
	}
	for i := range out.adjust {
		out.adjust[i] = a.adjust[i].merge(o.adjust[i])
	}
	return out
}

func (a *accumulator) count() int { return a.npv.n }

// percentiles returns the requested quantiles of the retained TPV draws.
func (a *accumulator) percentiles(ps ...float64) []float64 {
	sorted := slices.Clone(a.tpvs)
	slices.Sort(sorted)
	out := make([]float64, len(ps))
	if len(sorted) == 0 {
		return out
	}
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.LinInterp, sorted, nil)
	}
	return out
}
