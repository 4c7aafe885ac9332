package reveal

// AgentSteps is the number of stages in the therapy recommendation run.
const AgentSteps = 4

// Progress marks how far the multi-agent sequence has advanced.
type Progress struct {
	Step  int
	Total int
}

// NewProgress returns a marker at step 0 of total.
func NewProgress(total int) Progress {
	return Progress{Total: total}
}

// Advance moves to the next step, stopping at Total.
func (p *Progress) Advance() {
	if p.Step < p.Total {
		p.Step++
	}
}

// Fraction returns Step/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Step) / float64(p.Total)
}

// Percent returns the completed share as a whole percentage, rounded down.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Step * 100 / p.Total
}

// Done reports whether every step has been reached.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Step >= p.Total
}
