package model

// Candidate is one concretely-parameterized fittable unit: a model
// family plus a fixed parameter assignment. Candidates are immutable
// once constructed and are consumed by the resampler by value.
type Candidate struct {
	id      string
	Learner Learner
	Params  Params
}

// NewCandidate builds a candidate. The identifier is derived from the
// learner name and the canonical parameter key, so two candidates with
// the same family and assignment share an identifier.
func NewCandidate(l Learner, p Params) Candidate {
	id := l.Info().Name
	if key := p.Key(); key != "" {
		id += "{" + key + "}"
	}
	return Candidate{id: id, Learner: l, Params: p.Clone()}
}

// ID returns the candidate's stable identifier.
func (c Candidate) ID() string { return c.id }

// Supports reports whether the candidate's learner supports kind.
func (c Candidate) Supports(kind ResponseKind) bool {
	return c.Learner.Info().Supports(kind)
}

// Fit trains the candidate's learner with its fixed parameters.
func (c Candidate) Fit(ds Dataset) (Fitted, error) {
	return c.Learner.Fit(ds, c.Params)
}
