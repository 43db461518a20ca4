package model

// ResponseKind classifies the observed response of a dataset. The engine
// only needs the kind to pick default metrics and to check a candidate's
// declared support; deeper type inference lives outside the core.
type ResponseKind int

const (
	// Numeric is a continuous response.
	Numeric ResponseKind = iota
	// Class is a categorical response with integer-coded labels.
	Class
	// Survival is a right-censored time-to-event response.
	Survival
)

// String returns the lower-case name of the response kind.
func (k ResponseKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Class:
		return "class"
	case Survival:
		return "survival"
	default:
		return "unknown"
	}
}

// KindNames returns the names of the given kinds, for error messages.
func KindNames(kinds []ResponseKind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// Response holds the observed response values of a dataset.
//
// For Numeric responses Values carries the observations. For Class
// responses Labels carries integer-coded class labels in [0, NumClasses).
// For Survival responses Values carries follow-up times and Events marks
// which cases experienced the event (false means censored).
type Response struct {
	Kind       ResponseKind
	Values     []float64
	Labels     []int
	Events     []bool
	NumClasses int
}

// NumericResponse builds a continuous response.
func NumericResponse(values []float64) Response {
	return Response{Kind: Numeric, Values: values}
}

// ClassResponse builds a categorical response from integer-coded labels.
func ClassResponse(labels []int, numClasses int) Response {
	return Response{Kind: Class, Labels: labels, NumClasses: numClasses}
}

// SurvivalResponse builds a right-censored time-to-event response.
func SurvivalResponse(times []float64, events []bool) Response {
	return Response{Kind: Survival, Values: times, Events: events}
}

// Len returns the number of cases in the response.
func (r Response) Len() int {
	if r.Kind == Class {
		return len(r.Labels)
	}
	return len(r.Values)
}

// Subset returns the response restricted to the given case indices.
// Indices may repeat, so bootstrap multiset draws are representable.
func (r Response) Subset(idx []int) Response {
	out := Response{Kind: r.Kind, NumClasses: r.NumClasses}
	if r.Values != nil {
		out.Values = make([]float64, len(idx))
		for i, j := range idx {
			out.Values[i] = r.Values[j]
		}
	}
	if r.Labels != nil {
		out.Labels = make([]int, len(idx))
		for i, j := range idx {
			out.Labels[i] = r.Labels[j]
		}
	}
	if r.Events != nil {
		out.Events = make([]bool, len(idx))
		for i, j := range idx {
			out.Events[i] = r.Events[j]
		}
	}
	return out
}

// Strata returns a grouping key per case for stratified resampling:
// class labels for Class responses, event status for Survival responses,
// and a single stratum for Numeric responses.
func (r Response) Strata() []int {
	n := r.Len()
	strata := make([]int, n)
	switch r.Kind {
	case Class:
		copy(strata, r.Labels)
	case Survival:
		for i, e := range r.Events {
			if e {
				strata[i] = 1
			}
		}
	}
	return strata
}
