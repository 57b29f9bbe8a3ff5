package scoring

import "fmt"

// MissingCriterionError reports a weighted criterion that is not a numeric
// column of every record in the dataset.
type MissingCriterionError struct {
	Criterion string
	Record    string // empty when the criterion is absent from the weight mapping
}

func (e *MissingCriterionError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("criterion %q missing for %q", e.Criterion, e.Record)
	}
	return fmt.Sprintf("criterion %q missing", e.Criterion)
}

// DegenerateColumnError reports a column that cannot be normalized: zero
// variance under min-max, all zeros under vector normalization.
type DegenerateColumnError struct {
	Criterion     string
	Normalization string
}

func (e *DegenerateColumnError) Error() string {
	name := e.Criterion
	if name == "" {
		name = "column"
	}
	return fmt.Sprintf("%s normalization of %q is undefined", e.Normalization, name)
}

// InvalidValueError reports a criterion value that is not a finite number.
type InvalidValueError struct {
	Criterion string
	Record    string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("criterion %q of %q is not finite", e.Criterion, e.Record)
}

// InvalidWeightError reports a weight mapping that is not a valid convex
// combination.
type InvalidWeightError struct {
	Reason string
}

func (e *InvalidWeightError) Error() string {
	return "invalid weights: " + e.Reason
}

// DegenerateWeightError reports a sensitivity target whose companions carry no
// weight, leaving nothing to rescale.
type DegenerateWeightError struct {
	Criterion string
}

func (e *DegenerateWeightError) Error() string {
	return fmt.Sprintf("weights other than %q sum to zero and cannot be rescaled", e.Criterion)
}
