package model

import "fmt"

// Label is the closed set of verdicts the classifier may produce.
// Both the classifier adapter and the aggregator share this type so an
// out-of-set value is caught at the adapter boundary instead of leaking
// into the distribution as a new bucket.
type Label string

const (
	LabelTrue    Label = "TRUE"
	LabelFalse   Label = "FALSE"
	LabelNeutral Label = "Neutral"
)

// Labels returns the three verdict labels in their stable presentation order.
func Labels() []Label {
	return []Label{LabelTrue, LabelFalse, LabelNeutral}
}

// ParseLabel validates a raw classifier output string against the closed set.
// An unrecognized value is a contract violation by the classifier capability
// and must never be coerced to a default label.
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelTrue, LabelFalse, LabelNeutral:
		return Label(s), nil
	}
	return "", fmt.Errorf("unrecognized classifier label %q", s)
}

// Valid reports whether l is one of the three fixed labels.
func (l Label) Valid() bool {
	switch l {
	case LabelTrue, LabelFalse, LabelNeutral:
		return true
	}
	return false
}
