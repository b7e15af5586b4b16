// Package models defines the value types handed from the polling and
// reconciliation components to the presentation layer. Everything here is
// passed by value; nothing holds references back into the producers.
package models

import (
	"fmt"
	"strconv"
)

// UnavailableText is how an unavailable measurement is rendered.
const UnavailableText = "N/A"

// Number is the set of numeric kinds a Measure can carry.
type Number interface {
	~int | ~float64
}

// Measure is a numeric reading that the vendor tool may report as not
// supported. The zero value is unavailable.
type Measure[T Number] struct {
	Value     T
	Available bool
}

// Of returns an available measure.
func Of[T Number](v T) Measure[T] {
	return Measure[T]{Value: v, Available: true}
}

// Format renders the value followed by unit, or UnavailableText.
func (m Measure[T]) Format(unit string) string {
	if !m.Available {
		return UnavailableText
	}
	var s string
	switch v := any(m.Value).(type) {
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(m.Value)
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}
