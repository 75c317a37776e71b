// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotate

import (
	"fmt"
	"strconv"
)

// DefaultUnit is the model length unit, and the fallback display unit.
const DefaultUnit = "mm"

// unitFactors are the conversion factors from millimeters.
var unitFactors = map[string]float64{
	"mm":   1,
	"cm":   0.1,
	"m":    0.001,
	"inch": 0.0393700787,
	"feet": 0.0032808399,
}

// ValidUnit returns whether the unit has a conversion from millimeters.
func ValidUnit(unit string) bool {
	_, ok := unitFactors[unit]
	return ok
}

// Convert converts a length in millimeters to the given unit.
// It returns false for an unknown unit, in which case mm is unchanged.
func Convert(mm float64, unit string) (float64, bool) {
	f, ok := unitFactors[unit]
	if !ok {
		return mm, false
	}
	return mm * f, true
}

// DimensionText returns the label text of a length in the given unit,
// rounded to two decimals: "~1.00 cm".
func DimensionText(v float64, unit string) string {
	return fmt.Sprintf("~%s %s", strconv.FormatFloat(v, 'f', 2, 64), unit)
}
