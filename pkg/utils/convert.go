package utils

import "math"

// Conversion constants
const (
	LightYearsPerParsec   = 3.26156
	MillionKmPerLightYear = 9_460_700
	KmPerEarthRadius      = 6371
	E24KgPerEarthMass     = 5.972
)

// ParsecsToLightYears converts parsecs to light-years
func ParsecsToLightYears(pc *float64) *float64 {
	return scale(pc, LightYearsPerParsec)
}

// LightYearsToMillionKm converts light-years to million kilometers (Mkm)
func LightYearsToMillionKm(ly *float64) *float64 {
	return scale(ly, MillionKmPerLightYear)
}

// EarthRadiiToKm converts Earth radii to kilometers
func EarthRadiiToKm(re *float64) *float64 {
	return scale(re, KmPerEarthRadius)
}

// EarthMassesToE24 converts Earth masses to units of 10^24 kg
func EarthMassesToE24(me *float64) *float64 {
	return scale(me, E24KgPerEarthMass)
}

func scale(v *float64, factor float64) *float64 {
	if !finite(v) {
		return nil
	}
	out := *v * factor
	return &out
}

// RoundToInt rounds to the nearest integer, half away from zero.
// Values outside the int64 range are treated as absent.
func RoundToInt(v *float64) *int64 {
	if !finite(v) {
		return nil
	}
	r := math.Round(*v)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	out := int64(r)
	return &out
}

// RoundTo rounds to the given number of decimal places
func RoundTo(v *float64, places int) *float64 {
	if !finite(v) {
		return nil
	}
	pow := math.Pow(10, float64(places))
	out := math.Round(*v*pow) / pow
	return &out
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
