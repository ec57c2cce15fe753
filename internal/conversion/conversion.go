// Package conversion converts weather station units to metric and derives
// comfort values from raw readings.
package conversion

import "math"

// DefaultPlaces is the rounding precision applied to stored readings.
const DefaultPlaces = 3

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FToC converts degrees Fahrenheit to Celsius.
func FToC(degF float64, places int) float64 {
	return Round((degF-32)*5/9, places)
}

// MmHgToHPa converts millimetres of mercury to hectopascals.
func MmHgToHPa(mmHg float64, places int) float64 {
	return Round(mmHg*1.33322, places)
}

// InHgToHPa converts inches of mercury to hectopascals.
func InHgToHPa(inHg float64, places int) float64 {
	return Round(inHg*33.8639, places)
}

// MphToKmh converts miles per hour to kilometres per hour.
func MphToKmh(mph float64, places int) float64 {
	return Round(mph*1.60934, places)
}

// InToCm converts inches to centimetres.
func InToCm(inch float64, places int) float64 {
	return Round(inch*2.54, places)
}

// KmhToMs converts kilometres per hour to metres per second.
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// vapourPressure returns the water vapour pressure in hPa for a temperature
// in °C and relative humidity in percent.
func vapourPressure(tempC, humidity float64) float64 {
	return humidity / 100 * 6.105 * math.Exp(17.27*tempC/(237.7+tempC))
}

// ApparentTemp is the Australian apparent ("feels like") temperature for
// air temperature in °C, relative humidity in percent and wind in m/s.
func ApparentTemp(tempC, humidity, windMs float64, places int) float64 {
	e := vapourPressure(tempC, humidity)
	return Round(tempC+0.33*e-0.70*windMs-4.00, places)
}

// DewPoint estimates the dew point in °C using the Magnus formula.
// Humidity at or below zero has no dew point; the air temperature is
// returned unchanged in that case.
func DewPoint(tempC, humidity float64, places int) float64 {
	if humidity <= 0 {
		return Round(tempC, places)
	}
	const a, b = 17.27, 237.7
	gamma := math.Log(humidity/100) + a*tempC/(b+tempC)
	return Round(b*gamma/(a-gamma), places)
}
