// Package lunar computes the Moon-Sun separation and lunar illumination used
// to default sky-background model parameters when an observer does not supply
// them. Positions come from truncated Meeus series on ecliptic longitudes;
// accuracy is a degree or two of elongation, which is ample for a background
// model whose moon term changes over tens of degrees.
package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Conditions holds the lunar quantities relevant to the night-sky brightness
// model.
type Conditions struct {
	MoonSunSeparation float64 // degrees [0,180]: 0 = new moon, 180 = full moon
	Illumination      float64 // illuminated fraction [0,1]
	AgeDays           float64 // days since new moon
}

// SynodicMonth is the average length of the lunar cycle in days.
const SynodicMonth = 29.530588853

// Compute returns the lunar sky-model conditions for a UTC timestamp.
func Compute(t time.Time) Conditions {
	T := (julian.TimeToJD(t) - 2451545.0) / 36525.0

	elong := normalizeAngle(moonEclipticLongitude(T) - sunEclipticLongitude(T))

	// Fold the elongation to the 0..180 separation used by sky models:
	// waxing and waning at the same separation brighten the sky equally.
	sep := elong
	if sep > 180 {
		sep = 360 - sep
	}

	return Conditions{
		MoonSunSeparation: sep,
		Illumination:      (1 - math.Cos(degToRad(elong))) / 2,
		AgeDays:           elong / 360.0 * SynodicMonth,
	}
}

func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// sunEclipticLongitude computes the Sun's apparent ecliptic longitude in
// degrees (Meeus Ch. 25, equation of center form).
func sunEclipticLongitude(T float64) float64 {
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T

	M := 357.52911 + 35999.05029*T - 0.0001537*T*T
	Mrad := degToRad(normalizeAngle(M))

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	return normalizeAngle(L0 + C)
}

// moonEclipticLongitude computes the Moon's ecliptic longitude in degrees
// using the dominant terms of Meeus Ch. 47.
func moonEclipticLongitude(T float64) float64 {
	L := 218.3164477 +
		481267.88123421*T -
		0.0015786*T*T +
		T*T*T/538841 -
		T*T*T*T/65194000

	D := 297.8501921 +
		445267.1114034*T -
		0.0018819*T*T +
		T*T*T/545868 -
		T*T*T*T/113065000

	Mp := 134.9633964 +
		477198.8675055*T +
		0.0087414*T*T +
		T*T*T/69699 -
		T*T*T*T/14712000

	Drad := degToRad(normalizeAngle(D))
	Mprad := degToRad(normalizeAngle(Mp))

	lambdaMoon := L +
		6.289*math.Sin(Mprad) +
		1.274*math.Sin(2*Drad-Mprad) +
		0.658*math.Sin(2*Drad) +
		0.214*math.Sin(2*Mprad) +
		0.110*math.Sin(Drad)

	return normalizeAngle(lambdaMoon)
}
