package donor

import "math"

// ComputeBMI returns weight / (height in meters)^2 rounded to one decimal,
// matching what the form preview shows the donor.
func ComputeBMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	meters := heightCm / 100
	bmi := weightKg / (meters * meters)
	return math.Round(bmi*10) / 10
}
