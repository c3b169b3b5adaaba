package suggestion

import "math"

// CalculateCalories derives a calorie estimate from a macronutrient
// breakdown using Atwater energy factors: 4 kcal/g for protein and net
// carbohydrate, 9 kcal/g for fat, 2 kcal/g for fiber. Sugar is counted
// again on top of total carbs to weight it within the carbohydrate pool.
func CalculateCalories(n DetailedNutritionInfo) int {
	return int(math.Round(
		n.Protein*4 +
			(n.Carbs-n.Fiber)*4 +
			n.Fat*9 +
			n.Fiber*2 +
			n.Sugar*4,
	))
}
