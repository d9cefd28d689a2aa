package nostd

import "math"

// Round 四舍五入到指定小数位
func Round(value float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(value*factor) / factor
}
