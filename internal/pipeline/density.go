package pipeline

// Density thresholds: larger result sets render smaller cards. The widths
// are minimum card widths in pixels, returned to the renderer as a display
// hint only.
var densitySteps = []struct {
	minCount int
	width    int
}{
	{400, 180},
	{250, 220},
	{120, 260},
	{60, 300},
	{24, 340},
}

const defaultCardWidth = 360

// compactCardWidth is the forced width under the compact density preference.
const compactCardWidth = 180

// DensityWidth maps a result count to the minimum card width. The mapping
// is a monotonic step function of the count and has no other effect.
func DensityWidth(count int) int {
	for _, step := range densitySteps {
		if count >= step.minCount {
			return step.width
		}
	}
	return defaultCardWidth
}
