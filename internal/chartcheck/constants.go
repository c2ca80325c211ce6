package chartcheck

// Tooltip offsets from the pointer, in SVG units.
const (
	offsetX = 15
	offsetY = -25
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// PercentageMultiplier converts ratios for reporting.
const PercentageMultiplier = 100
