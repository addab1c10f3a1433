package colors

import "github.com/fatih/color"

// Sprint helpers shared by the request logger & worker pool log prefixes.
var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
)
