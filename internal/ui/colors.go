// Package ui provides terminal color output and TTY detection.
package ui

// ANSI color codes
const (
	ColorReset   = "\033[0m"
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[94m" // Bright blue - more readable on dark backgrounds
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"
)

// Colors holds all color functions
type Colors struct {
	enabled bool
}

// NewColors creates a new Colors instance
func NewColors(enabled bool) *Colors {
	return &Colors{enabled: enabled}
}

// Red returns red colored text
func (c *Colors) Red(s string) string {
	if !c.enabled {
		return s
	}
	return ColorRed + s + ColorReset
}

// Green returns green colored text
func (c *Colors) Green(s string) string {
	if !c.enabled {
		return s
	}
	return ColorGreen + s + ColorReset
}

// Yellow returns yellow colored text
func (c *Colors) Yellow(s string) string {
	if !c.enabled {
		return s
	}
	return ColorYellow + s + ColorReset
}

// Blue returns blue colored text
func (c *Colors) Blue(s string) string {
	if !c.enabled {
		return s
	}
	return ColorBlue + s + ColorReset
}

// Magenta returns magenta colored text
func (c *Colors) Magenta(s string) string {
	if !c.enabled {
		return s
	}
	return ColorMagenta + s + ColorReset
}

// Cyan returns cyan colored text
func (c *Colors) Cyan(s string) string {
	if !c.enabled {
		return s
	}
	return ColorCyan + s + ColorReset
}

// Gray returns gray colored text
func (c *Colors) Gray(s string) string {
	if !c.enabled {
		return s
	}
	return ColorGray + s + ColorReset
}

// Bold returns bold text
func (c *Colors) Bold(s string) string {
	if !c.enabled {
		return s
	}
	return ColorBold + s + ColorReset
}

// OutcomeSymbol returns a colored symbol for a test outcome
func (c *Colors) OutcomeSymbol(outcome string) string {
	switch outcome {
	case "passed":
		return c.Green("✓")
	case "failed":
		return c.Red("✗")
	case "skipped":
		return c.Yellow("⊝")
	default:
		return c.Magenta("?")
	}
}
