package bot

// UI texts in English
const (
	helpText = "**Tour bot commands**\n" +
		"1. `%[1]stour <duration>` - Start a timer (e.g. `1h`, `30m`). Anything after the duration is sent when it expires.\n" +
		"2. `%[1]stour stop` - Stop your most recent timer.\n" +
		"3. `%[1]stimers` - Show your active timers.\n" +
		"4. `%[1]shelp` - Show this help."

	usageText         = "Usage: `%[1]stour <duration>` or `%[1]stour stop`."
	invalidFormatText = "Invalid duration format. Use `h`, `m` or `s`."
	invalidHoursText  = "The duration must be greater than zero."
	noTimerText       = "No timer running."
	noActiveText      = "No active timers."
	activeTitle       = "Active timers:"
	activeLineFmt     = "Timer %d: %d seconds left"
)
