package tui

// Title renders s as a heading for command output.
func Title(s string) string { return headingStyle.Render(s) }

// Success renders s in the success color.
func Success(s string) string { return passStyle.Render(s) }

// Warning renders s in the warning color.
func Warning(s string) string { return cautionStyle.Render(s) }

// Error renders s in the error color.
func Error(s string) string { return failStyle.Render(s) }

// Muted renders s dimmed.
func Muted(s string) string { return hintStyle.Render(s) }

// Key renders s like a key or property name.
func Key(s string) string { return keyStyle.Render(s) }
