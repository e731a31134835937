package cli

// ANSI color codes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
)

// FormatStatus returns a colored validity status string.
func FormatStatus(status string) string {
	switch status {
	case StatusValid:
		return ColorGreen + status + ColorReset
	case StatusExpired:
		return ColorRed + status + ColorReset
	case StatusNotYetValid:
		return ColorYellow + status + ColorReset
	default:
		return status
	}
}
