package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"golang.org/x/term"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// formatMetricValue renders one metric value for table and CSV output.
// Counts loaded back from the result store arrive as float64, so whole
// floats are rendered without a fractional part.
func formatMetricValue(value any, fmtFloat func(float64) string, intFmt string) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case int:
		return fmt.Sprintf(intFmt, v)
	case int64:
		return fmt.Sprintf(intFmt, v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf(intFmt, int64(v))
		}
		return fmtFloat(v)
	case bool:
		return fmt.Sprintf("%t", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// getMaxTableRepoWidth calculates the maximum width for repository identities
// in table output based on terminal width.
func getMaxTableRepoWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the state/value column plus borders and padding
	available := termWidth - 35
	if available < 20 {
		// Minimum reasonable identity width
		return 20
	}
	if available > 80 {
		// Maximum identity width to prevent overly long rows
		return 80
	}
	return available
}
