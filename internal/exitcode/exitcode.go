package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition, including plan
	// computation failures
	GeneralError = 1

	// UsageError indicates invalid command usage or goal input
	// (bad flags, missing goal, hours out of range, etc.)
	UsageError = 2

	// ConfigError indicates invalid configuration or an unusable template catalog
	ConfigError = 3
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode maps coded errors by prefix and falls back to matching
// cobra's usage messages.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if pe, ok := errors.As(err); ok {
		code := string(pe.Code)
		switch {
		case pe.IsValidation():
			return UsageError
		case strings.HasPrefix(code, "CONFIG-"), strings.HasPrefix(code, "CATALOG-"):
			return ConfigError
		default:
			return GeneralError
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, usage := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"invalid argument",
		"required flag",
		"flag needs an argument",
		"accepts ",
	} {
		if strings.Contains(errMsg, usage) {
			return UsageError
		}
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments, or goal input)"
	case ConfigError:
		return "Configuration error (config file or template catalog)"
	default:
		return "Unknown error"
	}
}
