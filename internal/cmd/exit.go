// Package cmd provides CLI command implementations.
package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitConfigError indicates the configuration failed to load or validate.
	ExitConfigError = 2

	// ExitEnvFailed indicates one or more environments failed.
	ExitEnvFailed = 3

	// ExitCredentials indicates a missing publish credential.
	ExitCredentials = 4

	// ExitNotFound indicates a file, environment, or command was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitConfigError:
		return "Config Error"
	case ExitEnvFailed:
		return "Environment Failed"
	case ExitCredentials:
		return "Missing Credentials"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
