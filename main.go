// =============================================================================
// Kohesio Validator - Main Entry Point
// =============================================================================
//
// USAGE:
//   kohesio-validator validate [files or directories...]
//   kohesio-validator version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Reader, rules, validation engine and report rendering
//   - pkg/           : File handling shared by the commands
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/kohesio-validator/cmd"
)

func main() {
	cmd.Execute()
}
