package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passed to extensions, carrying the global flags.
const (
	EnvConfig    = "TAXLOTS_CONFIG"
	EnvLedgerDir = "TAXLOTS_LEDGER_DIR"
	EnvVerbose   = "TAXLOTS_VERBOSE"
)

// ExtensionName returns the executable implementing an extension subcommand.
func ExtensionName(subcommand string) string { return "taxlots-" + subcommand }

// RunExtension attempts to find and execute an external taxlots-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath(ExtensionName(subcommand))
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the environment of an extension: the current one, and
// the global flags.
func extensionEnv() []string {
	env := os.Environ()
	env = append(env, EnvConfig+"="+*configFile)
	if *ledgerDir != "" {
		env = append(env, EnvLedgerDir+"="+*ledgerDir)
	}
	env = append(env, EnvVerbose+"="+strconv.FormatBool(*Verbose))
	return env
}
