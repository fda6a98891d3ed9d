// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(stdin, stdout, stderr).execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	defer a.close()

	rootCmd := newRootCommand(a)
	rootCmd.SetArgs(withDefaultCommand(rootCmd, args))
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return mapErrorToExitCode(err)
	}
	return 0
}

// withDefaultCommand makes search the default command: arguments that do
// not name a subcommand are passed to search. Help and version requests
// without a subcommand stay with the root command.
func withDefaultCommand(rootCmd *cobra.Command, args []string) []string {
	if len(args) > 0 {
		switch args[0] {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return args
		}
	}

	cmd, _, err := rootCmd.Find(args)
	if err == nil {
		if cmd != rootCmd {
			return args
		}
		for _, arg := range args {
			if arg == "-h" || arg == "--help" || arg == "--version" {
				return args
			}
		}
	}
	return append([]string{"search"}, args...)
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, humioerrors.ErrInvalidToken) ||
		errors.Is(err, humioerrors.ErrRepoNotFound) ||
		errors.Is(err, humioerrors.ErrRateLimit) ||
		errors.Is(err, humioerrors.ErrNoRepositories) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, humioerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
