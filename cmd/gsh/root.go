// Command gsh is the client CLI: connects to a gsh-server host, with
// subcommands for managing identities and known hosts. Received frames
// go to a NullDriver, which records them; no windows are shown.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WilliamRagstad/gsh/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := newConnectCmd()
	root.Long = "Remote graphical-shell client"

	root.AddCommand(newNewIDCmd())
	root.AddCommand(newListHostsCmd())
	root.AddCommand(newListIDsCmd())
	root.AddCommand(newVerifyIDCmd())

	return root
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func gshDir() string {
	dir, err := config.DefaultGshDir()
	if err != nil {
		fatal("gsh: resolve home directory: %v", err)
	}
	return dir
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal("gsh: %v", err)
	}
}
