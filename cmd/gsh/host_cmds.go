package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WilliamRagstad/gsh/pkg/config"
	"github.com/WilliamRagstad/gsh/pkg/hostkeys"
)

func newListHostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-hosts",
		Short: "List known hosts and their trusted fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.DefaultGshDir()
			if err != nil {
				return err
			}
			store, err := hostkeys.Load(dir)
			if err != nil {
				return err
			}
			for _, rec := range store.All() {
				fmt.Println(rec.Host)
				for _, fp := range rec.Fingerprints {
					fmt.Printf("  %s\n", base64.StdEncoding.EncodeToString(fp))
				}
			}
			return nil
		},
	}
}
