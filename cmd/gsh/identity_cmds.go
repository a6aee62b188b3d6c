package main

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WilliamRagstad/gsh/pkg/identity"
)

func newNewIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new-id <name>",
		Short: "Generate a new RSA identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := identity.Load(gshDir())
			if err != nil {
				return err
			}
			rec, err := store.Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created identity %q at %s\n", rec.Name, rec.Path)
			return nil
		},
	}
}

func newListIDsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-ids",
		Short: "List stored identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := identity.Load(gshDir())
			if err != nil {
				return err
			}
			for _, rec := range store.List() {
				fmt.Printf("%s\t%s\n", rec.Name, rec.Path)
			}
			return nil
		},
	}
}

func newVerifyIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-id <name>",
		Short: "Sign a known test string with an identity and verify locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := identity.Load(gshDir())
			if err != nil {
				return err
			}
			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}
			priv, err := identity.LoadPrivateKey(rec)
			if err != nil {
				return err
			}

			const testString = "gsh-verify-id-test-string"
			digest := sha256.Sum256([]byte(testString))
			sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
			if err != nil {
				return fmt.Errorf("sign test string: %w", err)
			}
			if err := rsa.VerifyPKCS1v15(&priv.PublicKey, crypto.SHA256, digest[:], sig); err != nil {
				return fmt.Errorf("verify signature: %w", err)
			}
			fmt.Printf("identity %q verified ok\n", args[0])
			return nil
		},
	}
}
