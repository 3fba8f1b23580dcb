package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/pkg/deps"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/version"
)

var (
	registerName       string
	registerVersion    string
	registerID         string
	registerNewID      bool
	registerAttributes uint32
)

func init() {
	cmd := newRegisterCmd()
	cmd.Flags().StringVar(&registerName, "name", "", "Display name")
	cmd.Flags().StringVar(&registerVersion, "version", "", "Provider version (major.minor.build.revision)")
	cmd.Flags().StringVar(&registerID, "id", "", "Provider identifier, typically a product code GUID")
	cmd.Flags().BoolVar(&registerNewID, "new-id", false, "Generate a random identifier")
	cmd.Flags().Uint32Var(&registerAttributes, "attributes", 0, "Attributes bitmask")
	cmd.MarkFlagsMutuallyExclusive("id", "new-id")

	rootCmd.AddCommand(
		cmd,
		newRegisterDependentCmd(),
		newUnregisterDependentCmd(),
		newUnregisterCmd(),
	)
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <key>",
		Short: "Register or update a provider",
		Long: `The register command creates the provider's key and writes the given
fields. Fields that are not given keep their stored values.

Example:
  chkdeps register Foo --name "Foo Package" --version 1.2.3.4 --new-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(args)
		},
	}
}

func runRegister(args []string) error {
	p := deps.Provider{
		Key:        args[0],
		Name:       registerName,
		ID:         registerID,
		Attributes: types.Attributes(registerAttributes),
	}
	if registerNewID {
		p.ID = uuid.NewString()
	}
	if registerVersion != "" {
		v, err := version.Parse(registerVersion)
		if err != nil {
			return fmt.Errorf("--version: %w", err)
		}
		p.Version = &v
	}

	if err := sess.checker.RegisterProvider(p, scope); err != nil {
		return fmt.Errorf("failed to register provider: %w", err)
	}
	markDirty()
	printInfo("Registered %s\n", p.Key)
	return nil
}

func newRegisterDependentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-dependent <provider> <dependent>",
		Short: "Record that a component depends on a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.checker.RegisterDependent(args[0], args[1], scope); err != nil {
				return fmt.Errorf("failed to register dependent: %w", err)
			}
			markDirty()
			printInfo("%s now depends on %s\n", args[1], args[0])
			return nil
		},
	}
}

func newUnregisterDependentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister-dependent <provider> <dependent>",
		Short: "Remove a dependent from a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.checker.UnregisterDependent(args[0], args[1], scope); err != nil {
				return fmt.Errorf("failed to unregister dependent: %w", err)
			}
			markDirty()
			printInfo("%s no longer depends on %s\n", args[1], args[0])
			return nil
		},
	}
}

func newUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <key>",
		Short: "Remove a provider that has no dependents",
		Long: `The unregister command deletes a provider's key. It refuses while any
dependents remain registered; remove them first with unregister-dependent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.checker.UnregisterProvider(args[0], scope); err != nil {
				return fmt.Errorf("failed to unregister provider: %w", err)
			}
			markDirty()
			printInfo("Unregistered %s\n", args[0])
			return nil
		},
	}
}
