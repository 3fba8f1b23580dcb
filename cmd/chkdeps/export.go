package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pkgdep/internal/regtext"
	"github.com/joshuapare/pkgdep/pkg/registry"
)

var (
	exportOutput   string
	exportEncoding string
	exportBOM      bool
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&exportEncoding, "encoding", "", "Output encoding (UTF-8, UTF-16LE, WINDOWS-1252)")
	cmd.Flags().BoolVar(&exportBOM, "bom", false, "Prefix UTF-16LE output with a byte order mark")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [key]",
		Short: "Export the ledger, or one provider, as a .reg file",
		Long: `The export command writes the ledger root, or the named provider below it,
in Windows .reg format. Regedit expects UTF-16LE with a byte order mark.

Example:
  chkdeps export > ledger.reg
  chkdeps export Foo --encoding UTF-16LE --bom -o foo.reg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
}

func runExport(args []string) error {
	root, err := sess.checker.OpenRoot(scope, false)
	if err != nil {
		return fmt.Errorf("failed to open ledger root: %w", err)
	}
	defer root.Close()

	k, path := root, sess.checker.RootPath()
	if len(args) == 1 {
		k, err = root.OpenSubkey(args[0])
		if err != nil {
			return fmt.Errorf("failed to open provider: %w", err)
		}
		defer k.Close()
		path = registry.JoinPath(path, args[0])
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	opts := regtext.ExportOptions{OutputEncoding: exportEncoding, WithBOM: exportBOM}
	if err := regtext.Export(w, k, regtext.JoinRoot(scope, path), opts); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if exportOutput != "" {
		printVerbose("Exported %s to %s\n", path, exportOutput)
	}
	return nil
}
