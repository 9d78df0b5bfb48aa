package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/adipundir/donatrade/internal/storage/snapshot"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import the committed ledger state",
		Long: `Export the committed ledger state to a compressed snapshot file, or
import one into an empty store. Oracle ciphertexts are not part of a
snapshot. The daemon must not be running against the same store.`,
	}
	cmd.AddCommand(newSnapshotExportCmd(opts), newSnapshotImportCmd(opts))
	return cmd
}

func newSnapshotExportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Write the ledger state to a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			dbs, store, err := openStore(cfg.Storage)
			if err != nil {
				return err
			}
			defer dbs.Close()

			var w io.Writer = cmd.OutOrStdout()
			if args[0] != "-" {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			summary, err := snapshot.Export(w, store)
			if err != nil {
				return err
			}
			if f, ok := w.(*os.File); ok && args[0] != "-" {
				if err := f.Sync(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d entries, digest %X\n", summary.Entries, summary.Digest)
			return nil
		},
	}
}

func newSnapshotImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Load a snapshot into an empty state store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			dbs, store, err := openStore(cfg.Storage)
			if err != nil {
				return err
			}
			defer dbs.Close()

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			summary, err := snapshot.Import(r, store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d entries, digest %X\n", summary.Entries, summary.Digest)
			return nil
		},
	}
}
