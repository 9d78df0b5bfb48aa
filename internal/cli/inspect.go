package cli

import (
	"encoding/hex"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/spf13/cobra"
)

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var (
		typeFilter string
		limit      int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the committed ledger entries",
		Long: `List the committed ledger entries of the configured state store in key
order. Encrypted amounts are shown as handles only. The daemon must not be
running against the same store.`,
		Args: cobra.NoArgs,
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

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTYPE\tSIZE")

			shown := 0
			var decodeErr error
			err = store.ForEach(func(key [32]byte, data []byte) bool {
				e, err := entries.DecodeAny(data)
				if err != nil {
					decodeErr = fmt.Errorf("entry %X: %w", key, err)
					return false
				}
				name := e.EntryType().String()
				if typeFilter != "" && !strings.EqualFold(name, typeFilter) {
					return true
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", strings.ToUpper(hex.EncodeToString(key[:])), name, len(data))
				if verbose {
					fmt.Fprintf(w, "\t%+v\t\n", e)
				}
				shown++
				return limit <= 0 || shown < limit
			})
			if err == nil {
				err = decodeErr
			}
			if flushErr := w.Flush(); err == nil {
				err = flushErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "only show entries of this type")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many entries (0 shows all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print decoded entry fields")
	return cmd
}
