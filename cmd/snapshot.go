package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"domainvar/internal/config"
	"domainvar/internal/snapshot"

	"github.com/spf13/cobra"
)

func snapshotCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Lists, shows and deletes saved domain snapshots",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lists saved snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				strg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()

				snaps, err := snapshot.New(strg).List(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tORDER\tVALUES\tUPDATED")
				for _, s := range snaps {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Order, len(s.Values), s.UpdatedAt.Format("2006-01-02 15:04:05"))
				}

				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show NAME",
			Short: "Prints a snapshot's values in domain order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				strg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()

				d, err := snapshot.New(strg).Restore(ctx, args[0])
				if err != nil {
					return err
				}
				defer d.MustClose()

				for v := range d.All() {
					fmt.Println(v)
				}

				return nil
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Deletes a snapshot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				strg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()

				return snapshot.New(strg).Delete(ctx, args[0])
			},
		},
	)

	return cmd
}
