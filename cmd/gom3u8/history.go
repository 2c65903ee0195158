package main

import (
	"context"
	"fmt"

	"github.com/kmorav/gom3u8/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived job results",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCtx, err := setup()
			if err != nil {
				return err
			}

			st, err := store.NewPersistentStore(appCtx.Config.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ListResults(context.Background(), limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No archived results.")
				return nil
			}

			for _, e := range entries {
				mark := "OK "
				if !e.Success {
					mark = "ERR"
				}
				fmt.Printf("%s  %s  %s\n     %s\n",
					mark, e.FinishedAt.Format("2006-01-02 15:04:05"), e.URL, e.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "max entries to show")

	return cmd
}
