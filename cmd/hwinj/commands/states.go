package commands

import (
	"github.com/spf13/cobra"
)

func installStatesCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "states",
		Short: "Print the injection state table",
		Long:  "Print the injection state table in use, in the format of a state table file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := app.stateTable()
			if err != nil {
				return err
			}
			return table.Encode(cmd.OutOrStdout())
		},
	}

	app.cmd.AddCommand(cmd)
}
