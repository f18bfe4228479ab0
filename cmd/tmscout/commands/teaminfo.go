package commands

import (
	"os"

	"tmscout-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(teaminfoCmd)
}

var teaminfoCmd = &cobra.Command{
	Use:   "teaminfo",
	Short: "Prints the logged-in team's overview.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		client := newSiteClient(ctx, cfg)
		info, err := client.TeamInfo(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch team info", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Team", info.TeamName},
			{"Manager", info.Manager},
			{"Division", info.CurrentDivision},
			{"Players", info.PlayersCount},
			{"Available Funds", info.AvailableFunds},
			{"Wage Roof", info.WageRoof},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
