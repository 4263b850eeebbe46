package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/output"
)

var workforceNameContains string

var workforceCmd = &cobra.Command{
	Use:   "workforce",
	Short: "Inspect workteams available for review",
}

var workforceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workteams",
	Long: `List workteams in the account.

Copy the ARN of the team that should review documents into
review.workteam_arn. Nothing is picked automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rv, err := services(cmd).Review(ctx)
		if err != nil {
			return err
		}
		teams, err := rv.ListWorkteams(ctx, workforceNameContains)
		if err != nil {
			return err
		}
		return output.Print(teams)
	},
}

func init() {
	workforceListCmd.Flags().StringVar(&workforceNameContains, "name-contains", "", "filter by name substring")
	workforceCmd.AddCommand(workforceListCmd)
	rootCmd.AddCommand(workforceCmd)
}
