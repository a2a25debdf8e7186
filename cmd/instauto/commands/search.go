package commands

import (
	"encoding/json"
	"instauto/internal/components/serviceutil"
	"instauto/pkg/instauto/actions/search"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchCount int

func init() {
	searchCmd.PersistentFlags().IntVar(&searchCount, "count", search.DefaultCount, "The maximum number of results.")
	searchCmd.AddCommand(searchUserCmd)
	searchCmd.AddCommand(searchTagCmd)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches users or hashtags.",
}

var searchUserCmd = &cobra.Command{
	Use:   "user <query>",
	Short: "Searches users by username or name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := search.NewUsername(args[0], searchCount)
		if err != nil {
			serviceutil.Fatal("invalid search", err)
		}
		client := loadClient(cmd.Context())
		res := must(client.Search().Username(cmd.Context(), obj))
		printOr(res, renderUsers)
	},
}

type tagList struct {
	Results []struct {
		ID         json.Number `json:"id"`
		Name       string      `json:"name"`
		MediaCount int64       `json:"media_count"`
	} `json:"results"`
}

var searchTagCmd = &cobra.Command{
	Use:   "tag <tag>",
	Short: "Searches hashtags.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := search.NewTag(args[0], searchCount)
		if err != nil {
			serviceutil.Fatal("invalid search", err)
		}
		client := loadClient(cmd.Context())
		res := must(client.Search().Tag(cmd.Context(), obj))
		printOr(res, func(list tagList) {
			t := newTable()
			t.AppendHeader(table.Row{"ID", "Tag", "Posts"})
			for _, tag := range list.Results {
				t.AppendRow(table.Row{tag.ID, "#" + tag.Name, tag.MediaCount})
			}
			t.Render()
		})
	},
}
