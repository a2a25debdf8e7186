package commands

import (
	"context"
	"instauto/internal/components/serviceutil"
	"instauto/pkg/instauto/actions/friendships"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	listQuery string
	listMaxID string
)

func init() {
	for _, cmd := range []*cobra.Command{followersCmd, followingCmd} {
		cmd.Flags().StringVar(&listQuery, "query", "", "Only list users matching the query.")
		cmd.Flags().StringVar(&listMaxID, "max-id", "", "The cursor of the page to fetch, printed below the previous page.")
	}

	rootCmd.AddCommand(
		changeCmd("follow <user id>", "Follows a user.", friendships.Module.Create),
		changeCmd("unfollow <user id>", "Unfollows a user.", friendships.Module.Destroy),
		changeCmd("remove-follower <user id>", "Removes a user from your followers.", friendships.Module.Remove),
		changeCmd("approve <user id>", "Approves a pending follow request.", friendships.Module.ApproveRequest),
		changeCmd("ignore <user id>", "Ignores a pending follow request.", friendships.Module.IgnoreRequest),
		friendshipCmd,
		pendingCmd,
		followersCmd,
		followingCmd,
	)
}

type changeFunc func(friendships.Module, context.Context, friendships.Change) (*resty.Response, error)

func changeCmd(use, short string, submit changeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			obj, err := friendships.NewChange(args[0])
			if err != nil {
				serviceutil.Fatal("invalid user", err)
			}
			client := loadClient(cmd.Context())
			printResponse(must(submit(client.Friendships(), cmd.Context(), obj)))
		},
	}
}

var friendshipCmd = &cobra.Command{
	Use:   "friendship <user id>",
	Short: "Shows the relationship between you and a user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := friendships.NewShow(args[0])
		if err != nil {
			serviceutil.Fatal("invalid user", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Friendships().Show(cmd.Context(), obj)))
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Lists pending follow requests.",
	Run: func(cmd *cobra.Command, args []string) {
		client := loadClient(cmd.Context())
		res := must(client.Friendships().PendingRequests(cmd.Context()))
		printOr(res, renderUsers)
	},
}

func listCmd(use, short string, following bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			obj, err := friendships.NewList(args[0])
			if err != nil {
				serviceutil.Fatal("invalid user", err)
			}
			obj.Query = listQuery
			obj.MaxID = listMaxID

			client := loadClient(cmd.Context())
			module := client.Friendships()
			fetch := module.GetFollowers
			if following {
				fetch = module.GetFollowing
			}
			printOr(must(fetch(cmd.Context(), obj)), renderUsers)
		},
	}
}

var followersCmd = listCmd("followers <user id>", "Lists the followers of a user.", false)
var followingCmd = listCmd("following <user id>", "Lists the users a user follows.", true)
