package commands

import (
	"instauto/internal/components/serviceutil"
	"instauto/pkg/instauto/actions/post"

	"github.com/spf13/cobra"
)

var (
	uploadCaption  string
	uploadQuality  int
	uploadLocation string
	uploadLat      float64
	uploadLng      float64
)

func init() {
	uploadCmd.Flags().StringVar(&uploadCaption, "caption", "", "The caption of the post.")
	uploadCmd.Flags().IntVar(&uploadQuality, "quality", 0, "The jpeg quality reported with the upload (1-100).")
	uploadCmd.Flags().StringVar(&uploadLocation, "location", "", "The name of the location to tag.")
	uploadCmd.Flags().Float64Var(&uploadLat, "lat", 0, "The latitude of the tagged location.")
	uploadCmd.Flags().Float64Var(&uploadLng, "lng", 0, "The longitude of the tagged location.")

	rootCmd.AddCommand(
		likeCmd,
		unlikeCmd,
		saveCmd,
		commentCmd,
		captionCmd,
		mediaCmd,
		likersCmd,
		uploadCmd,
	)
}

var likeCmd = &cobra.Command{
	Use:   "like <media id>",
	Short: "Likes a post.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewLike(args[0])
		if err != nil {
			serviceutil.Fatal("invalid media", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().Like(cmd.Context(), obj)))
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike <media id>",
	Short: "Removes your like from a post.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewUnlike(args[0])
		if err != nil {
			serviceutil.Fatal("invalid media", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().Unlike(cmd.Context(), obj)))
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <media id>",
	Short: "Adds a post to your saved posts.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewSave(args[0])
		if err != nil {
			serviceutil.Fatal("invalid media", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().Save(cmd.Context(), obj)))
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <media id> <text>",
	Short: "Comments on a post.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewComment(args[0], args[1])
		if err != nil {
			serviceutil.Fatal("invalid comment", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().Comment(cmd.Context(), obj)))
	},
}

var captionCmd = &cobra.Command{
	Use:   "caption <media id> [text]",
	Short: "Changes the caption of one of your posts, no text clears it.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		text := ""
		if len(args) == 2 {
			text = args[1]
		}
		obj, err := post.NewUpdateCaption(args[0], text)
		if err != nil {
			serviceutil.Fatal("invalid caption", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().UpdateCaption(cmd.Context(), obj)))
	},
}

var mediaCmd = &cobra.Command{
	Use:   "media <media id>",
	Short: "Prints the details of a post.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewRetrieveByID(args[0])
		if err != nil {
			serviceutil.Fatal("invalid media", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().RetrieveByID(cmd.Context(), obj)))
	},
}

var likersCmd = &cobra.Command{
	Use:   "likers <media id>",
	Short: "Lists the users who liked a post.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := post.NewLikers(args[0])
		if err != nil {
			serviceutil.Fatal("invalid media", err)
		}
		client := loadClient(cmd.Context())
		printOr(must(client.Post().Likers(cmd.Context(), obj)), renderUsers)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path/to/photo.jpg>",
	Short: "Publishes a photo.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := post.UploadOptions{
			Caption: uploadCaption,
			Quality: uploadQuality,
		}
		if uploadLocation != "" {
			opts.Location = &post.Location{
				Name: uploadLocation,
				Lat:  uploadLat,
				Lng:  uploadLng,
			}
		}
		obj, err := post.NewUploadFromFile(args[0], opts)
		if err != nil {
			serviceutil.Fatal("invalid upload", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Post().Upload(cmd.Context(), obj)))
	},
}
