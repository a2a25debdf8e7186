package commands

import (
	"instauto/internal/components/serviceutil"
	"instauto/pkg/instauto/actions/profile"
	"strconv"

	"github.com/spf13/cobra"
)

var updateOpts profile.UpdateOptions

func init() {
	profileUpdateCmd.Flags().StringVar(&updateOpts.Username, "username", "", "The new username.")
	profileUpdateCmd.Flags().StringVar(&updateOpts.FullName, "name", "", "The new full name.")
	profileUpdateCmd.Flags().StringVar(&updateOpts.Biography, "bio", "", "The new biography.")
	profileUpdateCmd.Flags().StringVar(&updateOpts.ExternalURL, "url", "", "The new website.")
	profileUpdateCmd.Flags().StringVar(&updateOpts.Email, "email", "", "The new email address.")
	profileUpdateCmd.Flags().StringVar(&updateOpts.PhoneNumber, "phone", "", "The new phone number.")

	profileCmd.AddCommand(
		profileUpdateCmd,
		profileBioCmd,
		profileGenderCmd,
		profileVisibilityCmd("private", true),
		profileVisibilityCmd("public", false),
	)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(userCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edits your profile.",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update [--username ...] [--name ...] [--bio ...] [--url ...] [--email ...] [--phone ...]",
	Short: "Updates the given profile fields, the others keep their current value.",
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := profile.NewUpdate(updateOpts)
		if err != nil {
			serviceutil.Fatal("invalid update", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Profile().Update(cmd.Context(), obj)))
	},
}

var profileBioCmd = &cobra.Command{
	Use:   "bio [text]",
	Short: "Sets your biography, no text clears it.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := ""
		if len(args) == 1 {
			text = args[0]
		}
		obj, err := profile.NewSetBiography(text)
		if err != nil {
			serviceutil.Fatal("invalid biography", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Profile().SetBiography(cmd.Context(), obj)))
	},
}

var profileGenderCmd = &cobra.Command{
	Use:   "gender <1 male|2 female|3 unspecified|4 custom> [custom]",
	Short: "Sets your gender.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		gender, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("gender must be a number", err)
		}
		custom := ""
		if len(args) == 2 {
			custom = args[1]
		}
		obj, err := profile.NewSetGender(profile.Gender(gender), custom)
		if err != nil {
			serviceutil.Fatal("invalid gender", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Profile().SetGender(cmd.Context(), obj)))
	},
}

func profileVisibilityCmd(use string, private bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "Makes your account " + use + ".",
		Run: func(cmd *cobra.Command, args []string) {
			client := loadClient(cmd.Context())
			obj := profile.NewSetVisibility(private)
			printResponse(must(client.Profile().SetVisibility(cmd.Context(), obj)))
		},
	}
}

var userCmd = &cobra.Command{
	Use:   "user <user id>",
	Short: "Prints the profile of a user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obj, err := profile.NewInfo(args[0])
		if err != nil {
			serviceutil.Fatal("invalid user", err)
		}
		client := loadClient(cmd.Context())
		printResponse(must(client.Profile().Info(cmd.Context(), obj)))
	},
}
