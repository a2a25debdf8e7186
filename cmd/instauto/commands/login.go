package commands

import (
	"fmt"
	"instauto/internal/components/serviceutil"
	"instauto/pkg/instauto"
	"instauto/pkg/instauto/device"
	"log/slog"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(devicesCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with the configured credentials and saves the session.",
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		opts := g.clientOptions()
		if g.config.Device != "" {
			phone, ok := device.KnownProfile(g.config.Device)
			if !ok {
				serviceutil.Fatal("unknown device profile", fmt.Errorf(
					"%q is not one of %s",
					g.config.Device,
					strings.Join(device.KnownProfileNames(), ", "),
				))
			}
			opts.Device = &phone
		}

		client, err := instauto.NewClient(opts)
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		err = client.Login(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}
		g.client = client
		slog.Info("logged in", "save_file", g.config.SaveFile)

		state := client.State()
		phone := client.Device()
		t := newTable()
		t.AppendRows([]table.Row{
			{"User ID", state.UserID},
			{"Device ID", state.DeviceID},
			{"Device", phone.Manufacturer + " " + phone.Model},
			{"Android", phone.AndroidRelease},
		})
		t.Render()
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Lists the device profiles that can be set as 'device' in the config.",
	Run: func(cmd *cobra.Command, args []string) {
		names := device.KnownProfileNames()
		sort.Strings(names)

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Manufacturer", "Model", "Android", "Resolution"})
		for _, name := range names {
			p, _ := device.KnownProfile(name)
			t.AppendRow(table.Row{name, p.Manufacturer, p.Model, p.AndroidRelease, p.Resolution})
		}
		t.Render()
	},
}
