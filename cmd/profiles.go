// File: cmd/profiles.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/config"
)

func newProfilesCmd(v *viper.Viper) *cobra.Command {
	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the browser profiles found under the user data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var full config.Config
			if err := v.Unmarshal(&full); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			cfg := full.Browser
			if err := cfg.Validate(); err != nil {
				return err
			}

			root, err := cfg.UserDataRoot()
			if err != nil {
				return err
			}
			profiles, err := browser.ListProfiles(root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintf(out, "No profiles found under %s\n", root)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DIRECTORY\tNAME\t")
			for _, p := range profiles {
				marker := ""
				if cfg.Profile != "" && (p.Dir == cfg.Profile || p.Name == cfg.Profile) {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Dir, p.Name, marker)
			}
			return tw.Flush()
		},
	}
	profilesCmd.Flags().String("flavor", "", "browser flavor to inspect: edge or chrome")
	if err := v.BindPFlag("browser.flavor", profilesCmd.Flags().Lookup("flavor")); err != nil {
		panic(err)
	}
	return profilesCmd
}
