/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/acronis/taskgate/internal/buildinfo"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for the commit, Go version and versions of the main libraries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bi := buildinfo.Get()
		if _, err := fmt.Fprintf(out, "taskgate %s\n", bi.Version); err != nil {
			return err
		}
		if !extended {
			return nil
		}
		fmt.Fprintf(out, "Commit: %s\n", bi.Commit)
		fmt.Fprintf(out, "Go: %s\n", bi.GoVersion)

		modVersions := buildinfo.ModuleVersions(buildinfo.StackModules)
		mods := make([]string, 0, len(modVersions))
		for mod := range modVersions {
			mods = append(mods, mod)
		}
		sort.Strings(mods)
		for _, mod := range mods {
			fmt.Fprintf(out, "%s: %s\n", mod, modVersions[mod])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
