package main

import (
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove a file or directory (recursively) from the volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVolume()
		if err != nil {
			return err
		}
		defer fs.Sync()

		dir, name, err := splitPath(fs, args[0])
		if err != nil {
			return err
		}
		if err := dir.Delete(name); err != nil {
			return err
		}
		log.Infof("removed %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
