package main

import (
	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a directory inside the mounted volume",
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
		if _, err := dir.Mkdir(name); err != nil {
			return err
		}
		log.Infof("created directory %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
}
