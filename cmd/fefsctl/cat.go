package main

import (
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat PATH",
	Short: "Print a file's contents to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVolume()
		if err != nil {
			return err
		}

		dir, name, err := splitPath(fs, args[0])
		if err != nil {
			return err
		}
		file, err := dir.OpenFile(name)
		if err != nil {
			return err
		}

		var buf []byte
		if _, err := file.ReadToVec(&buf); err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		return err
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
