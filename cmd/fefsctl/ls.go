package main

import (
	"fmt"
	"os"

	"github.com/NotYetOS/fefs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var flagLsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the contents of a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVolume()
		if err != nil {
			return err
		}

		target := "/"
		if len(args) == 1 {
			target = args[0]
		}
		dir, err := resolveDir(fs, target)
		if err != nil {
			return err
		}

		for _, entry := range dir.Ls() {
			printEntry(&entry, flagLsLong)
		}
		return nil
	},
}

func printEntry(entry *fefs.Inode, long bool) {
	name := entry.Name()
	if entry.IsDir() {
		name = color.New(color.FgBlue, color.Bold).Sprint(name + "/")
	}
	if !long {
		fmt.Fprintln(os.Stdout, name)
		return
	}
	kind := "file"
	if entry.IsDir() {
		kind = "dir"
	}
	fmt.Fprintf(os.Stdout, "%-4s %8d  %s\n", kind, entry.SizeLo, name)
}

func init() {
	lsCmd.Flags().BoolVarP(&flagLsLong, "long", "l", false, "show entry kind and size")
	rootCmd.AddCommand(lsCmd)
}
