package main

import (
	"io"
	"os"

	"github.com/NotYetOS/fefs"
	"github.com/spf13/cobra"
)

var flagAppend bool

var writeCmd = &cobra.Command{
	Use:   "write PATH [SRC]",
	Short: "Write stdin (or SRC, if given) into a file, creating it if needed",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVolume()
		if err != nil {
			return err
		}
		defer fs.Sync()

		var src *os.File = os.Stdin
		if len(args) == 2 {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}
		data, err := io.ReadAll(src)
		if err != nil {
			return err
		}

		dir, name, err := splitPath(fs, args[0])
		if err != nil {
			return err
		}
		file, err := dir.OpenFile(name)
		if err != nil {
			file, err = dir.CreateFile(name)
			if err != nil {
				return err
			}
		}

		writeType := fefs.OverWritten
		if flagAppend {
			writeType = fefs.Append
		}
		if err := file.Write(data, writeType); err != nil {
			return err
		}
		log.Infof("wrote %d bytes to %s", len(data), args[0])
		return nil
	},
}

func init() {
	writeCmd.Flags().BoolVar(&flagAppend, "append", false, "append instead of overwriting")
	rootCmd.AddCommand(writeCmd)
}
