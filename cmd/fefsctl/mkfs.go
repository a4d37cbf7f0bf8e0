package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NotYetOS/fefs"
	"github.com/NotYetOS/fefs/internal/loopdev"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flagMkfsSize string

var mkfsCmd = &cobra.Command{
	Use:   "mkfs",
	Short: "Format --disk as a new FEFS volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagBlockSize != fefs.BlockSize {
			return fmt.Errorf("fefsctl: --block-size %d unsupported: this build only supports %d", flagBlockSize, fefs.BlockSize)
		}

		base, err := partitionOffset(flagDisk)
		if err != nil {
			return err
		}
		sizeBytes, err := parseSize(flagMkfsSize)
		if err != nil {
			return fmt.Errorf("fefsctl: --size: %w", err)
		}

		dev, err := loopdev.Open(flagDisk, fefs.BlockSize, sizeBytes, base)
		if err != nil {
			return err
		}
		defer dev.Close()

		fs := fefs.Create(dev, fefs.BlockSize, flagSPC, log)
		fs.Sync()

		log.WithFields(logrus.Fields{
			"disk":         flagDisk,
			"block_size":   flagBlockSize,
			"cluster_size": flagSPC,
			"size":         sizeBytes,
		}).Info("formatted FEFS volume")
		return nil
	},
}

func init() {
	mkfsCmd.Flags().StringVar(&flagMkfsSize, "size", "16MiB", "image size to allocate when creating --disk (e.g. 16MiB, 1GiB)")
	rootCmd.AddCommand(mkfsCmd)
}

// parseSize parses a size string with an optional KiB/MiB/GiB suffix into a
// byte count.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GiB"):
		mult = 1 << 30
		s = strings.TrimSuffix(s, "GiB")
	case strings.HasSuffix(s, "MiB"):
		mult = 1 << 20
		s = strings.TrimSuffix(s, "MiB")
	case strings.HasSuffix(s, "KiB"):
		mult = 1 << 10
		s = strings.TrimSuffix(s, "KiB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return n * mult, nil
}
