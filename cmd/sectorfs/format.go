package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sectorfs/internal/disk"
	"sectorfs/internal/fs"
)

func init() {
	formatCmd.SetHelpTemplate(`
Usage:
  sectorfs format [--image path]

Creates a fresh disk image and lays down an empty volume on it.

Options:
  -h [--help]			show help information
`)

	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "create and format a disk image",
	RunE: func(cmd *cobra.Command, args []string) error {
		image := viper.GetString("image")

		device, err := disk.Create(image)
		if err != nil {
			return err
		}
		defer device.Close()

		if _, err := fs.New(device, true); err != nil {
			return err
		}

		fmt.Printf("formatted %s: %d sectors of %d bytes\n",
			image, disk.NumSectors, disk.SectorSize)
		return nil
	},
}
