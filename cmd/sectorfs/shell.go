package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sectorfs/internal/disk"
	"sectorfs/internal/fs"
	"sectorfs/internal/shell"
)

func init() {
	shellCmd.SetHelpTemplate(`
Usage:
  sectorfs shell [--image path]

Opens an interactive shell on an existing volume.

Options:
  -h [--help]			show help information
`)

	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "interactive shell on a volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := disk.Open(viper.GetString("image"))
		if err != nil {
			return err
		}
		defer device.Close()

		filesys, err := fs.New(device, false)
		if err != nil {
			return err
		}
		defer filesys.CloseAll()

		return shell.New(filesys, os.Stdin, os.Stdout).Run()
	},
}
