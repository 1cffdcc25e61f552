package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sectorfs/internal/disk"
	"sectorfs/internal/fs"
	"sectorfs/internal/fusefs"
)

func init() {
	mountCmd.SetHelpTemplate(`
Usage:
  sectorfs mount <mountpoint> [--image path]

Mounts an existing volume read-only through FUSE. Unmounts on SIGINT
or SIGTERM.

Options:
  -h [--help]			show help information
`)

	rootCmd.AddCommand(mountCmd)
}

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "mount a volume read-only via FUSE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountPoint := args[0]

		device, err := disk.Open(viper.GetString("image"))
		if err != nil {
			return err
		}
		defer device.Close()

		filesys, err := fs.New(device, false)
		if err != nil {
			return err
		}

		volume := fusefs.NewVolume(filesys)
		if err := volume.Mount(mountPoint); err != nil {
			return err
		}
		fmt.Printf("mounted %s at %s; interrupt to unmount\n",
			viper.GetString("image"), mountPoint)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		return volume.Unmount(mountPoint)
	},
}
