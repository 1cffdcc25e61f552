package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sectorfs/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "sectorfs",
	Short: "a simple block file system over a disk image",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetLevel(viper.GetString("log-level"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Usage()
	},
}

func init() {
	rootCmd.PersistentFlags().String("image", "sectorfs.img", "path to the disk image")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (error, warn, info, debug, trace)")
	viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
