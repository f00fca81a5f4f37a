package cmd

import (
	"fmt"
	"os"
	"time"

	"obdpoll/internal/cmd/root"
	"obdpoll/pkg/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use: "obdpoll",
	Run: root.Run,
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().Bool("no-tui", false, "Run without TUI, printing readings to the console")
	rootCmd.PersistentFlags().Bool("mock", false, "Use a simulated OBD-II adapter")
	rootCmd.PersistentFlags().Int("baud", 9600, "Baud rate for the serial connection")
	rootCmd.PersistentFlags().Duration("timeout", 1*time.Second, "Serial read timeout")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("no-tui", rootCmd.PersistentFlags().Lookup("no-tui"))
	viper.BindPFlag("mock", rootCmd.PersistentFlags().Lookup("mock"))
	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	viper.SetDefault("debug", false)
	viper.SetDefault("no-tui", false)
	viper.SetDefault("mock", false)
	viper.SetDefault("baud", 9600)
	viper.SetDefault("timeout", 1*time.Second)
}

func initLogger() {
	log.InitLogger(viper.GetBool("debug"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
