// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeo-scada/bacnet/bacnet"
)

var (
	cfgFile      string
	deviceID     uint32
	vendorID     uint32
	maxAPDU      uint16
	segmentation string
	timeout      time.Duration
	outputFmt    string
	verbose      bool
	localAddress string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edgeo-bacnet",
	Short: "A BACnet/IP discovery and device-shell CLI",
	Long: `edgeo-bacnet discovers and answers for BACnet/IP devices over Annex J.

Examples:
  # Discover devices on the local network
  edgeo-bacnet discover

  # Answer Who-Is requests as a device
  edgeo-bacnet serve --device 1234`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgeo-bacnet.yaml)")
	rootCmd.PersistentFlags().Uint32VarP(&deviceID, "device", "d", 0, "Device instance ID")
	rootCmd.PersistentFlags().Uint32Var(&vendorID, "vendor-id", 0, "Vendor identifier reported in I-Am")
	rootCmd.PersistentFlags().Uint16Var(&maxAPDU, "max-apdu", bacnet.MaxAPDULength, "Max APDU length reported in I-Am")
	rootCmd.PersistentFlags().StringVar(&segmentation, "segmentation", "no-segmentation", "Segmentation support: segmented-both, segmented-transmit, segmented-receive, no-segmentation")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "Request/discovery timeout")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json, csv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&localAddress, "local", "", "Local address to bind to (e.g., 0.0.0.0:47808)")

	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("vendor-id", rootCmd.PersistentFlags().Lookup("vendor-id"))
	viper.BindPFlag("max-apdu", rootCmd.PersistentFlags().Lookup("max-apdu"))
	viper.BindPFlag("segmentation", rootCmd.PersistentFlags().Lookup("segmentation"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("local", rootCmd.PersistentFlags().Lookup("local"))

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".edgeo-bacnet")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BACNET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func parseSegmentation(s string) bacnet.Segmentation {
	switch s {
	case "segmented-both":
		return bacnet.SegmentationBoth
	case "segmented-transmit":
		return bacnet.SegmentationTransmit
	case "segmented-receive":
		return bacnet.SegmentationReceive
	default:
		return bacnet.SegmentationNone
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("edgeo-bacnet version 1.0.0")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
