package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/ValentinKolb/infostress/cmd/kv"
	"github.com/ValentinKolb/infostress/cmd/util"
	"github.com/ValentinKolb/infostress/lib/stress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd runs the stress test when called without a subcommand
	RootCmd = &cobra.Command{
		Use:   "infostress [pause-at]",
		Short: "stress test an infod server",
		Long: fmt.Sprintf(`infostress (v%s)

Stress tests a running infod server by applying a long, reproducible sequence
of pseudo-random writes and deletes while tracking the expected contents in
memory. Every few thousand steps the complete store is read back and compared
against the expectation. All keys are deleted before the test starts.

If pause-at is given, the test stops before that step, prints the expected
contents and the next operation and waits for enter.`, Version),
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: util.PrepareCommand,
		RunE:              runStress,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of infostress",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("infostress v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupClientFlags(RootCmd)

	key := "seed"
	RootCmd.Flags().Int64(key, stress.DefaultSeed, util.WrapString("Seed of the operation sequence"))
	key = "steps"
	RootCmd.Flags().Int(key, stress.DefaultSteps, util.WrapString("Number of operations to apply"))
	key = "check-interval"
	RootCmd.Flags().Int(key, stress.DefaultCheckInterval, util.WrapString("Compare the complete store with the expected contents every this many steps"))
	key = "report"
	RootCmd.Flags().String(key, "", util.WrapString("Optional path to write a YAML report with both data sets if the test fails"))
	key = "metrics"
	RootCmd.Flags().String(key, "", util.WrapString("Optional path to write the run metrics in Prometheus text format"))
}

func runStress(cmd *cobra.Command, args []string) error {
	config := stress.DefaultConfig()
	config.Seed = viper.GetInt64("seed")
	config.Steps = viper.GetInt("steps")
	config.CheckInterval = viper.GetInt("check-interval")
	config.ReportPath = viper.GetString("report")
	config.MetricsPath = viper.GetString("metrics")

	if len(args) == 1 {
		pauseAt, err := strconv.Atoi(args[0])
		if err != nil || pauseAt < 0 {
			return fmt.Errorf("pause-at must be a step number, got %q", args[0])
		}
		config.PauseAt = pauseAt
	}

	// From here on errors are test failures, not usage errors
	cmd.SilenceUsage = true

	c, err := util.NewClient()
	if err != nil {
		return err
	}
	defer c.Close()

	driver, err := stress.NewDriver(c, config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return driver.Run(ctx)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
