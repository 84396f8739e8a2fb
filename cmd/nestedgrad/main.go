// Package main provides nestedgrad, a CLI that runs the nested-tensor backward
// kernels on small built-in examples.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/born-ml/nested/backend/cpu"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

const version = "v0.0.1-dev"

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags can also be set through
// NESTEDGRAD_* environment variables, e.g. NESTEDGRAD_WORKERS=4.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("nestedgrad")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "nestedgrad",
		Short:         "Backward passes for nested (ragged) tensors",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaults := cpu.DefaultParallelConfig()
	flags := root.PersistentFlags()
	flags.Int("workers", defaults.NumWorkers, "worker goroutines for data-parallel kernels (1 disables parallelism)")
	flags.Int("min-chunk", defaults.MinChunkSize, "minimum components per worker")
	_ = v.BindPFlag("workers", flags.Lookup("workers"))
	_ = v.BindPFlag("min-chunk", flags.Lookup("min-chunk"))

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	flags.AddGoFlagSet(klogFlags)

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "nestedgrad %s\n", version)
			},
		},
		newDemoCmd(v),
	)
	return root
}

// backendFromConfig builds the CPU backend from the resolved flags.
func backendFromConfig(v *viper.Viper) (*cpu.Backend, error) {
	cfg := cpu.ParallelConfig{
		NumWorkers:   v.GetInt("workers"),
		MinChunkSize: v.GetInt("min-chunk"),
	}
	cfg.Enabled = cfg.NumWorkers > 1
	if !cfg.Enabled {
		cfg = cpu.SequentialConfig()
	}
	if cfg.MinChunkSize < 1 {
		return nil, errors.Errorf("--min-chunk must be >= 1, got %d", cfg.MinChunkSize)
	}
	klog.V(1).Infof("parallel config: %+v", cfg)
	return cpu.NewWithConfig(cfg), nil
}
