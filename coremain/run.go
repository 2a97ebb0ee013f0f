package coremain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pmkol/sllist/mlog"
	"github.com/pmkol/sllist/pkg/script"
)

type runFlags struct {
	c     string
	dir   string
	out   string
	watch bool
}

var rootCmd = &cobra.Command{
	Use: "sllist",
}

func init() {
	rf := new(runFlags)
	runCmd := &cobra.Command{
		Use:   "run [-c script_file] [-d working_dir] [-o report_file] [-w]",
		Short: "Run a list script and print its report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunFromFlags(rf, cmd.OutOrStdout())
		},
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
	}
	rootCmd.AddCommand(runCmd)
	fs := runCmd.Flags()
	fs.StringVarP(&rf.c, "config", "c", "", "script file")
	fs.StringVarP(&rf.dir, "dir", "d", "", "working dir")
	fs.StringVarP(&rf.out, "output", "o", "", "report file, default is stdout")
	fs.BoolVarP(&rf.watch, "watch", "w", false, "re-run the script whenever its file changes")
}

func AddSubCmd(c *cobra.Command) {
	rootCmd.AddCommand(c)
}

func Run() error {
	return rootCmd.Execute()
}

func RunFromFlags(rf *runFlags, stdout io.Writer) error {
	if len(rf.dir) > 0 {
		err := os.Chdir(rf.dir)
		if err != nil {
			return fmt.Errorf("failed to change the current working directory, %w", err)
		}
		mlog.L().Info("working directory changed", zap.String("path", rf.dir))
	}

	fileUsed, err := runOnce(rf, stdout)
	if !rf.watch || len(fileUsed) == 0 {
		return err
	}
	if err != nil {
		mlog.L().Warn("script failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	mlog.L().Info("watching script file", zap.String("file", fileUsed))
	return watchScript(ctx, fileUsed, defaultWatchDelay, mlog.L(), func() {
		if _, err := runOnce(rf, stdout); err != nil {
			mlog.L().Warn("script failed", zap.Error(err))
		}
	})
}

// runOnce loads, merges and runs the script once. It returns the path of
// the script file if it could be read.
func runOnce(rf *runFlags, stdout io.Writer) (string, error) {
	cfg, fileUsed, err := loadConfig(rf.c)
	if err != nil {
		return "", fmt.Errorf("fail to load config, %w", err)
	}

	// Process-wide messages follow the script's level too.
	// An invalid level is reported by RunScript.
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		mlog.SetLevel(lvl)
	}

	if err := mergeInclude(cfg, 0, []string{fileUsed}); err != nil {
		return fileUsed, fmt.Errorf("failed to load sub config file, %w", err)
	}

	out := stdout
	if len(rf.out) > 0 {
		f, err := os.Create(rf.out)
		if err != nil {
			return fileUsed, fmt.Errorf("failed to create report file, %w", err)
		}
		defer f.Close()
		out = f
	}

	return fileUsed, RunScript(cfg, out)
}

// loadConfig load a config from a file. If filePath is empty, it will
// automatically search and load a file which name start with "config".
func loadConfig(filePath string) (*Config, string, error) {
	v := viper.New()

	if len(filePath) > 0 {
		v.SetConfigFile(filePath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	decoderOpt := func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
		cfg.TagName = "yaml"
		cfg.WeaklyTypedInput = true
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

func mergeInclude(cfg *Config, depth int, paths []string) error {
	depth++
	if depth > 8 {
		return fmt.Errorf("maximum include depth reached, include path is %s", strings.Join(paths, " -> "))
	}

	var includedSteps []script.Step
	for _, subCfgFile := range cfg.Include {
		subPaths := append(paths, subCfgFile)
		mlog.L().Info("reading sub config", zap.String("file", subCfgFile))
		subCfg, _, err := loadConfig(subCfgFile)
		if err != nil {
			return fmt.Errorf("failed to load sub config, %w", err)
		}
		if err := mergeInclude(subCfg, depth, subPaths); err != nil {
			return err
		}
		includedSteps = append(includedSteps, subCfg.Steps...)
	}

	cfg.Steps = append(includedSteps, cfg.Steps...)
	return nil
}
