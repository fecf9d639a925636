package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/common"
	"github.com/zeu5/qgrid/core"
)

var (
	flags  *common.Flags = common.DefaultFlags()
	logger core.Logger   = core.NewLogger()
	// fs backs every file the commands read or write
	fs vfs.FS = vfs.OSFS
)

// UpdateFlags resolves the flags of cmd through viper and configures the logger.
func UpdateFlags(cmd *cobra.Command) error {
	v := viper.New()
	if err := flags.Load(v, cmd.Flags()); err != nil {
		return withExitCode(err)
	}
	return setupLogger(v, cmd.ErrOrStderr())
}

func setupLogger(v *viper.Viper, stderr io.Writer) error {
	logger.SetLevel(logrus.InfoLevel)
	if v.GetBool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: !isTerminal(stderr),
		FullTimestamp: true,
	})

	var out io.Writer = stderr
	if v.GetBool("quiet") {
		out = io.Discard
	}
	if logfile := v.GetString("logfile"); logfile != "" {
		f, err := fs.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Errorf("Could not open %s for logging to file: %s", logfile, err.Error())
		} else if v.GetBool("quiet") {
			out = f
		} else {
			out = io.MultiWriter(stderr, f)
		}
	}
	logger.SetOutput(out)
	return nil
}

// interruptible returns a context cancelled on the first interrupt. Calling
// done releases the signal handler.
func interruptible() (ctx context.Context, done func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
			logger.Warn("interrupted, stopping after the current episode")
		case <-doneCh:
		}
		cancel()
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		close(doneCh)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
