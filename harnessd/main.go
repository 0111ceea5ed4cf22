package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	captivewebview "github.com/omnissa-archive/captive-web-view"
	"github.com/omnissa-archive/captive-web-view/command"
)

// libraryDir is the repository path of the built-in client library, served
// as the lowest-priority content root.
const libraryDir = "WebResources/library"

type flagSet struct {
	ConfigFile string
	Port       int
	Library    string
	Responses  string
	Verbose    bool
}

func main() {
	flags := &flagSet{}
	rootCmd := &cobra.Command{
		Use:   "harnessd [directory ...]",
		Short: "Development bridge for captive web view applications",
		Long: `harnessd serves the web content of a captive web view application from its
source directories, and answers the JSON commands that page script posts
back, so the web side can be developed in an ordinary desktop browser.

Each directory argument becomes a content root, highest priority first.
The built-in client library is always appended as the lowest-priority
root. The server binds the loopback interface only.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args)
		},
	}
	rootCmd.Flags().StringVarP(&flags.ConfigFile, "config", "c", "",
		"YAML configuration file")
	rootCmd.Flags().IntVarP(&flags.Port, "port", "p", defaultPort,
		"Port to listen on; 0 picks a free port")
	rootCmd.Flags().StringVar(&flags.Library, "library", "",
		"Built-in library directory; searched for when empty")
	rootCmd.Flags().StringVar(&flags.Responses, "responses", "",
		"Directory of canned .json command responses")
	rootCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false,
		"Log at debug level")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, flags *flagSet, args []string) error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if flags.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	config := NewConfig()
	if flags.ConfigFile != "" {
		if err := ReadConfigFile(flags.ConfigFile, config); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("port") {
		config.Port = flags.Port
	}
	if cmd.Flags().Changed("library") {
		config.Library = flags.Library
	}
	if cmd.Flags().Changed("responses") {
		config.Responses = flags.Responses
	}
	if len(args) > 0 {
		config.Directories = args
	}

	library, err := findLibrary(config.Library)
	if err != nil {
		return err
	}
	directories := append(append([]string{}, config.Directories...), library)

	srv, err := captivewebview.NewServer(config.Port, directories...)
	if err != nil {
		return err
	}
	srv.Name = "Harness"
	srv.ReadTimeout = time.Duration(config.ReadTimeout)
	srv.AccessLog = os.Stdout
	if config.Responses != "" {
		srv.HandleCommand(command.NewJSONFile(config.Responses))
	}
	srv.HandleCommand(command.NewFetch())

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	select {
	case err := <-serveErr:
		return err
	case <-srv.Started():
	}
	fmt.Print(srv.StartMessage())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logrus.Info("Stopping.")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if errServe := <-serveErr; errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		return errServe
	}
	return err
}

// findLibrary locates the built-in library root: an explicit override
// first, then upward from the working directory, then beside the
// executable. Running from anywhere inside a source checkout finds the
// checkout's own copy.
func findLibrary(override string) (string, error) {
	if override != "" {
		if info, err := os.Stat(override); err == nil && info.IsDir() {
			return override, nil
		}
		return "", fmt.Errorf("library directory %q not found", override)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filepath.FromSlash(libraryDir))
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if executable, err := os.Executable(); err == nil {
		candidate := filepath.Join(
			filepath.Dir(executable), filepath.FromSlash(libraryDir))
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("cannot find %s; name it with --library", libraryDir)
}
