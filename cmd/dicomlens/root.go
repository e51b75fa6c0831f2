package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the global flags and the state shared by subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool

	cfg    Config
	logger zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, cfg: DefaultConfig(), logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "dicomlens",
		Short: "Inspect DICOM files and DICOMDIR file sets",
		Long: `dicomlens decodes DICOM files held on disk: it lists their metadata,
exports the pixel data as PNG along with embedded documents, and prints the
patient/study/series/image hierarchy of DICOMDIR file sets.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Load configuration from YAML file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all output except errors")
	flags.BoolVar(&a.jsonOut, "json", false, "Output in JSON format")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newInspectCmd(a),
		newExportCmd(a),
		newTreeCmd(a),
		newLookupCmd(a),
	)
	return cmd
}

// setup loads the config file and builds the logger. Flags win over the file.
func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath != "" {
		cfg, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	levelName := a.cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = a.logLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	if a.verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: a.stderr, NoColor: a.noColor || !isTerminal(a.stderr)}
	a.logger = zerolog.New(console).Level(level).With().Timestamp().Logger()
	return nil
}

// printInfo prints a progress message unless --quiet is set.
func (a *app) printInfo(format string, args ...interface{}) {
	if !a.quiet {
		fmt.Fprintf(a.stdout, format, args...)
	}
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v interface{}) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// readInput reads a whole file; every decoder works on in-memory buffers.
func (a *app) readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	a.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("read input")
	return data, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
