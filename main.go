// transjson: batch-translate the string fields of a JSON document into
// several languages with an M2M100 translation model.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/minios-linux/transjson/config"
	"github.com/minios-linux/transjson/engine"
	"github.com/minios-linux/transjson/i18n"
	"github.com/minios-linux/transjson/langmeta"
	"github.com/minios-linux/transjson/logging"
	"github.com/minios-linux/transjson/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

// printSuccess prints an already translated message.
func printSuccess(msg string) {
	fmt.Fprintln(os.Stderr, colorGreen+"[OK]"+colorReset+" "+msg)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+i18n.T(format)+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transjson",
		Short: "Translate the string fields of a JSON file into several languages",
		Long: `transjson: batch JSON translation with M2M100.

Loads a flat JSON object, translates every top-level string value into each
target language with a facebook/m2m100 model, and writes one file per
language (translated_example_<lang>.json). Numbers, booleans, null, nested
objects and arrays are copied unchanged.

The model runs behind an engine backend:
  http     model server exposing /encode, /generate, /decode
  lambda   AWS Lambda function hosting the model

Settings are read from built-in defaults, .transjson.yaml, .env,
TRANSJSON_* environment variables and flags, in that order.

Running transjson without a command is the same as "transjson run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	a := addRunFlags(root)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, *a)
	}

	root.AddCommand(
		newRunCmd(),
		newLanguagesCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transjson version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
			fmt.Printf("  model:     %s\n", engine.DefaultModel)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// languages (list supported target languages)
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages the model can translate to",
		Long: `List the 100 language codes supported by M2M100 with their
language token ids and names.`,
		Run: func(cmd *cobra.Command, args []string) {
			printLanguages(cmd.OutOrStdout())
		},
	}

	return cmd
}

func printLanguages(w io.Writer) {
	codes := engine.Languages()
	width := langColumnWidth(codes)
	for _, code := range codes {
		id, _ := engine.LanguageID(code)
		m := langmeta.Resolve(code)
		flag := m.Flag
		if flag == "" {
			flag = "  "
		}
		fmt.Fprintf(w, "%s %-*s %6d  %s\n", flag, width, code, id, langmeta.Label(code))
	}
}

func langColumnWidth(langs []string) int {
	width := 0
	for _, l := range langs {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

// ---------------------------------------------------------------------------
// config (show effective configuration)
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration a run would use, after merging defaults,
.transjson.yaml, .env, environment variables and flags. The output is valid
.transjson.yaml content; the API key is masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Engine.APIKey = maskKey(cfg.Engine.APIKey)
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// maskKey returns a masked version of a key for display.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ---------------------------------------------------------------------------
// run (translate)
// ---------------------------------------------------------------------------

type runArgs struct {
	dryRun   bool
	progress bool
}

func addRunFlags(cmd *cobra.Command) *runArgs {
	a := &runArgs{}
	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be written without calling the engine")
	cmd.Flags().BoolVar(&a.progress, "progress", false, "Show a progress bar per language")

	_ = cmd.RegisterFlagCompletionFunc(config.FlagEngine, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			config.EngineHTTP + "\tModel server over HTTP",
			config.EngineLambda + "\tAWS Lambda function",
		}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc(config.FlagLang, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return engine.Languages(), cobra.ShellCompDirectiveNoFileComp
	})

	return a
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate the input file into every target language",
		Long: `Translate the input JSON file into every target language.

The input is loaded once. Languages are processed one after another; each
produces <output-dir>/<prefix><lang>.json. By default the first failure stops
the run. With --keep-going the failing language is skipped and all failures
are reported at the end.

Examples:
  # Defaults: data/input/example.json -> data/output, es,fr,de,zh
  transjson run

  # Other languages, through a model server
  transjson run --lang ja,ko --engine-url http://gpu-box:8008

  # Through an AWS Lambda function
  transjson run --engine lambda --lambda-function m2m100-418m --aws-region eu-west-1

  # Show what would be written
  transjson run --dry-run`,
	}

	a := addRunFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, *a)
	}

	return cmd
}

// loadConfig resolves the configuration for rootDir and cmd's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTranslate(cmd *cobra.Command, a runArgs) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logWarning("Interrupted, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	eng, endpoint, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	if err := checkLanguages(eng, cfg.Languages); err != nil {
		return err
	}

	logger, closeLog, err := logging.Open(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logInfo("Using %s engine (%s), model %s", cfg.Engine.Type, endpoint, cfg.Model)
	logInfo("Source: %s (%s)", cfg.SourceLang, langmeta.Label(cfg.SourceLang))
	for _, line := range targetLabels(cfg.Languages) {
		logInfo("  %s", line)
	}
	if a.dryRun {
		logInfo("Dry run: no files will be written")
	}

	opts := translate.Options{
		SourceLang:   cfg.SourceLang,
		OutputPrefix: cfg.OutputPrefix,
		KeepGoing:    cfg.KeepGoing,
		DryRun:       a.dryRun,
		Logger:       logger,
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
	}
	if a.progress {
		p := &progressReporter{}
		defer p.finish()
		opts.OnProgress = p.update
	}

	tr, err := translate.New(eng, opts)
	if err != nil {
		return err
	}

	if err := tr.Run(ctx, cfg.Input, cfg.OutputDir, cfg.Languages); err != nil {
		if ctx.Err() != nil {
			return errors.New(i18n.T("Translation interrupted"))
		}
		return err
	}

	if !a.dryRun {
		logSuccess("Translation complete!")
		printSuccess(summaryLine(len(translate.UniqueLanguages(cfg.Languages))))
	}
	return nil
}

// targetLabels lists each distinct target language with its name.
func targetLabels(langs []string) []string {
	var out []string
	for _, lang := range translate.UniqueLanguages(langs) {
		out = append(out, fmt.Sprintf("%s: %s", lang, langmeta.Label(lang)))
	}
	return out
}

// summaryLine reports how many languages a run produced.
func summaryLine(n int) string {
	return fmt.Sprintf(i18n.N("Translated into %d language", "Translated into %d languages", n), n)
}

// newEngine builds the configured backend and returns it with a short
// description of where it runs.
func newEngine(ctx context.Context, cfg *config.Config) (engine.Engine, string, error) {
	switch cfg.Engine.Type {
	case config.EngineLambda:
		e, err := engine.NewLambda(ctx, engine.LambdaConfig{
			FunctionName: cfg.Engine.LambdaFunction,
			Region:       cfg.Engine.AWSRegion,
			Model:        cfg.Model,
		})
		if err != nil {
			return nil, "", err
		}
		return e, cfg.Engine.LambdaFunction, nil
	case config.EngineHTTP:
		e, err := engine.NewHTTP(engine.HTTPConfig{
			BaseURL: cfg.Engine.URL,
			APIKey:  cfg.Engine.APIKey,
			Model:   cfg.Model,
			Proxy:   cfg.Engine.Proxy,
			Timeout: cfg.Engine.Timeout,
		})
		if err != nil {
			return nil, "", err
		}
		return e, cfg.Engine.URL, nil
	}
	return nil, "", fmt.Errorf("unknown engine %q", cfg.Engine.Type)
}

// checkLanguages reports every target language the engine cannot produce.
func checkLanguages(e engine.Engine, langs []string) error {
	var errs *multierror.Error
	for _, lang := range langs {
		if _, err := e.LanguageID(lang); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", lang, err))
		}
	}
	if errs == nil {
		return nil
	}
	errs.ErrorFormat = func(es []error) string {
		msgs := make([]string, len(es))
		for i, err := range es {
			msgs[i] = err.Error()
		}
		return i18n.T("unsupported target languages") + ": " + strings.Join(msgs, "; ") +
			"\n" + i18n.T("Run 'transjson languages' for the list of supported codes.")
	}
	return errs
}

// progressReporter draws one progress bar per language.
type progressReporter struct {
	lang string
	bar  *progressbar.ProgressBar
}

func (p *progressReporter) update(lang string, done, total int) {
	if p.bar == nil || p.lang != lang {
		p.finish()
		p.lang = lang
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(lang),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
