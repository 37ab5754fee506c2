// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/flatten/internal/collector"
	"github.com/temirov/flatten/internal/config"
	"github.com/temirov/flatten/internal/filter"
	"github.com/temirov/flatten/internal/output"
	"github.com/temirov/flatten/internal/services/clipboard"
	"github.com/temirov/flatten/internal/sink"
	"github.com/temirov/flatten/internal/tokenizer"
	"github.com/temirov/flatten/internal/utils"
	"github.com/temirov/flatten/internal/walker"
)

const (
	outputFormatFlagName      = "output-format"
	outputFormatFlagShorthand = "o"
	printFlagName             = "print"
	printFlagShorthand        = "p"
	includeFlagName           = "include"
	includeFlagShorthand      = "i"
	excludeFlagName           = "exclude"
	excludeFlagShorthand      = "e"
	noGitignoreFlagName       = "no-gitignore"
	noIgnoreFlagName          = "no-ignore"
	includeGitFlagName        = "git"
	tokensFlagName            = "tokens"
	modelFlagName             = "model"
	configFlagName            = "config"
	verboseFlagName           = "verbose"
	versionFlagName           = "version"
	globalFlagName            = "global"
	forceFlagName             = "force"

	defaultOutputFormat = "full"

	rootUse              = "flatten [paths...]"
	rootShortDescription = "flatten a codebase into one Markdown document"
	rootLongDescription  = `flatten walks files and directories, keeps text source files that survive
.gitignore and .ignore rules and the include and exclude globs, and renders them
as a single Markdown document: a tree summary or a full listing with contents.
The document goes to a file with --file, to standard output with --print, and to
the clipboard otherwise.`
	rootUsageExample = `  # Copy the full document for the current directory to the clipboard
  flatten

  # Print a tree of the Rust sources under src
  flatten -o tree -p -i '*.rs' src

  # Write the document to flatten.md, skipping tests
  flatten -f -e '*_test.go'`

	initUse              = "init-config"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a default configuration to .flatten.yaml in the working directory,
or to ~/.flatten/config.yaml with --global. Existing files are kept unless --force is set.`

	outputFormatFlagDescription = "output format: full or tree"
	fileFlagDescription         = "write output to FILE (flatten.md when no value is given)"
	printFlagDescription        = "print output to standard output"
	includeFlagDescription      = "comma separated glob patterns to include"
	excludeFlagDescription      = "comma separated glob patterns to exclude"
	noGitignoreFlagDescription  = "do not use .gitignore"
	noIgnoreFlagDescription     = "do not use .ignore"
	includeGitFlagDescription   = "include git directory"
	tokensFlagDescription       = "report the token count of the document"
	modelFlagDescription        = "tokenizer model to use for token counting"
	configFlagDescription       = "path to a configuration file used instead of ./.flatten.yaml"
	verboseFlagDescription      = "log ignored paths and other debug details"
	versionFlagDescription      = "display application version"
	globalFlagDescription       = "write the global configuration file"
	forceFlagDescription        = "overwrite an existing configuration file"

	versionTemplate               = "flatten version: %s\n"
	noFilesFoundMessage           = "No files found matching the criteria."
	configurationWrittenFormat    = "Configuration written to: %s\n"
	tokenCountMessageFormat       = "Token count: %d (%s)"
	warningTokenCountFormat       = "Warning: failed to count tokens: %v"
	loadConfigurationErrorFormat  = "load configuration: %w"
	initConfigurationErrorFormat  = "initialize configuration: %w"
	tokenizerInitializationFormat = "initialize tokenizer: %w"
)

// CounterFactory builds the token counter used by --tokens.
type CounterFactory func(cfg tokenizer.Config) (tokenizer.Counter, error)

// Dependencies carries the capabilities a run talks to. Empty fields use the process
// defaults.
type Dependencies struct {
	StandardOutput   io.Writer
	Logger           *zap.Logger
	Copier           clipboard.Copier
	NewTokenCounter  CounterFactory
	WorkingDirectory string
	HomeDirectory    string
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.StandardOutput == nil {
		dependencies.StandardOutput = os.Stdout
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewTokenCounter == nil {
		dependencies.NewTokenCounter = tokenizer.NewCounter
	}
	return dependencies
}

// Execute runs the flatten application with the process arguments.
func Execute(logger *zap.Logger) error {
	return executeWithArguments(Dependencies{Logger: logger}, os.Args[1:])
}

func executeWithArguments(dependencies Dependencies, arguments []string) error {
	rootCommand := createRootCommand(dependencies.withDefaults())
	rootCommand.SetArgs(normalizeFileFlagArguments(arguments))
	return rootCommand.Execute()
}

// flagValues stores the raw command line values before they are merged with configuration.
type flagValues struct {
	outputFormat      string
	filePath          string
	printOutput       bool
	includePatterns   []string
	excludePatterns   []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	tokensEnabled     bool
	tokenModel        string
	configPath        string
	verbose           bool
	showVersion       bool
}

// runOptions is the resolved configuration of one flatten run.
type runOptions struct {
	outputFormat    string
	destination     sink.Destination
	includePatterns []string
	excludePatterns []string
	walkerOptions   walker.Options
	tokensEnabled   bool
	tokenModel      string
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	var values flagValues

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if values.showVersion {
				_, writeError := fmt.Fprintf(dependencies.StandardOutput, versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: dependencies.WorkingDirectory,
				HomeDirectory:    dependencies.HomeDirectory,
				ExplicitFilePath: values.configPath,
			})
			if loadError != nil {
				return fmt.Errorf(loadConfigurationErrorFormat, loadError)
			}
			options := resolveRunOptions(command, values, applicationConfiguration)
			options.walkerOptions.Logger = dependencies.Logger
			return runFlatten(dependencies, options, arguments)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVarP(&values.outputFormat, outputFormatFlagName, outputFormatFlagShorthand, defaultOutputFormat, outputFormatFlagDescription)
	flagSet.StringVarP(&values.filePath, fileFlagName, fileFlagShorthand, "", fileFlagDescription)
	if fileFlag := flagSet.Lookup(fileFlagName); fileFlag != nil {
		fileFlag.NoOptDefVal = utils.DefaultOutputFileName
	}
	flagSet.BoolVarP(&values.printOutput, printFlagName, printFlagShorthand, false, printFlagDescription)
	flagSet.StringArrayVarP(&values.includePatterns, includeFlagName, includeFlagShorthand, nil, includeFlagDescription)
	flagSet.StringArrayVarP(&values.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	flagSet.BoolVar(&values.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	flagSet.BoolVar(&values.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	flagSet.BoolVar(&values.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	flagSet.BoolVar(&values.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&values.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flagSet.StringVar(&values.configPath, configFlagName, "", configFlagDescription)
	flagSet.BoolVar(&values.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&values.verbose, verboseFlagName, false, verboseFlagDescription)

	rootCommand.SetOut(dependencies.StandardOutput)
	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.CompletionOptions.DisableDefaultCmd = true
	return rootCommand
}

// createInitCommand returns the init-config subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var writeGlobal bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            overwrite,
				WorkingDirectory: dependencies.WorkingDirectory,
				HomeDirectory:    dependencies.HomeDirectory,
			})
			if initError != nil {
				return fmt.Errorf(initConfigurationErrorFormat, initError)
			}
			_, writeError := fmt.Fprintf(dependencies.StandardOutput, configurationWrittenFormat, writtenPath)
			return writeError
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&overwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// resolveRunOptions overlays explicitly set flags onto the loaded configuration.
func resolveRunOptions(command *cobra.Command, values flagValues, applicationConfiguration config.ApplicationConfiguration) runOptions {
	flagSet := command.Flags()

	options := runOptions{
		outputFormat:    defaultOutputFormat,
		includePatterns: applicationConfiguration.Include,
		excludePatterns: applicationConfiguration.Exclude,
		destination: sink.Destination{
			FilePath: applicationConfiguration.File,
			Print:    config.BoolOrDefault(applicationConfiguration.Print, false),
		},
		walkerOptions: walker.Options{
			UseGitignore:  config.BoolOrDefault(applicationConfiguration.Paths.UseGitignore, true),
			UseIgnoreFile: config.BoolOrDefault(applicationConfiguration.Paths.UseIgnoreFile, true),
			IncludeGit:    config.BoolOrDefault(applicationConfiguration.Paths.IncludeGit, false),
		},
		tokensEnabled: config.BoolOrDefault(applicationConfiguration.Tokens.Enabled, false),
		tokenModel:    tokenizer.DefaultModel,
	}
	if applicationConfiguration.OutputFormat != "" {
		options.outputFormat = applicationConfiguration.OutputFormat
	}
	if applicationConfiguration.Tokens.Model != "" {
		options.tokenModel = applicationConfiguration.Tokens.Model
	}

	if flagSet.Changed(outputFormatFlagName) {
		options.outputFormat = values.outputFormat
	}
	if flagSet.Changed(fileFlagName) {
		options.destination.FilePath = values.filePath
		if strings.TrimSpace(values.filePath) == "" {
			options.destination.FilePath = utils.DefaultOutputFileName
		}
	}
	if flagSet.Changed(printFlagName) {
		options.destination.Print = values.printOutput
	}
	if flagSet.Changed(includeFlagName) {
		options.includePatterns = parsePatternArguments(values.includePatterns)
	}
	if flagSet.Changed(excludeFlagName) {
		options.excludePatterns = parsePatternArguments(values.excludePatterns)
	}
	if flagSet.Changed(noGitignoreFlagName) {
		options.walkerOptions.UseGitignore = !values.disableGitignore
	}
	if flagSet.Changed(noIgnoreFlagName) {
		options.walkerOptions.UseIgnoreFile = !values.disableIgnoreFile
	}
	if flagSet.Changed(includeGitFlagName) {
		options.walkerOptions.IncludeGit = values.includeGit
	}
	if flagSet.Changed(tokensFlagName) {
		options.tokensEnabled = values.tokensEnabled
	}
	if flagSet.Changed(modelFlagName) {
		options.tokenModel = values.tokenModel
	}
	return options
}

// parsePatternArguments splits every repeated pattern flag value on commas.
func parsePatternArguments(arguments []string) []string {
	var patterns []string
	for _, argument := range arguments {
		patterns = append(patterns, filter.ParsePatternList(argument)...)
	}
	return utils.DeduplicatePatterns(patterns)
}

// runFlatten collects, renders and delivers the document for inputs.
func runFlatten(dependencies Dependencies, options runOptions, inputs []string) error {
	formatter, formatterError := output.NewFormatter(options.outputFormat, nil)
	if formatterError != nil {
		return formatterError
	}

	fileCollector := collector.New(
		filter.New(options.includePatterns, options.excludePatterns),
		walker.NewIgnoreWalker(options.walkerOptions),
		dependencies.Logger,
	)
	files := fileCollector.Collect(inputs)
	if len(files) == 0 {
		_, writeError := fmt.Fprintln(dependencies.StandardOutput, noFilesFoundMessage)
		return writeError
	}

	document := formatter.Render(files)
	documentSink := sink.New(dependencies.StandardOutput, dependencies.Copier, dependencies.Logger, nil)
	if deliverError := documentSink.Deliver(document, options.destination); deliverError != nil {
		return deliverError
	}

	if options.tokensEnabled {
		reportTokenCount(dependencies, options.tokenModel, document)
	}
	return nil
}

// reportTokenCount logs the token count of document. Failures are warnings only.
func reportTokenCount(dependencies Dependencies, model string, document string) {
	counter, counterError := dependencies.NewTokenCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		dependencies.Logger.Warn(fmt.Sprintf(warningTokenCountFormat, fmt.Errorf(tokenizerInitializationFormat, counterError)))
		return
	}
	tokenCount, countError := counter.CountString(document)
	if countError != nil {
		dependencies.Logger.Warn(fmt.Sprintf(warningTokenCountFormat, countError))
		return
	}
	dependencies.Logger.Info(fmt.Sprintf(tokenCountMessageFormat, tokenCount, counter.Name()))
}
