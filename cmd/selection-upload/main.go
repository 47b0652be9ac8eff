package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/fpang/selection-upload/internal/awsboot"
	"github.com/fpang/selection-upload/internal/cli"
	"github.com/fpang/selection-upload/internal/config"
	"github.com/fpang/selection-upload/internal/events"
	"github.com/fpang/selection-upload/internal/filehandler"
	"github.com/fpang/selection-upload/internal/ingest"
	"github.com/fpang/selection-upload/internal/logging"
	"github.com/fpang/selection-upload/internal/metrics"
	"github.com/fpang/selection-upload/internal/objectstore"
	"github.com/fpang/selection-upload/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// CLI flags
var (
	directoryFlag   string
	usernameFlag    string
	eventIDFlag     string
	eventTitleFlag  string
	maxPhotosFlag   int
	bucketFlag      string
	backendFlag     string
	concurrencyFlag int
	urlRetriesFlag  int
	outputFlag      string
	reportFlag      string
	emfFlag         bool
	dryRunFlag      bool
	pickFlag        bool
	noPromptFlag    bool
	envFileFlag     string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "selection-upload",
	Short: "Publish an event's photos as a curation selection",
	Long: `Selection Upload publishes a directory of event photos for curation.

Each image (jpg, jpeg, png, webp) is uploaded to object storage, given a
7-day access URL and recorded as a SelectionItem under a new Selection.
Finally the event is marked selection-available.

Values not given as flags are read from SELECTION_* environment variables
(or a .env file) and prompted for when still missing.

Examples:
  selection-upload -d ./gala --username alice --event-id ev1 --event-title "Spring Gala" --max-photos 20
  selection-upload --pick --output json --report run.json.gz
  selection-upload -d ./gala --dry-run
  selection-upload status --selection-id 6f1c...`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMain,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&directoryFlag, "directory", "d", "", "Directory containing the selection images")
	f.StringVarP(&usernameFlag, "username", "u", "", "Owner of the selection")
	f.StringVarP(&eventIDFlag, "event-id", "e", "", "Event the selection belongs to")
	f.StringVar(&eventTitleFlag, "event-title", "", "Human-readable event title")
	f.IntVar(&maxPhotosFlag, "max-photos", 0, "Maximum number of photos the user may select")
	f.StringVarP(&bucketFlag, "bucket", "b", "", "Object storage bucket")
	f.StringVar(&backendFlag, "backend", "", "Object storage backend: s3 or supabase")
	f.IntVarP(&concurrencyFlag, "concurrency", "c", 0, "Per-stage concurrency limit (default 10, 0 or negative = unbounded)")
	f.IntVar(&urlRetriesFlag, "url-retries", 0, "Retries per access URL")
	f.StringVarP(&outputFlag, "output", "o", "", "Summary format: text or json")
	f.StringVar(&reportFlag, "report", "", "Also write the JSON report to this file (.gz or .zst compresses)")
	f.BoolVar(&emfFlag, "emf", false, "Emit CloudWatch EMF metrics on stdout")
	f.BoolVar(&dryRunFlag, "dry-run", false, "Only scan and extract metadata; publish nothing")
	f.BoolVar(&pickFlag, "pick", false, "Choose the directory with a folder dialog")
	f.BoolVar(&noPromptFlag, "no-prompt", false, "Fail instead of prompting for missing values")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Optional dotenv file to load")

	rootCmd.AddCommand(statusCmd)
}

func main() {
	os.Exit(execute())
}

// exitCode carries the run's exit status out of cobra.
var exitCode = cli.ExitOK

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		if exitCode == cli.ExitOK {
			exitCode = cli.ExitCode(nil, err)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode
}

// loadConfig reads the dotenv file and environment and initializes logging.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(envFileFlag); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &ingest.ConfigurationError{Field: "env-file", Err: err}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, &ingest.ConfigurationError{Err: err}
	}
	logging.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	return cfg, nil
}

// applyFlags overrides environment values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("directory") {
		cfg.Run.Directory = directoryFlag
	}
	if set("username") {
		cfg.Run.Username = usernameFlag
	}
	if set("event-id") {
		cfg.Run.EventID = eventIDFlag
	}
	if set("event-title") {
		cfg.Run.EventTitle = eventTitleFlag
	}
	if set("max-photos") {
		cfg.Run.MaxNumberOfPhotos = maxPhotosFlag
	}
	if set("bucket") {
		cfg.Storage.Bucket = bucketFlag
	}
	if set("backend") {
		cfg.Storage.Backend = backendFlag
	}
	if set("concurrency") {
		cfg.Run.Concurrency = concurrencyFlag
	}
	if set("url-retries") {
		cfg.Run.URLRetries = urlRetriesFlag
	}
	if set("output") {
		cfg.App.Output = outputFlag
	}
	if set("report") {
		cfg.App.Report = reportFlag
	}
	if set("emf") {
		cfg.App.EMF = emfFlag
	}
	if set("dry-run") {
		cfg.Run.DryRun = dryRunFlag
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) error {
	resolveStart := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pickFlag && cfg.Run.Directory == "" {
		dir, err := cli.PickDirectory("Select the selection folder")
		if err != nil {
			return &ingest.ConfigurationError{Field: "directory", Err: err}
		}
		cfg.Run.Directory = dir
	}

	if !noPromptFlag {
		if err := cli.FillMissing(cli.NewPrompter(os.Stdin, os.Stderr), cfg); err != nil {
			return &ingest.ConfigurationError{Err: err}
		}
	}

	dir, err := filehandler.ValidateDirectory(cfg.Run.Directory)
	if err != nil {
		return &ingest.ConfigurationError{Field: "directory", Err: err}
	}
	cfg.Run.Directory = dir

	var clients *awsboot.Clients
	if cfg.UsesAWS() {
		awsCfg, err := awsboot.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return &ingest.ConfigurationError{Field: "aws", Err: err}
		}
		clients = awsboot.NewClients(awsCfg)

		if awsboot.NeedsParams(cfg) {
			if err := awsboot.ResolveParams(ctx, clients.SSM, cfg); err != nil {
				return &ingest.ConfigurationError{Field: "ssm", Err: err}
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := buildDeps(cfg, clients)
	if err != nil {
		return err
	}

	logRun(cfg, deps, time.Since(resolveStart))

	pipeline := ingest.New(ingest.Options{
		Directory:         cfg.Run.Directory,
		Username:          cfg.Run.Username,
		EventID:           cfg.Run.EventID,
		EventTitle:        cfg.Run.EventTitle,
		MaxNumberOfPhotos: cfg.Run.MaxNumberOfPhotos,
		Concurrency:       cfg.Run.Concurrency,
		URLRetry: ingest.RetryPolicy{
			Retries: cfg.Run.URLRetries,
			Backoff: cfg.Run.URLBackoff,
		},
		DryRun: cfg.Run.DryRun,
	}, deps)

	report, runErr := pipeline.Run(ctx)
	exitCode = cli.ExitCode(report, runErr)

	if err := emitOutput(cfg, report); err != nil {
		log.Error().Err(err).Msg("Failed to write run output")
		if runErr == nil {
			exitCode = cli.ExitFailure
		}
	}
	if runErr != nil {
		log.Error().Err(runErr).Str("state", string(report.State)).Msg("Selection upload failed")
	}
	return nil
}

// buildDeps wires the storage, record and notification backends.
func buildDeps(cfg *config.Config, clients *awsboot.Clients) (ingest.Deps, error) {
	if cfg.Run.DryRun {
		return ingest.Deps{}, nil
	}

	var objects objectstore.Store
	switch cfg.Storage.Backend {
	case config.BackendSupabase:
		objects = objectstore.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Storage.Bucket)
	default:
		objects = objectstore.NewS3Store(clients.S3, cfg.Storage.Bucket)
	}

	records := store.NewDynamoStore(clients.DynamoDB, store.Tables{
		Selection:     cfg.Tables.Selection,
		SelectionItem: cfg.Tables.SelectionItem,
		Events:        cfg.Tables.Events,
	})

	var notifier events.Notifier = events.Nop{}
	if cfg.Events.Enabled() {
		notifier = events.NewBusNotifier(clients.EventBridge, cfg.Events.Bus)
	}

	return ingest.Deps{Objects: objects, Records: records, Notifier: notifier}, nil
}

func logRun(cfg *config.Config, deps ingest.Deps, resolve time.Duration) {
	rl := logging.NewRunLogger("selection-upload").
		Version(version).
		Table("selection", cfg.Tables.Selection).
		Table("selectionItem", cfg.Tables.SelectionItem).
		Table("events", cfg.Tables.Events).
		SSMParam("bucket", cfg.Storage.SSMBucketParam).
		SSMParam("supabaseKey", cfg.Supabase.SSMKeyParam).
		Feature("dryRun", cfg.Run.DryRun).
		Feature("emf", cfg.App.EMF).
		Feature("events", cfg.Events.Enabled()).
		Config("directory", cfg.Run.Directory).
		Config("eventId", cfg.Run.EventID).
		Config("username", cfg.Run.Username).
		Config("backend", cfg.Storage.Backend).
		Config("concurrency", fmt.Sprint(cfg.Run.Concurrency)).
		Config("urlRetries", fmt.Sprint(cfg.Run.URLRetries)).
		ResolveDuration(resolve)
	if deps.Objects != nil {
		rl.Bucket("media", deps.Objects.Location())
	}
	rl.Log()
}

// emitOutput prints the summary or JSON report, then the optional report
// file and EMF line.
func emitOutput(cfg *config.Config, report *ingest.Report) error {
	var errs error

	if cfg.App.Output == "json" {
		if err := cli.WriteJSON(os.Stdout, report); err != nil {
			errs = multierr.Append(errs, err)
		}
	} else {
		cli.PrintSummary(os.Stdout, report)
	}

	if cfg.App.Report != "" {
		if err := cli.WriteReportFile(cfg.App.Report, report); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			log.Info().Str("path", cfg.App.Report).Msg("Report written")
		}
	}

	if cfg.App.EMF {
		rec := metrics.New(os.Stdout, metrics.Namespace).
			Dimension("Backend", cfg.Storage.Backend)
		if err := report.Record(rec).Flush(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
