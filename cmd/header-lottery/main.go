package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	headerlottery "github.com/ericselin/header-lottery"
	"github.com/ericselin/header-lottery/cache"
	httpapi "github.com/ericselin/header-lottery/pkg/http-api"
	"github.com/ericselin/header-lottery/snapshot"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	originFlag         string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (default 8080)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Classification cache DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&originFlag, "origin", "", "Default origin for requests without origin or URL")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stderr)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [serve | fetch <url> | diff]\n", os.Args[0])
		flag.PrintDefaults()
	}

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	config, err := getConfig(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Str("file", configFilenameFlag).Msg("Cannot read config")
	}
	// flags take precedence over the config file
	if portFlag != 0 {
		config.Port = portFlag
	}
	if dbFilenameFlag != "" {
		config.DB = dbFilenameFlag
	}
	if originFlag != "" {
		config.DefaultOrigin = originFlag
	}
	if logFilenameFlag != "" {
		config.LogFile = logFilenameFlag
	}

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stderr, stdout is for results
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stderr})
	if config.LogFile != "" {
		if logFileOutput, err := os.OpenFile(config.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	db, err := cache.NewSQLiteCache(config.dbFilename())
	if err != nil {
		log.Fatal().Err(err).Str("db", config.DB).Msg("Cannot open classification cache")
	}
	defer db.Close()

	classifier := headerlottery.CreateClassifier(headerlottery.Config{
		Cache:  db,
		Logger: &log.Logger,
	})
	classifier.Prune()

	switch flag.Arg(0) {
	case "", "serve":
		err = serve(classifier, config)
	case "fetch":
		err = fetch(classifier, flag.Arg(1))
	case "diff":
		err = diff(os.Stdin)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed")
	}
}

func serve(classifier *headerlottery.Classifier, config Config) error {
	router := httpapi.NewRouter(classifier, log.Logger, httpapi.Options{
		ArchivePrefix: config.ArchivePrefix,
		DefaultOrigin: config.DefaultOrigin,
	})
	log.Info().Msgf("Listening on port %v", config.Port)
	return http.ListenAndServe(fmt.Sprintf(":%d", config.Port), router)
}

// fetch requests the given URL and prints the classification of the
// live response headers.
func fetch(classifier *headerlottery.Classifier, rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("fetch: no url given")
	}
	client := &http.Client{Timeout: 30 * time.Second}
	res, err := client.Get(rawURL)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	res.Body.Close()
	log.Debug().Str("url", rawURL).Int("status", res.StatusCode).Msg("Fetched live response")

	result, err := classifier.ClassifyResponse(res)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return printJSON(result)
}

// diff reads an earlier and a later snapshot from r and prints the report.
func diff(r io.Reader) error {
	var req httpapi.DiffRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("diff: reading snapshots: %w", err)
	}
	for _, s := range []snapshot.Snapshot{req.Earlier, req.Later} {
		if !s.Valid() {
			log.Warn().Str("url", s.URL).Str("archive", s.Archive).Msg("Snapshot is not a valid capture")
		}
	}
	return printJSON(snapshot.Diff(req.Earlier, req.Later))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
