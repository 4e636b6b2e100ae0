package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tools "github.com/annie-exp/toolanalysis_go/pkg"
	sqlx "github.com/jmoiron/sqlx"
)

var dbConn *sqlx.DB
var configuration tools.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	tools.SetConfiguration(configuration)
	tools.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
	}
	if VerbosityLevel > 0 {
		printConfiguration(configuration, logger)
	}

	if !configuration.NoDB {
		dbConn, err = tools.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connecting to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()
	}

	evtCount, err := tools.CountEvents(configuration.EventFile)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", evtCount)
		logger.Info(message, "main")
	}

	source, err := tools.NewEventFileSource(configuration.EventFile)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	defer source.Close()

	data := tools.NewDataModel()
	chain := tools.NewToolChain(configuration, data,
		tools.NewLoadGeometry(dbConn),
		tools.NewPhaseITreeMaker(dbConn),
	)

	// The geometry DB overlay is keyed by run number, so the first
	// event has to be on the store before the tools initialise.
	ok, err := source.NextEvent(data)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	if !ok {
		logger.Error("event file is empty")
		return
	}

	if err := chain.Initialise(); err != nil {
		logger.Error(err.Error())
		return
	}

	start := time.Now()
	for {
		if err := chain.Execute(); err != nil {
			logger.Error(err.Error())
			if !DiscardErrors {
				break
			}
		}

		ok, err := source.NextEvent(data)
		if err != nil {
			logger.Error(err.Error())
			break
		}
		if !ok {
			break
		}
	}

	if err := chain.Finalise(); err != nil {
		logger.Error(err.Error())
	}

	duration := time.Since(start)
	message := fmt.Sprintf("Processed %d events (%d discarded) in %d ms",
		chain.EventsProcessed, chain.EventsDiscarded, duration.Milliseconds())
	logger.Info(message, "main")
}
