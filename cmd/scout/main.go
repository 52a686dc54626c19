package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/notifications"
	"github.com/insightpipe/scout/internal/research"
	"github.com/insightpipe/scout/internal/storage"
)

type options struct {
	Config   string   `long:"config" env:"SCOUT_CONFIG" default:"config.yaml" description:"Path to the YAML configuration file"`
	Keywords []string `short:"k" long:"keywords" required:"true" description:"Keyword to research (repeatable)"`
	Websites []string `short:"w" long:"websites" description:"Website URL to crawl (repeatable)"`
	DaysBack int      `long:"days-back" default:"7" description:"How many days back to search"`
	MaxItems int      `long:"max-items" default:"100" description:"Maximum items per source"`
	Topics   int      `long:"topics" default:"-1" description:"Number of topics to extract (0 disables topic modeling)"`
	Verbose  bool     `short:"v" long:"verbose" description:"Enable debug logging"`
}

func main() {
	var opts options

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	switch {
	case opts.Topics == 0:
		cfg.Analysis.EnableTopics = false
	case opts.Topics > 0:
		cfg.Analysis.EnableTopics = true
		cfg.Analysis.TopicCount = opts.Topics
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose || cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	store, err := storage.NewFilesystemStorage(cfg.Storage.ProcessedDir, log.WithField("component", "storage"))
	if err != nil {
		log.Errorf("Failed to initialize storage: %v", err)
		os.Exit(1)
	}

	var archive storage.StorageInterface
	if cfg.Storage.AzureAccount != "" {
		azure, err := storage.NewAzureStorage(cfg.Storage.AzureAccount, cfg.Storage.AzureContainer, log.WithField("component", "archive"))
		if err != nil {
			log.Errorf("Failed to initialize Azure archive, continuing without it: %v", err)
		} else {
			archive = azure
		}
	}

	notifier := notifications.NewService(cfg.Notifications, log.WithField("component", "notifications"))
	service := research.NewService(cfg, store, archive, notifier, log.WithField("component", "research"))

	report, err := service.Run(context.Background(), research.Params{
		Keywords: opts.Keywords,
		Websites: opts.Websites,
		DaysBack: opts.DaysBack,
		MaxItems: opts.MaxItems,
	})
	if err != nil {
		log.Errorf("Research run failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Collected %d items across %d sources\n",
		report.Metadata.TotalItems, len(report.Data.Social)+len(report.Data.Websites))
	for platform, items := range report.Data.Social {
		fmt.Printf("  %s: %d items\n", platform, len(items))
	}
	for host, pages := range report.Data.Websites {
		fmt.Printf("  %s: %d pages\n", host, len(pages))
	}
	if report.Analytics != nil {
		fmt.Printf("Average compound sentiment: %.3f\n", report.Analytics.AverageSentiment.Compound)
	}
}
