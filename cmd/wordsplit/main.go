// Copyright 2025 The WordSplit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word segmentation server, CLI [DBG] and one-shot
file mode.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordSplit restores the spaces of text that was written without them. It ranks
every split of the input by a bigram language model counted from a reference
corpus and returns the most probable one, with out-of-vocabulary words shown
in upper case.

# Usage

Split the contents of a file and print the result:

	wordsplit concatenated.txt

Start the MessagePack IPC server with debug logs:

	wordsplit -d

Run in CLI mode for interactive testing:

	wordsplit -c -maxlen 16

# Corpus

On first start the text8 corpus is downloaded from the configured URL,
counted, and the frequency tables are written to the msgpack cache. Later
starts only read the cache. With -no-fetch a missing corpus is an error.

# Configuration

Runtime configuration is managed through a TOML file, created with defaults
if it doesn't exist:

	[segment]
	max_word_length = 20
	max_steps = 0
	cache_size = 256

	[model]
	prior = 1e-08
	base = 0.038461538461538464

	[corpus]
	path = "text8.zip"
	url = "http://mattmahoney.net/dc/text8.zip"
	expected_size = 31344016
	cache_path = "freq_counts.msgpack"
	min_frequency_percent = 0.0

# Command Line Flags

	-version   Show current version
	-d         Enable debug mode with detailed logging
	-c         Run in CLI mode instead of server mode
	-config    Path to a config file
	-data      Directory relative corpus and cache paths resolve against
	-corpus    Corpus file (plain text or zip)
	-cache     Frequency cache file, empty disables caching
	-maxlen    Longest candidate word
	-no-fetch  Never download the corpus
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordsplit/internal/cli"
	"github.com/bastiangx/wordsplit/internal/logger"
	"github.com/bastiangx/wordsplit/pkg/config"
	"github.com/bastiangx/wordsplit/pkg/server"
	"github.com/bastiangx/wordsplit/pkg/split"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordsplit"
	gh      = "https://github.com/bastiangx/wordsplit"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow; building and running the engine live in other packages.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Path to a custom config file")
	dataDir := flag.String("data", "", "Directory that relative corpus and cache paths resolve against")
	corpusPath := flag.String("corpus", "", "Corpus file, plain text or zip (default from config)")
	cachePath := flag.String("cache", "", "Frequency cache file (default from config)")
	maxLen := flag.Int("maxlen", 0, fmt.Sprintf("Longest candidate word (default %d)", defaultConfig.Segment.MaxWordLength))
	noFetch := flag.Bool("no-fetch", false, "Never download the corpus")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [concatenated_file]\n", AppName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !*debugMode {
		log.SetLevel(logger.ParseLevel(appConfig.Log.Level))
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(activePath))

	applyFlags(appConfig, *corpusPath, *cachePath, *maxLen, flagWasSet("cache"))
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	counts, err := loadCounts(appConfig, *dataDir, *noFetch)
	if err != nil {
		log.Fatalf("Failed to load frequency tables: %v", err)
	}

	splitter, err := split.New(counts, appConfig.SplitOptions())
	if err != nil {
		log.Fatalf("Failed to build the segmenter: %v", err)
	}
	log.Debug("Segmenter init done", "words", splitter.Dictionary().Len())

	if flag.NArg() > 0 {
		if err := splitFile(splitter, flag.Arg(0), os.Stdout); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(splitter, os.Stdin, os.Stdout, appConfig.CLI.Color, appConfig.CLI.ShowScore)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(splitter, appConfig.Server.MaxInputLength)
	showStartupInfo(activePath)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Debugf("Served %d requests", srv.RequestCount())
}

// applyFlags lets command line flags override the loaded config.
func applyFlags(cfg *config.Config, corpusPath, cachePath string, maxLen int, cacheSet bool) {
	if corpusPath != "" {
		cfg.Corpus.Path = corpusPath
	}
	if cacheSet {
		cfg.Corpus.CachePath = cachePath
	}
	if maxLen != 0 {
		cfg.Segment.MaxWordLength = maxLen
	}
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ WordSplit ] Puts the spaces back!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo goes to stderr, stdout only carries msgpack frames.
func showStartupInfo(configPath string) {
	info := logger.NewWithConfig(os.Stderr, "", log.InfoLevel, false, false, log.TextFormatter)
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	info.Info("status: ready")
}
