package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Args are command line arguments.
type Args struct {
	ConfigFile string
	ServerName string
}

func getArgs() *Args {
	configFile := flag.String("conf", "", "Configuration file.")
	serverName := flag.String(
		"server-name",
		"",
		"Server name. Overrides server-name from config.",
	)

	flag.Parse()

	if len(*configFile) == 0 {
		printUsage(fmt.Errorf("you must provide a configuration file"))
		return nil
	}

	configPath, err := filepath.Abs(*configFile)
	if err != nil {
		printUsage(fmt.Errorf(
			"unable to determine path to the configuration file: %s", err))
		return nil
	}

	return &Args{
		ConfigFile: configPath,
		ServerName: *serverName,
	}
}

func printUsage(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s\n", err)                           // nolint: gas
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s <arguments>\n", os.Args[0]) // nolint: gas
	flag.PrintDefaults()
}
