package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/louisbranch/buildledger/internal/platform/config"
	catalogimporter "github.com/louisbranch/buildledger/internal/tools/importer/catalog"
)

func main() {
	cfg, err := catalogimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[IMPORTER] ")

	if err := catalogimporter.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
