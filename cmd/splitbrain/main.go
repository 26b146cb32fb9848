package main

import (
	"fmt"
	"log"
	"os"

	"github.com/parietal-io/splitbrain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			log.Fatalf("splitbrain serve failed: %v", err)
		}
	case "version":
		fmt.Println(splitbrain.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  splitbrain serve [flags]")
	fmt.Println("  splitbrain version")
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  serve    Start the dissociation HTTP API")
	fmt.Println("  version  Print the version")
	fmt.Println()
	fmt.Println("Use 'splitbrain <subcommand> -h' for subcommand-specific flags.")
}
