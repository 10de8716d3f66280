/*
Package main is the entry point for learnpathctl.

Usage:

	learnpathctl [command]

Available Commands:

	migrate     Create or update the database schema
	import      Import the CSV tables found in a directory
	plan        Print the personalized learning plan of a student as JSON
	clusters    Cluster students and print a summary of each cohort
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgirmay/learnpath/internal/cli"
)

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
