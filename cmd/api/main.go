package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmiclibrary/core/cmd/api/commands"
)

// @title Cosmic Library API
// @version 1.0
// @description Book catalog, display settings and user registration for the Cosmic Library.

// @host localhost:8080
// @BasePath /api

func main() {
	rootCmd := &cobra.Command{
		Use:   "cosmiclibrary",
		Short: "Cosmic Library API Server",
		Long:  `Cosmic Library keeps a shared book catalog, display settings and registered users in a single JSON document.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewDBCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewBooksCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
