package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmiclibrary/core/internal/adapters/repository"
	"github.com/cosmiclibrary/core/internal/application/services"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/infrastructure/server"
	"github.com/cosmiclibrary/core/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Cosmic Library API server",
		Long:  "Start the Cosmic Library API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewDBCommand creates the document management command
func NewDBCommand() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Library document commands",
		Long:  "Inspect and initialize the JSON document that holds all library state",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default document if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.DocumentStore, _ *config.Config, _ *logger.Logger) error {
				if _, err := os.Stat(store.Path()); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Document already exists at %s\n", store.Path())
					return nil
				}
				// Reading a missing document writes the default one.
				store.Read()
				fmt.Fprintf(cmd.OutOrStdout(), "Document created at %s\n", store.Path())
				return nil
			})
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.DocumentStore, _ *config.Config, _ *logger.Logger) error {
				return printJSON(cmd.OutOrStdout(), store.Read())
			})
		},
	})

	return dbCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Register and list library users",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			return withStore(func(store *repository.DocumentStore, cfg *config.Config, appLogger *logger.Logger) error {
				authService := newAuthService(store, cfg, appLogger)
				req := ports.RegisterRequest{Username: username, Password: password}
				if err := authService.Register(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s registered\n", username)
				return nil
			})
		},
	}
	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("password", "", "Password (required)")

	listUsersCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured and registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.DocumentStore, cfg *config.Config, appLogger *logger.Logger) error {
				users, err := newAuthService(store, cfg, appLogger).ListUsers(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "USERNAME\tSOURCE")
				for _, user := range users {
					fmt.Fprintf(w, "%s\t%s\n", user.Username, user.Source)
				}
				return w.Flush()
			})
		},
	}

	userCmd.AddCommand(createUserCmd, listUsersCmd)
	return userCmd
}

// NewBooksCommand creates the catalog management command
func NewBooksCommand() *cobra.Command {
	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "Catalog commands",
		Long:  "List, add and delete books without going through the HTTP API",
	}

	booksCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *repository.DocumentStore, _ *config.Config, appLogger *logger.Logger) error {
				books, err := services.NewBookService(store, appLogger).ListBooks(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tGENRE\tADDED BY")
				for _, book := range books {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", book.ID, book.Title, book.Author, book.Genre, book.AddedBy)
				}
				return w.Flush()
			})
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ports.AddBookRequest{}
			req.Title, _ = cmd.Flags().GetString("title")
			req.Author, _ = cmd.Flags().GetString("author")
			req.Genre, _ = cmd.Flags().GetString("genre")
			if id, _ := cmd.Flags().GetString("id"); id != "" {
				req.ID = ports.BookIDInput(id)
			}
			req.Description = optionalFlag(cmd, "description")
			req.Cover = optionalFlag(cmd, "cover")
			req.AddedBy = optionalFlag(cmd, "added-by")

			return withStore(func(store *repository.DocumentStore, _ *config.Config, appLogger *logger.Logger) error {
				response, err := services.NewBookService(store, appLogger).AddBook(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", response.Message, response.ID)
				return nil
			})
		},
	}
	addCmd.Flags().String("title", "", "Book title (required)")
	addCmd.Flags().String("author", "", "Book author (required)")
	addCmd.Flags().String("genre", "", "Book genre (required)")
	addCmd.Flags().String("id", "", "Explicit book ID")
	addCmd.Flags().String("description", "", "Book description")
	addCmd.Flags().String("cover", "", "Cover image URL")
	addCmd.Flags().String("added-by", "", "Name of the user adding the book")

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a book by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")

			return withStore(func(store *repository.DocumentStore, _ *config.Config, appLogger *logger.Logger) error {
				if err := services.NewBookService(store, appLogger).DeleteBook(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Book deleted")
				return nil
			})
		},
	}
	deleteCmd.Flags().String("id", "", "Book ID (required)")

	booksCmd.AddCommand(addCmd, deleteCmd)
	return booksCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Cosmic Library version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", cfg.App.Name, cfg.App.Version)
			return nil
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	store := repository.NewDocumentStore(cfg.Storage, appLogger)

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Infow("Starting Cosmic Library API server",
		"address", cfg.Server.Address(),
		"environment", cfg.App.Environment,
		"document", store.Path(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// withStore loads configuration and opens the document store for a one-off command
func withStore(fn func(store *repository.DocumentStore, cfg *config.Config, appLogger *logger.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	return fn(repository.NewDocumentStore(cfg.Storage, appLogger), cfg, appLogger)
}

func newAuthService(store *repository.DocumentStore, cfg *config.Config, appLogger *logger.Logger) *services.AuthService {
	return services.NewAuthService(store, services.NewCredentialResolver(cfg.Auth.LibraryUsers), cfg.Auth, appLogger)
}

// optionalFlag returns nil when the flag was not given, so the service applies its default
func optionalFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
