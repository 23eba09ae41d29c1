// cmd/libctl/main.go

// libctl is the operator's companion tool. It talks directly to the
// database, so staff accounts can be bootstrapped before the API server has
// any admin session to authenticate with.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/term"

	"librekeep/configs"
	"librekeep/internal/identity"
	"librekeep/internal/models"
	"librekeep/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Administrative tool for the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(createLibrarianCmd())
	root.AddCommand(listLibrariansCmd())
	root.AddCommand(deactivateLibrarianCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg := configs.LoadConfig()
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	cleanup := func() {
		_ = client.Disconnect(context.Background())
	}
	return store.NewMongo(client.Database(cfg.DBName)), cleanup, nil
}

// readPassword reads a password from the terminal without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func createLibrarianCmd() *cobra.Command {
	var username, name, email string

	cmd := &cobra.Command{
		Use:   "create-librarian",
		Short: "Create a librarian account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || name == "" || email == "" {
				return fmt.Errorf("--username, --name, and --email are required")
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password == "" || password != confirm {
				return fmt.Errorf("passwords are empty or do not match")
			}

			ctx := cmd.Context()
			st, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if existing, err := st.Librarians.FindByUsernameOrEmail(ctx, username, email); err == nil && existing != nil {
				return fmt.Errorf("a librarian with that username or email already exists")
			} else if err != store.ErrNotFound {
				return err
			}

			hash, salt, err := identity.HashPassword(password)
			if err != nil {
				return err
			}

			id, err := st.Librarians.Insert(ctx, &models.Librarian{
				Username:     username,
				PasswordHash: hash,
				PasswordSalt: salt,
				Name:         name,
				Email:        email,
				Role:         models.RoleLibrarian,
				IsActive:     true,
				CreatedBy:    "libctl",
				CreatedAt:    time.Now(),
			})
			if err != nil {
				return fmt.Errorf("failed to create librarian: %w", err)
			}

			fmt.Printf("Created librarian %s (%s)\n", username, id.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login username")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	return cmd
}

func listLibrariansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-librarians",
		Short: "List librarian accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			libs, err := st.Librarians.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list librarians: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tACTIVE\tCREATED")
			for _, l := range libs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
					l.ID.Hex(), l.Username, l.Name, l.Email, l.IsActive,
					l.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func deactivateLibrarianCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate-librarian <id>",
		Short: "Deactivate a librarian account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := primitive.ObjectIDFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid librarian ID: %w", err)
			}

			ctx := cmd.Context()
			st, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			lib, err := st.Librarians.FindByID(ctx, id)
			if err != nil {
				if err == store.ErrNotFound {
					return fmt.Errorf("librarian not found")
				}
				return err
			}
			lib.IsActive = false
			if err := st.Librarians.Update(ctx, lib); err != nil {
				return fmt.Errorf("failed to deactivate librarian: %w", err)
			}

			fmt.Printf("Deactivated %s\n", lib.Username)
			return nil
		},
	}
}
