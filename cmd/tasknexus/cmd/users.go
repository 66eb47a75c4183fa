package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/service"
	"github.com/tasknexus/tasknexus-api/internal/pkg/config"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	fullNameFlag string
	roleFlag     string
	stdinFlag    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

// createUserCmd is the only way to create ADMIN accounts: registration over
// HTTP always yields USER.
var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store == config.StoreMemory {
			return errors.New("users create needs a persistent store (STORE=mongo)")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		user, err := newAccount(emailFlag, usernameFlag, fullNameFlag, roleFlag, password)
		if err != nil {
			return err
		}

		hash, err := service.NewBcryptHasher(cfg.Auth.BcryptCost).Hash(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash

		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		created, err := st.users.Create(ctx, user)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Printf("Created %s user %s (id %d)\n", created.Role, created.Username, created.ID)
		return nil
	},
}

func newAccount(email, username, fullName, role, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}
	if n := len(username); n < 3 || n > 50 {
		return nil, errors.New("--username must be between 3 and 50 characters")
	}
	if len(password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters (use --password or --stdin)", domain.MinPasswordLength)
	}
	r := domain.Role(strings.ToUpper(role))
	if !r.Valid() {
		return nil, fmt.Errorf("unknown role %q (want ADMIN or USER)", role)
	}
	if fullName == "" {
		fullName = username
	}

	now := time.Now().UTC()
	return &domain.User{
		Username:  username,
		Email:     email,
		FullName:  fullName,
		Role:      r,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func init() {
	createUserCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createUserCmd.Flags().StringVar(&usernameFlag, "username", "", "Username of the user")
	createUserCmd.Flags().StringVar(&fullNameFlag, "full-name", "", "Display name (defaults to the username)")
	createUserCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createUserCmd.Flags().StringVar(&roleFlag, "role", string(domain.RoleUser), "Role to assign: ADMIN or USER")
	createUserCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	usersCmd.AddCommand(createUserCmd)
}
