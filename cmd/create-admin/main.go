// Command create-admin creates an administrator account or promotes an
// existing one, resetting its password.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"catalog/internal/auth"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/events"
	"catalog/internal/logger"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	Email        string
	Name         string
	Password     string
	PasswordHash string
	DBDriver     string
	DatabaseDSN  string
	BcryptCost   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func main() {
	log := logger.New("info")

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, log); err != nil {
		log.Error("create-admin failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// parseOptions reads flags, falling back to ADMIN_* and database environment variables.
func parseOptions(args []string) (*options, error) {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	fs.String("email", "", "admin email (ADMIN_EMAIL)")
	fs.String("name", "", "admin display name (ADMIN_NAME)")
	fs.String("password", "", "plaintext password to hash (ADMIN_PASSWORD)")
	fs.String("password-hash", "", "precomputed bcrypt hash (ADMIN_PASSWORD_HASH)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()
	for key, flag := range map[string]string{
		"ADMIN_EMAIL":         "email",
		"ADMIN_NAME":          "name",
		"ADMIN_PASSWORD":      "password",
		"ADMIN_PASSWORD_HASH": "password-hash",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	opts := &options{
		Email:        strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		Name:         strings.TrimSpace(v.GetString("ADMIN_NAME")),
		Password:     v.GetString("ADMIN_PASSWORD"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		BcryptCost:   v.GetInt("BCRYPT_COST"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
	}
	return opts, opts.validate()
}

func (o *options) validate() error {
	var errs []error
	if o.Email == "" {
		errs = append(errs, errors.New("--email is required"))
	}
	if o.Name == "" {
		errs = append(errs, errors.New("--name is required"))
	}
	switch {
	case o.Password == "" && o.PasswordHash == "":
		errs = append(errs, errors.New("one of --password or --password-hash is required"))
	case o.Password != "" && o.PasswordHash != "":
		errs = append(errs, errors.New("--password and --password-hash are mutually exclusive"))
	case o.PasswordHash != "" && !auth.IsHash(o.PasswordHash):
		errs = append(errs, errors.New("--password-hash is not a bcrypt hash"))
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, opts *options, log *slog.Logger) error {
	db, err := database.Open(opts.DBDriver, opts.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	hasher := auth.NewPasswordHasher(opts.BcryptCost)
	hash := opts.PasswordHash
	if hash == "" {
		if hash, err = hasher.Hash(opts.Password); err != nil {
			return err
		}
	}

	// updates the running service's cached session version on promotion
	c := cache.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	defer c.Close()

	users := repositories.NewGORMUserRepository(db)
	svc := services.NewUserService(users, hasher, services.NewSessionVersions(users, c), events.Noop{})
	user, created, err := svc.EnsureAdmin(ctx, opts.Name, opts.Email, hash)
	if err != nil {
		return err
	}

	if created {
		log.Info("admin created", slog.String("id", user.ID), slog.String("email", user.Email))
	} else {
		log.Info("admin updated, existing sessions revoked", slog.String("id", user.ID), slog.String("email", user.Email))
	}
	return nil
}
