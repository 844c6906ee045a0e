// Command authserver runs a standalone auth server. Storage backends are
// chosen from the environment: postgres when DATABASE_URL is set, local
// files otherwise, and redis for verification codes when REDIS_ADDR is set.
package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/caarlos0/env/v11"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/appertide/auth"
	"github.com/appertide/auth/stores"
	gormstores "github.com/appertide/auth/stores/gorm"
	redisstores "github.com/appertide/auth/stores/redis"
)

type serverConfig struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataDir     string `env:"DATA_DIR" envDefault:"./data"`
	RedisAddr   string `env:"REDIS_ADDR"`

	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"onboarding@resend.dev"`

	JWTSecretKey  string `env:"AUTH_JWT_SECRET_KEY"`
	CookieDomains string `env:"COOKIE_DOMAINS"`

	RequireEmailVerification bool `env:"REQUIRE_EMAIL_VERIFICATION" envDefault:"false"`
}

func main() {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	users, accounts, verifications, err := buildStores(cfg)
	if err != nil {
		log.Fatalf("init stores: %v", err)
	}

	var sender auth.EmailSender
	if cfg.ResendAPIKey != "" {
		sender = auth.NewResendEmailSender(cfg.ResendAPIKey, cfg.ResendFromEmail)
	} else {
		log.Println("RESEND_API_KEY not set, verification codes go to the log")
		sender = &auth.ConsoleEmailSender{}
	}

	session := scs.New()
	session.Lifetime = 24 * time.Hour

	var cookieDomains []string
	if cfg.CookieDomains != "" {
		cookieDomains = strings.Split(cfg.CookieDomains, ",")
	}

	a := auth.New(auth.Config{
		Users:         users,
		Accounts:      accounts,
		Verifications: verifications,
		Session:       session,
		EmailSender:   sender,

		RequireEmailVerification: cfg.RequireEmailVerification,
		OTP: auth.OTPOptions{
			DisableSignUp:            true,
			SendVerificationOnSignUp: true,
		},

		CookieDomains: cookieDomains,
		JWTSecretKey:  cfg.JWTSecretKey,
	})

	mux := http.NewServeMux()
	mux.Handle("/auth/", http.StripPrefix("/auth", a.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func buildStores(cfg serverConfig) (auth.UserStore, auth.AccountStore, auth.VerificationStore, error) {
	var (
		users         auth.UserStore
		accounts      auth.AccountStore
		verifications auth.VerificationStore
	)

	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := gormstores.AutoMigrate(db); err != nil {
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		users = gormstores.NewUserStore(db)
		accounts = gormstores.NewAccountStore(db)
		verifications = gormstores.NewVerificationStore(db)
		log.Println("Using postgres storage")
	} else {
		users = stores.NewFSUserStore(cfg.DataDir)
		accounts = stores.NewFSAccountStore(cfg.DataDir)
		verifications = stores.NewFSVerificationStore(cfg.DataDir)
		log.Printf("Using file storage in %s", cfg.DataDir)
	}

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		verifications = redisstores.NewVerificationStore(client)
		log.Printf("Using redis at %s for verification codes", cfg.RedisAddr)
	}

	return users, accounts, verifications, nil
}
