// Package main provides the exocheck CLI: device-code login against Epic
// Games, locker aggregation and rendering of the result into shareable
// images.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/exocheck/exocheck/internal/catalog"
	"github.com/exocheck/exocheck/internal/config"
	"github.com/exocheck/exocheck/internal/epic"
	"github.com/exocheck/exocheck/internal/locker"
	"github.com/exocheck/exocheck/internal/locker/tables"
	"github.com/exocheck/exocheck/internal/render"
	"github.com/exocheck/exocheck/internal/render/iconcache"
	"github.com/exocheck/exocheck/internal/storage"
	"github.com/exocheck/exocheck/internal/version"
)

var (
	doLogin     = flag.Bool("login", false, "Log in with a device code and save the account")
	authCode    = flag.String("code", "", "Log in with an authorization code instead of the device flow")
	doCheck     = flag.Bool("check", false, "Run a locker check")
	accountID   = flag.String("account", "", "Saved account ID to check (default: most recent)")
	userID      = flag.String("user", "local", "Owner of saved accounts and output")
	outDir      = flag.String("out", "", "Output directory override")
	styleFlag   = flag.Int("style", -1, "Render style override")
	configPath  = flag.String("config", "", "Config file path override")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("exocheck %s\n", version.GetVersion())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	db, err := storage.Open(&storage.Config{
		Path:        cfg.Output.DBPath,
		AutoMigrate: true,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	passphrase := os.Getenv("EXOCHECK_PASSPHRASE")
	if passphrase == "" {
		passphrase = "exocheck"
	}
	accounts := storage.NewAccountRepository(db, passphrase)

	ctx := context.Background()

	switch {
	case *doLogin:
		if err := runLogin(ctx, cfg, accounts); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	case *doCheck:
		if err := runCheck(ctx, cfg, db, accounts); err != nil {
			log.Fatalf("Check failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load()
}

// runLogin walks the user through the device-code flow and stores a device
// auth for later checks.
func runLogin(ctx context.Context, cfg *config.Config, accounts *storage.AccountRepository) error {
	timeout, _ := cfg.GetEpicRequestTimeout()
	auth := epic.NewAuthenticator(epic.AuthenticatorOptions{
		BaseURL: cfg.Epic.AccountServiceURL,
		Timeout: timeout,
	})

	var session *epic.Session
	if *authCode != "" {
		var err error
		session, err = auth.AuthenticateWithCode(ctx, *authCode)
		if err != nil {
			return err
		}
	} else {
		clientToken, err := auth.ClientCredentials(ctx)
		if err != nil {
			return err
		}

		code, err := auth.CreateDeviceCode(ctx, clientToken)
		if err != nil {
			return err
		}

		fmt.Println("Epic Games Login")
		fmt.Println("================")
		fmt.Printf("Open %s\n", code.VerificationURI)
		fmt.Printf("Enter code: %s\n\n", code.UserCode)
		fmt.Println("Waiting for you to complete the login...")

		session, err = auth.WaitForDeviceCode(ctx, code.DeviceCode)
		if err != nil {
			return err
		}
	}

	deviceAuth, err := auth.CreateDeviceAuth(ctx, session)
	if err != nil {
		return err
	}

	if err := accounts.Save(ctx, *userID, deviceAuth, session.DisplayName); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s). Account saved.\n", session.DisplayName, session.AccountID)
	return nil
}

// runCheck restores a session, aggregates the locker and renders it.
func runCheck(ctx context.Context, cfg *config.Config, db *storage.DB, accounts *storage.AccountRepository) error {
	session, err := restoreSession(ctx, cfg, accounts)
	if err != nil {
		return err
	}
	if session.Expired(time.Now()) {
		return fmt.Errorf("session for %s already expired, please re-authenticate with -login", session.DisplayName)
	}

	fmt.Printf("Checking locker for %s...\n", session.DisplayName)

	timeout, _ := cfg.GetEpicRequestTimeout()
	profiles := epic.NewProfileClient(epic.ProfileClientOptions{
		ProfileServiceURL: cfg.Epic.ProfileServiceURL,
		Timeout:           timeout,
	})

	bundle, err := profiles.FetchProfiles(ctx, session)
	if err != nil {
		if epic.IsAuthError(err) {
			return fmt.Errorf("session rejected, please re-authenticate with -login: %w", err)
		}
		return err
	}
	for profileID, reason := range bundle.Unavailable {
		log.Printf("[WARN] Profile %s unavailable: %v", profileID, reason)
	}

	if info, err := profiles.AccountInfo(ctx, cfg.Epic.AccountServiceURL, session); err == nil {
		fmt.Printf("Account created: %s, linked platforms: %d\n", info.CreationDate, len(info.External))
	} else {
		log.Printf("[WARN] Account info unavailable: %v", err)
	}
	if bundle.Athena.Valid() {
		wins, matches := bundle.Athena.SeasonTotals()
		fmt.Printf("Career: %d wins across %d tracked matches\n", wins, matches)
	}
	if bundle.Campaign.Valid() {
		fmt.Print(bundle.Campaign.HomebaseReport())
	}

	tbls, err := tables.Load(cfg.Tables.Dir)
	if err != nil {
		return err
	}
	if cfg.Tables.Watch {
		go func() {
			if err := tbls.Watch(ctx); err != nil && err != context.Canceled {
				log.Printf("[WARN] Tables watcher stopped: %v", err)
			}
		}()
	}

	resolver := catalog.NewClient(catalog.ClientOptions{
		BaseURL: cfg.Catalog.BaseURL,
		APIKey:  cfg.Catalog.APIKey,
	})

	aggregator := locker.NewAggregator(resolver, tbls)
	snapshot := aggregator.Aggregate(ctx, bundle)

	if snapshot.TotalItems() == 0 {
		fmt.Println("0 items found in this locker. Nothing to render.")
		return nil
	}

	fmt.Printf("Found %d cosmetics (%d exclusive). Rendering...\n",
		snapshot.TotalItems(), len(snapshot.Categories[locker.CategoryExclusive]))

	cacheTimeout, _ := cfg.GetCacheTimeout()
	icons, err := iconcache.New(iconcache.Options{
		CacheDir: cfg.Cache.Dir,
		Timeout:  cacheTimeout,
	})
	if err != nil {
		return err
	}

	style := cfg.Output.Style
	if *styleFlag >= 0 {
		style = *styleFlag
	}
	prefs := render.Preferences{
		Style:    style,
		Username: cfg.Output.Username,
		Gradient: render.GradientType(cfg.Output.Gradient),
	}

	dir := *outDir
	if dir == "" {
		dir = filepath.Join(cfg.Output.Dir, *userID)
	}

	start := time.Now()
	dispatcher := render.NewDispatcher(render.NewGridRenderer(icons), tbls)
	written, err := dispatcher.RenderSnapshot(ctx, snapshot, prefs, dir)
	if err != nil {
		return err
	}

	checks := storage.NewCheckRepository(db)
	check, err := checks.Record(ctx, *userID, session.AccountID, session.DisplayName, snapshot)
	if err != nil {
		return err
	}
	if err := checks.WriteSidecar(dir, check); err != nil {
		return err
	}
	if bundle.Athena.Valid() {
		report := bundle.Athena.SeasonsReport()
		if err := os.WriteFile(filepath.Join(dir, "seasons.txt"), []byte(report), 0o644); err != nil {
			log.Printf("[WARN] Could not write seasons report: %v", err)
		}
	}

	fmt.Printf("Rendered %d images to %s in %s\n", len(written), dir, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Last match: %s\n", snapshot.LastMatch)
	return nil
}

// restoreSession authenticates from the requested (or most recent) saved
// account's device auth.
func restoreSession(ctx context.Context, cfg *config.Config, accounts *storage.AccountRepository) (*epic.Session, error) {
	id := *accountID
	if id == "" {
		saved, err := accounts.List(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if len(saved) == 0 {
			return nil, fmt.Errorf("no saved accounts for user %s, run -login first", *userID)
		}
		id = saved[0].AccountID
	}

	deviceAuth, err := accounts.DeviceAuth(ctx, *userID, id)
	if err != nil {
		return nil, err
	}

	timeout, _ := cfg.GetEpicRequestTimeout()
	auth := epic.NewAuthenticator(epic.AuthenticatorOptions{
		BaseURL: cfg.Epic.AccountServiceURL,
		Timeout: timeout,
	})

	return auth.AuthenticateDeviceAuth(ctx, deviceAuth)
}
