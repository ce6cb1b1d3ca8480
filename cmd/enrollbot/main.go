package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/learningcurve/enrollbot/internal/api"
	"github.com/learningcurve/enrollbot/internal/genai"
	"github.com/learningcurve/enrollbot/internal/notify"
	"github.com/learningcurve/enrollbot/internal/store"
	"github.com/learningcurve/enrollbot/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for enrollbot state data
	DefaultStateDir = "/var/lib/enrollbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "enrollbot.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	resendOpts := buildResendOptions(config)
	twilioOpts := buildTwilioOptions(config)
	apiOpts := buildAPIOptions(flags, config)

	// Start the service
	slog.Info("Bootstrapping enrollbot with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := api.Run(storeOpts, genaiOpts, resendOpts, twilioOpts, apiOpts); err != nil {
		slog.Error("enrollbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("enrollbot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL    string
	StateDir       string
	OpenAIKey      string
	OpenAIBaseURL  string
	FreeformModel  string
	ResendAPIKey   string
	AdminEmail     string
	TwilioSID      string
	TwilioToken    string
	TwilioFrom     string
	StaffWhatsApp  string
	AdminAPIKey    string
	AllowedOrigins string
	APIAddr        string
}

// Flags holds command line flag values
type Flags struct {
	stateDir      *string
	dbDSN         *string
	openaiKey     *string
	openaiBaseURL *string
	freeformModel *string
	apiAddr       *string
}

// initializeLogger sets up structured logging, with debug level when
// ENROLLBOT_DEBUG is set.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("ENROLLBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StateDir:       util.EnvOrDefault("ENROLLBOT_STATE_DIR", DefaultStateDir),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		FreeformModel:  os.Getenv("FREEFORM_MODEL"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		TwilioSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:     os.Getenv("TWILIO_FROM_NUMBER"),
		StaffWhatsApp:  os.Getenv("STAFF_WHATSAPP_NUMBER"),
		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		APIAddr:        os.Getenv("API_ADDR"),
	}

	slog.Debug("State directory resolved", "state_dir", config.StateDir)

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ENROLLBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_BASE_URL_SET", config.OpenAIBaseURL != "",
		"RESEND_API_KEY_SET", config.ResendAPIKey != "",
		"TWILIO_CONFIGURED", config.TwilioSID != "" && config.TwilioToken != "",
		"ADMIN_API_KEY_SET", config.AdminAPIKey != "",
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for enrollbot data (overrides $ENROLLBOT_STATE_DIR)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN for the lead store (overrides $DATABASE_URL)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiBaseURL: flag.String("openai-base-url", config.OpenAIBaseURL, "OpenAI-compatible API base URL, e.g. a local Ollama /v1 endpoint (overrides $OPENAI_BASE_URL)"),
		freeformModel: flag.String("freeform-model", config.FreeformModel, "chat model for free-form answers (overrides $FREEFORM_MODEL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildGenAIOptions constructs free-form responder configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiBaseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(*flags.openaiBaseURL))
	}
	if *flags.freeformModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.freeformModel))
	}
	return genaiOpts
}

// buildResendOptions constructs email notifier configuration options
func buildResendOptions(config Config) []notify.ResendOption {
	var resendOpts []notify.ResendOption
	if config.ResendAPIKey != "" {
		resendOpts = append(resendOpts, notify.WithResendAPIKey(config.ResendAPIKey))
	}
	if config.AdminEmail != "" {
		resendOpts = append(resendOpts, notify.WithAdminEmail(config.AdminEmail))
	}
	return resendOpts
}

// buildTwilioOptions constructs WhatsApp notifier configuration options
func buildTwilioOptions(config Config) []notify.TwilioOption {
	var twilioOpts []notify.TwilioOption
	if config.TwilioSID != "" {
		twilioOpts = append(twilioOpts, notify.WithAccountSID(config.TwilioSID))
	}
	if config.TwilioToken != "" {
		twilioOpts = append(twilioOpts, notify.WithAuthToken(config.TwilioToken))
	}
	if config.TwilioFrom != "" {
		twilioOpts = append(twilioOpts, notify.WithFromNumber(config.TwilioFrom))
	}
	if config.StaffWhatsApp != "" {
		twilioOpts = append(twilioOpts, notify.WithStaffNumber(config.StaffWhatsApp))
	}
	return twilioOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags, config Config) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if config.AdminAPIKey != "" {
		apiOpts = append(apiOpts, api.WithAdminAPIKey(config.AdminAPIKey))
	}
	if config.AllowedOrigins != "" {
		origins := strings.Split(config.AllowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		apiOpts = append(apiOpts, api.WithAllowedOrigins(origins))
	}
	return apiOpts
}
