// ABOUTME: Entry point for the assist-gateway server
// ABOUTME: Wires config, stores, commands, speech, and the orchestrator

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/averla/assist-gateway/internal/auth"
	"github.com/averla/assist-gateway/internal/command"
	"github.com/averla/assist-gateway/internal/config"
	"github.com/averla/assist-gateway/internal/gateway"
	"github.com/averla/assist-gateway/internal/integrations"
	"github.com/averla/assist-gateway/internal/model"
	"github.com/averla/assist-gateway/internal/orchestrator"
	"github.com/averla/assist-gateway/internal/persona"
	"github.com/averla/assist-gateway/internal/session"
	"github.com/averla/assist-gateway/internal/speech"
	"github.com/averla/assist-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
               _     _                    _
  __ _ ___ ___(_)___| |_       __ _  __ _| |_ _____      ____ _ _   _
 / _' / __/ __| / __| __|____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| (_| \__ \__ \ \__ \ ||_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \__,_|___/___/_|___/\__|     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                              |___/                             |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: ASSIST_CONFIG env var > XDG_CONFIG_HOME/assist/gateway.yaml > ~/.config/assist/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ASSIST_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "assist", "gateway.yaml")
}

// getDataPath returns the path to the assist data directory.
// Priority: XDG_DATA_HOME/assist > ~/.local/share/assist
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "assist")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: assist-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                   Start the gateway server")
		fmt.Println("  init                    Create a new config file interactively")
		fmt.Println("  bootstrap --login NAME  Create the owner account and a token")
		fmt.Println("  health                  Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Model:   %s\n", cfg.Model.Name)
	if cfg.Speech.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Speech:  %s / %s\n", cfg.Speech.STTModel, cfg.Speech.TTSModel)
	}
	fmt.Println()

	logger.Info("starting assist-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"model", cfg.Model.Name,
	)

	// Persistence
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Persona
	p, err := persona.Load(cfg.Persona.Path)
	if err != nil {
		return fmt.Errorf("loading persona: %w", err)
	}

	// Session registry, archiving evicted sessions to SQLite
	sessions := session.NewStore(session.Options{
		TTL:           cfg.Sessions.TTL,
		MaxHistory:    cfg.Sessions.MaxHistory,
		SweepInterval: cfg.Sessions.SweepInterval,
	}, db, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sessions.Shutdown(shutdownCtx); err != nil {
			logger.Error("session store shutdown failed", "error", err)
		}
	}()

	// Command registry and integrations
	registry := command.NewRegistry(logger)
	providers := []integrations.Provider{integrations.NewClock()}
	if cfg.Integrations.OpenWeatherAPIKey != "" {
		providers = append(providers, integrations.NewOpenWeather(cfg.Integrations.OpenWeatherAPIKey))
	}
	if cfg.Integrations.OpenMeteoEnabled {
		providers = append(providers, integrations.NewOpenMeteo())
	}
	integrations.RegisterAll(registry, providers...)
	logger.Info("commands registered", "names", registry.Names())

	// Model backend
	backend := model.NewOpenAIBackend(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Timeout, logger)

	// Speech, optional
	var recognizer speech.Recognizer
	var synthesizer speech.Synthesizer
	if cfg.Speech.Enabled {
		speechCfg := speech.Config{
			BaseURL: cfg.Speech.BaseURL,
			APIKey:  cfg.Speech.APIKey,
		}
		if speechCfg.BaseURL == "" {
			speechCfg.BaseURL = cfg.Model.BaseURL
		}
		if speechCfg.APIKey == "" {
			speechCfg.APIKey = cfg.Model.APIKey
		}
		voice := cfg.Speech.Voice
		if p.Voice != "" {
			voice = p.Voice
		}
		recognizer = speech.NewOpenAIRecognizer(speechCfg, cfg.Speech.STTModel, logger)
		synthesizer = speech.NewOpenAISynthesizer(speechCfg, cfg.Speech.TTSModel, voice, logger)
	}

	modelName := cfg.Model.Name
	if p.Model != "" {
		modelName = p.Model
	}

	// Orchestrator
	orch := orchestrator.New(orchestrator.Config{
		Sessions:      sessions,
		Commands:      registry,
		Backend:       backend,
		Recognizer:    recognizer,
		Synthesizer:   synthesizer,
		Model:         modelName,
		PersonaPrompt: p.SystemPrompt,
		Logger:        logger,
	})

	// HTTP gateway
	gw := gateway.New(gateway.Config{
		Addr:     cfg.Server.HTTPAddr,
		Verifier: auth.NewAuthority([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
		Users:    db,
		Conv:     orch,
		Logger:   logger,
	})

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			out:   os.Stdout,
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
// Attrs added under WithGroup are rendered with a dot-joined group
// prefix on their keys.
type colorHandler struct {
	mu     sync.Mutex
	out    io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// qualify prefixes a key with the handler's current group path.
func (h *colorHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs, already qualified)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + h.qualify(a.Key) + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Fprint(h.out, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		newAttrs = append(newAttrs, a)
	}
	return &colorHandler{
		out:    h.out,
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		out:    h.out,
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runBootstrap performs first-time setup of the gateway:
// 1. Creates the database and owner account
// 2. Generates a JWT token for the owner
//
// One-command setup: assist-gateway bootstrap --login alice --name "Alice"
func runBootstrap(ctx context.Context) error {
	// Parse args with explicit error handling
	// Supports both "--flag value" and "--flag=value" formats
	var login, displayName, password string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--login" || arg == "-l":
			if i+1 >= len(args) {
				return fmt.Errorf("--login requires a value")
			}
			login = args[i+1]
			i++
		case strings.HasPrefix(arg, "--login="):
			login = strings.TrimPrefix(arg, "--login=")
		case arg == "--name" || arg == "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			displayName = args[i+1]
			i++
		case strings.HasPrefix(arg, "--name="):
			displayName = strings.TrimPrefix(arg, "--name=")
		case arg == "--password" || arg == "-p":
			if i+1 >= len(args) {
				return fmt.Errorf("--password requires a value")
			}
			password = args[i+1]
			i++
		case strings.HasPrefix(arg, "--password="):
			password = strings.TrimPrefix(arg, "--password=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	login = strings.TrimSpace(login)
	if login == "" {
		return fmt.Errorf("--login flag is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = login
	}
	if len(displayName) > 100 {
		return fmt.Errorf("display name exceeds maximum length of 100 characters")
	}

	configPath := getConfigPath()
	dataPath := getDataPath()
	dbPath := filepath.Join(dataPath, "gateway.db")

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	// Check if config exists, create if not
	var cfg *config.Config
	var jwtSecret string

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Generate random JWT secret
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		jwtSecret = base64.StdEncoding.EncodeToString(secretBytes)

		// Create config directory
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		// Create data directory
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		// Write config file
		configContent := fmt.Sprintf(`# assist-gateway configuration
# Generated by assist-gateway bootstrap

server:
  http_addr: "localhost:8080"

database:
  path: "%s"

model:
  base_url: "https://api.openai.com/v1"
  api_key: "${OPENAI_API_KEY}"
  name: "gpt-4o-mini"

sessions:
  ttl: "3h"
  max_history: 5

auth:
  jwt_secret: "%s"

logging:
  level: "info"
  format: "text"
`, dbPath, jwtSecret)

		if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		green.Printf("  ✓ Created config: %s\n", configPath)

		// Load the config we just created
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		// Config exists, load it
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// Check JWT secret is configured
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("jwt_secret not configured in %s (required for bootstrap)", configPath)
		}
		jwtSecret = cfg.Auth.JWTSecret

		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	// Open the store directly
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	green.Printf("  ✓ Database: %s\n", cfg.Database.Path)

	// Check if any users already exist
	count, err := db.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking users: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("bootstrap already complete: %d user(s) exist", count)
	}

	// Generate a password if none was supplied
	generatedPassword := false
	if password == "" {
		passwordBytes := make([]byte, 18)
		if _, err := rand.Read(passwordBytes); err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
		password = base64.RawURLEncoding.EncodeToString(passwordBytes)
		generatedPassword = true
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// Create the owner account
	owner := &store.User{
		Login:        login,
		DisplayName:  displayName,
		PasswordHash: hash,
		Group:        store.GroupOwner,
	}
	if err := db.CreateUser(ctx, owner); err != nil {
		return fmt.Errorf("creating owner user: %w", err)
	}

	green.Printf("  ✓ Created owner user: %s\n", login)

	// Generate JWT token
	authority := auth.NewAuthority([]byte(jwtSecret), cfg.Auth.TokenTTL)
	token, expiresAt, err := authority.Issue(owner.ID, store.GroupOwner)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	// Save token to file for CLI tools to read
	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if err := os.WriteFile(tokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	green.Printf("  ✓ Saved token: %s\n", tokenPath)

	// Print results
	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Owner Account")
	cyan.Println("  -------------")
	fmt.Printf("  ID:           %s\n", owner.ID)
	fmt.Printf("  Login:        %s\n", login)
	fmt.Printf("  Display Name: %s\n", displayName)
	fmt.Printf("  Group:        owner\n")
	if generatedPassword {
		fmt.Printf("  Password:     %s (write this down, it is not stored)\n", password)
	}
	fmt.Printf("  Token:        %s (expires %s)\n", tokenPath, expiresAt.Format("Jan 02, 2006"))
	fmt.Println()

	yellow.Println("  Ready to go:")
	fmt.Println("    assist-gateway serve    # start the gateway")
	fmt.Println("    assist-gateway health   # check it is up")
	fmt.Println()

	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("assist-gateway configuration setup")
	fmt.Println("==================================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "gateway.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Model backend
	fmt.Println("\n--- Model Configuration ---")
	baseURL := prompt(reader, "Model API base URL", "https://api.openai.com/v1")
	apiKey := prompt(reader, "Model API key (use ${OPENAI_API_KEY} to read from env)", "${OPENAI_API_KEY}")
	modelName := prompt(reader, "Model name", "gpt-4o-mini")

	// Speech
	fmt.Println("\n--- Speech Configuration ---")
	enableSpeech := prompt(reader, "Enable voice messages?", "no")
	speechEnabled := strings.ToLower(enableSpeech) == "yes" || strings.ToLower(enableSpeech) == "y"

	var sttModel, ttsModel, ttsVoice string
	if speechEnabled {
		sttModel = prompt(reader, "Speech-to-text model", "whisper-1")
		ttsModel = prompt(reader, "Text-to-speech model", "tts-1")
		ttsVoice = prompt(reader, "Text-to-speech voice", "alloy")
	}

	// Sessions
	fmt.Println("\n--- Session Configuration ---")
	sessionTTL := prompt(reader, "Session TTL", "3h")
	maxHistory := prompt(reader, "Max history messages", "5")

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate a random JWT secret
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}
	jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# assist-gateway configuration\n")
	cfg.WriteString("# Generated by assist-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("model:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", baseURL))
	cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", apiKey))
	cfg.WriteString(fmt.Sprintf("  name: \"%s\"\n", modelName))
	cfg.WriteString("\n")

	cfg.WriteString("speech:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", speechEnabled))
	if speechEnabled {
		cfg.WriteString(fmt.Sprintf("  stt_model: \"%s\"\n", sttModel))
		cfg.WriteString(fmt.Sprintf("  tts_model: \"%s\"\n", ttsModel))
		cfg.WriteString(fmt.Sprintf("  voice: \"%s\"\n", ttsVoice))
	}
	cfg.WriteString("\n")

	cfg.WriteString("sessions:\n")
	cfg.WriteString(fmt.Sprintf("  ttl: \"%s\"\n", sessionTTL))
	cfg.WriteString(fmt.Sprintf("  max_history: %s\n", maxHistory))
	cfg.WriteString("  sweep_interval: \"1m\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: \"%s\"\n", jwtSecret))
	cfg.WriteString("  token_ttl: \"720h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  assist-gateway bootstrap --login you   # create the owner account")
	fmt.Println("  assist-gateway serve                   # start the server")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
