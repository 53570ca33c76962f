package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"visor/internal/domain"
	"visor/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var configTemplate = `# config.yaml

# Base URL
# Catalog site to log into and scrape
#
# Default: "https://visortmo.com"
#
baseURL: "https://visortmo.com"

# Credentials
# Used when no credentials were saved with "visor login"
#
# Optional
#
#email: ""
#password: ""
#remember: false

# Require Login
# Refuse to scrape profile pages before a successful login
#
# Default: true
#
requireLogin: true

# Request timeout in seconds
#
# Default: 30
#
requestTimeout: 30

# SOCKS5 proxy used for every request, e.g. "127.0.0.1:9050"
#
# Optional
#
#proxy: ""

# Send browser-like TLS settings and headers to get past Cloudflare checks
#
# Default: false
#
#bypassCloudflare: false

# Delay in seconds before every list crawl during a full sync
#
# Default: 2.5 - 10
#
listDelayMin: 2.5
listDelayMax: 10

# Delay in seconds before every chapter page fetch during a full sync
#
# Default: 5 - 30
#
chapterDelayMin: 5
chapterDelayMax: 30

# Database Path
# sqlite database holding the synced library and saved credentials
#
# Default: "visor.db" next to this config file
#
#databasePath: ""

# Cover Directory
# Where downloaded cover images are stored
#
# Default: "covers" next to this config file
#
#coverDirectory: ""

# Cover downloads per second, 0 disables the limit
#
# Default: 2
#
#coverRate: 2

# Sync interval in minutes for "visor sync --watch"
#
# Default: 360
#
syncInterval: 360

# visor logs file
# If not defined, logs to stdout
# Make sure to use forward slashes and include the filename with extension. e.g. "logs/visor.log", "C:/visor/logs/visor.log"
#
# Optional
#
#logPath: ""

# Log level
#
# Default: "DEBUG"
#
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
#
logLevel: "DEBUG"

# Log Max Size
#
# Default: 50
#
# Max log size in megabytes
#
#logMaxSize: 50

# Log Max Backups
#
# Default: 3
#
# Max amount of old log files
#
#logMaxBackups: 3
`

func (c *AppConfig) writeConfig(configPath string, configFile string) error {
	cfgPath := filepath.Join(configPath, configFile)

	// check if configPath exists, if not create it
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(configPath, os.ModePerm)
		if err != nil {
			log.Println(err)
			return err
		}
	}

	// check if config exists, if not create it
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {

		f, err := os.Create(cfgPath)
		if err != nil { // perm 0666
			// handle failed create
			log.Printf("error creating file: %q", err)
			return err
		}
		defer f.Close()

		if _, err = f.WriteString(configTemplate); err != nil {
			log.Printf("error writing contents to file: %v %q", configPath, err)
			return err
		}

		return f.Sync()
	}

	return nil
}

type Config interface {
	UpdateConfig() error
	DynamicReload(log logger.Logger)
}

type AppConfig struct {
	Config *domain.Config
	m      *sync.Mutex
}

func New(configPath string, version string) *AppConfig {
	c := &AppConfig{
		m: new(sync.Mutex),
	}
	c.defaults()
	c.Config = &domain.Config{
		Version:    version,
		ConfigPath: configPath,
	}

	c.load(configPath)

	// a missing .env is fine, the environment may be set directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not read .env file: %q", err)
	}
	c.loadFromEnv()
	c.resolvePaths()

	return c
}

func (c *AppConfig) defaults() {
	viper.SetDefault("baseURL", "https://visortmo.com")
	viper.SetDefault("email", "")
	viper.SetDefault("password", "")
	viper.SetDefault("remember", false)
	viper.SetDefault("requireLogin", true)
	viper.SetDefault("requestTimeout", 30)
	viper.SetDefault("proxy", "")
	viper.SetDefault("bypassCloudflare", false)
	viper.SetDefault("listDelayMin", 2.5)
	viper.SetDefault("listDelayMax", 10.0)
	viper.SetDefault("chapterDelayMin", 5.0)
	viper.SetDefault("chapterDelayMax", 30.0)
	viper.SetDefault("databasePath", "")
	viper.SetDefault("coverDirectory", "")
	viper.SetDefault("coverRate", 2.0)
	viper.SetDefault("syncInterval", 360)
	viper.SetDefault("logPath", "")
	viper.SetDefault("logLevel", "DEBUG")
	viper.SetDefault("logMaxSize", 50)
	viper.SetDefault("logMaxBackups", 3)
}

func (c *AppConfig) loadFromEnv() {
	prefix := "VISOR__"

	envs := os.Environ()
	for _, env := range envs {
		if strings.HasPrefix(env, prefix) {
			envPair := strings.SplitN(env, "=", 2)

			if envPair[1] != "" {
				switch envPair[0] {
				case prefix + "BASE_URL":
					c.Config.BaseURL = envPair[1]
				case prefix + "EMAIL":
					c.Config.Email = envPair[1]
				case prefix + "PASSWORD":
					c.Config.Password = envPair[1]
				case prefix + "REMEMBER":
					if b, err := strconv.ParseBool(envPair[1]); err == nil {
						c.Config.Remember = b
					}
				case prefix + "REQUIRE_LOGIN":
					if b, err := strconv.ParseBool(envPair[1]); err == nil {
						c.Config.RequireLogin = b
					}
				case prefix + "REQUEST_TIMEOUT":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.RequestTimeout = int(i)
					}
				case prefix + "PROXY":
					c.Config.Proxy = envPair[1]
				case prefix + "BYPASS_CLOUDFLARE":
					if b, err := strconv.ParseBool(envPair[1]); err == nil {
						c.Config.BypassCloudflare = b
					}
				case prefix + "LIST_DELAY_MIN":
					if f, err := strconv.ParseFloat(envPair[1], 64); err == nil && f >= 0 {
						c.Config.ListDelayMin = f
					}
				case prefix + "LIST_DELAY_MAX":
					if f, err := strconv.ParseFloat(envPair[1], 64); err == nil && f >= 0 {
						c.Config.ListDelayMax = f
					}
				case prefix + "CHAPTER_DELAY_MIN":
					if f, err := strconv.ParseFloat(envPair[1], 64); err == nil && f >= 0 {
						c.Config.ChapterDelayMin = f
					}
				case prefix + "CHAPTER_DELAY_MAX":
					if f, err := strconv.ParseFloat(envPair[1], 64); err == nil && f >= 0 {
						c.Config.ChapterDelayMax = f
					}
				case prefix + "DATABASE_PATH":
					c.Config.DatabasePath = envPair[1]
				case prefix + "COVER_DIRECTORY":
					c.Config.CoverDirectory = envPair[1]
				case prefix + "COVER_RATE":
					if f, err := strconv.ParseFloat(envPair[1], 64); err == nil && f >= 0 {
						c.Config.CoverRate = f
					}
				case prefix + "SYNC_INTERVAL":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.SyncInterval = int(i)
					}
				case prefix + "LOG_LEVEL":
					c.Config.LogLevel = envPair[1]
				case prefix + "LOG_PATH":
					c.Config.LogPath = envPair[1]
				case prefix + "LOG_MAX_SIZE":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxSize = int(i)
					}
				case prefix + "LOG_MAX_BACKUPS":
					if i, _ := strconv.ParseInt(envPair[1], 10, 32); i > 0 {
						c.Config.LogMaxBackups = int(i)
					}
				}
			}
		}
	}
}

func (c *AppConfig) load(configPath string) {
	viper.SetConfigType("yaml")

	// clean trailing slash from configPath
	configPath = path.Clean(configPath)
	if configPath != "" && configPath != "." {
		// check if path and file exists
		// if not, create path and file
		if err := c.writeConfig(configPath, "config.yaml"); err != nil {
			log.Printf("write error: %q", err)
		}

		viper.SetConfigFile(path.Join(configPath, "config.yaml"))
	} else {
		viper.SetConfigName("config")

		// Search config in directories
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/visor")
		viper.AddConfigPath("$HOME/.visor")
	}

	// read config
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("config read error: %q", err)
	}

	if err := viper.Unmarshal(c.Config); err != nil {
		log.Fatalf("Could not unmarshal config file: %v: err %q", viper.ConfigFileUsed(), err)
	}
}

// resolvePaths places the database and covers next to the config file
// unless configured otherwise.
func (c *AppConfig) resolvePaths() {
	base := c.Config.ConfigPath
	if used := viper.ConfigFileUsed(); base == "" && used != "" {
		base = filepath.Dir(used)
	}
	if base == "" {
		base = "."
	}

	if c.Config.DatabasePath == "" {
		c.Config.DatabasePath = filepath.Join(base, "visor.db")
	}
	if c.Config.CoverDirectory == "" {
		c.Config.CoverDirectory = filepath.Join(base, "covers")
	}
}

func (c *AppConfig) DynamicReload(log logger.Logger) {
	viper.WatchConfig()

	viper.OnConfigChange(func(_ fsnotify.Event) {
		c.m.Lock()
		defer c.m.Unlock()

		logLevel := viper.GetString("logLevel")
		c.Config.LogLevel = logLevel
		log.SetLogLevel(c.Config.LogLevel)

		logPath := viper.GetString("logPath")
		c.Config.LogPath = logPath

		c.Config.ListDelayMin = viper.GetFloat64("listDelayMin")
		c.Config.ListDelayMax = viper.GetFloat64("listDelayMax")
		c.Config.ChapterDelayMin = viper.GetFloat64("chapterDelayMin")
		c.Config.ChapterDelayMax = viper.GetFloat64("chapterDelayMax")

		if i := viper.GetInt("syncInterval"); i > 0 {
			c.Config.SyncInterval = i
		}

		log.Debug().Msg("config file reloaded!")
	})
}

// Snapshot returns a copy of the current config, safe to use while a
// reload may be in progress.
func (c *AppConfig) Snapshot() domain.Config {
	c.m.Lock()
	defer c.m.Unlock()

	return *c.Config
}

func (c *AppConfig) UpdateConfig() error {
	filePath := path.Join(c.Config.ConfigPath, "config.yaml")

	f, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("could not read config filePath: %s: %w", filePath, err)
	}

	lines := strings.Split(string(f), "\n")
	lines = c.processLines(lines)

	output := strings.Join(lines, "\n")
	if err := os.WriteFile(filePath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("could not write config file: %s: %w", filePath, err)
	}

	return nil
}

func (c *AppConfig) processLines(lines []string) []string {
	// keep track of not found values to append at bottom
	var (
		foundLineLogLevel = false
		foundLineLogPath  = false
	)

	for i, line := range lines {
		if !foundLineLogLevel && strings.Contains(line, "logLevel:") {
			lines[i] = fmt.Sprintf(`logLevel: "%s"`, c.Config.LogLevel)
			foundLineLogLevel = true
		}
		if !foundLineLogPath && strings.Contains(line, "logPath:") {
			if c.Config.LogPath == "" {
				lines[i] = `#logPath: ""`
			} else {
				lines[i] = fmt.Sprintf(`logPath: "%s"`, c.Config.LogPath)
			}
			foundLineLogPath = true
		}
	}

	if !foundLineLogLevel {
		lines = append(lines, "# Log level")
		lines = append(lines, "#")
		lines = append(lines, `# Default: "DEBUG"`)
		lines = append(lines, "#")
		lines = append(lines, `# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"`)
		lines = append(lines, "#")
		lines = append(lines, fmt.Sprintf(`logLevel: "%s"`, c.Config.LogLevel))
	}

	if !foundLineLogPath {
		lines = append(lines, "# Log Path")
		lines = append(lines, "#")
		lines = append(lines, "# Optional")
		lines = append(lines, "#")
		if c.Config.LogPath == "" {
			lines = append(lines, `#logPath: ""`)
		} else {
			lines = append(lines, fmt.Sprintf(`logPath: "%s"`, c.Config.LogPath))
		}
	}

	return lines
}
