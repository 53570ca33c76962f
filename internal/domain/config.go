package domain

type Config struct {
	Version          string
	ConfigPath       string
	BaseURL          string  `yaml:"baseURL"`
	Email            string  `yaml:"email"`
	Password         string  `yaml:"password"`
	Remember         bool    `yaml:"remember"`
	RequireLogin     bool    `yaml:"requireLogin"`
	RequestTimeout   int     `yaml:"requestTimeout"` // in seconds
	Proxy            string  `yaml:"proxy"`
	BypassCloudflare bool    `yaml:"bypassCloudflare"`
	ListDelayMin     float64 `yaml:"listDelayMin"` // in seconds
	ListDelayMax     float64 `yaml:"listDelayMax"`
	ChapterDelayMin  float64 `yaml:"chapterDelayMin"`
	ChapterDelayMax  float64 `yaml:"chapterDelayMax"`
	DatabasePath     string  `yaml:"databasePath"`
	CoverDirectory   string  `yaml:"coverDirectory"`
	CoverRate        float64 `yaml:"coverRate"`    // downloads per second
	SyncInterval     int     `yaml:"syncInterval"` // in minutes
	LogPath          string  `yaml:"logPath"`
	LogLevel         string  `yaml:"LogLevel"`
	LogMaxSize       int     `yaml:"logMaxSize"` // in megabytes
	LogMaxBackups    int     `yaml:"logMaxBackups"`
}
