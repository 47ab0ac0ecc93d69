package util

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables
const (
	ConfigFileEnv         = "CONFIG_FILE"
	SourceDirEnv          = "SOURCE_DIR"
	DestinationDirEnv     = "DESTINATION_DIR"
	CatalogDirEnv         = "CATALOG_DIR"
	RootURLEnv            = "ROOT_URL"
	ImagesPrefixEnv       = "IMAGES_PREFIX"
	ProductFilterEnv      = "PRODUCT_FILTER"
	CatalogIDEnv          = "CATALOG_ID"
	CatalogDescriptionEnv = "CATALOG_DESCRIPTION"
	LogLevelEnv           = "LOG_LEVEL"
	PortEnv               = "PORT"
)

const defaultConfigFile = "config.yaml"

// Config holds everything the pipeline needs to know about where products live and
// how the published catalog will be addressed.
type Config struct {
	SourceDir          string `yaml:"source_dir"`
	DestinationDir     string `yaml:"destination_dir"`
	CatalogDir         string `yaml:"catalog_dir"`
	RootURL            string `yaml:"root_url"`
	ImagesPrefix       string `yaml:"images_prefix"`
	ProductFilter      string `yaml:"product_filter"`
	CatalogID          string `yaml:"catalog_id"`
	CatalogDescription string `yaml:"catalog_description"`
	LogLevel           string `yaml:"log_level"`
	Port               int    `yaml:"port"`
}

func DefaultConfig() *Config {
	return &Config{
		SourceDir:          "../imagens",
		DestinationDir:     "../imagens_organizadas_por_satelite",
		CatalogDir:         "../catalogo",
		RootURL:            "http://localhost:8080/meu-stac",
		CatalogID:          "Catalogo Censipam",
		CatalogDescription: "Catálogo Geoespacial de Imagens do Censipam.",
		LogLevel:           "info",
		Port:               8080,
	}
}

// LoadConfig layers defaults, the YAML file at path and the environment, in that order.
// A .env file in the working directory is loaded first. An empty path falls back to
// $CONFIG_FILE or ./config.yaml, either of which may be absent.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	required := path != ""
	if path == "" {
		path = EnvOrDefault(ConfigFileEnv, defaultConfigFile)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Debugf("Loaded config file %q", path)
	case required || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.SourceDir = EnvOrDefault(SourceDirEnv, c.SourceDir)
	c.DestinationDir = EnvOrDefault(DestinationDirEnv, c.DestinationDir)
	c.CatalogDir = EnvOrDefault(CatalogDirEnv, c.CatalogDir)
	c.RootURL = EnvOrDefault(RootURLEnv, c.RootURL)
	c.ImagesPrefix = EnvOrDefault(ImagesPrefixEnv, c.ImagesPrefix)
	c.ProductFilter = EnvOrDefault(ProductFilterEnv, c.ProductFilter)
	c.CatalogID = EnvOrDefault(CatalogIDEnv, c.CatalogID)
	c.CatalogDescription = EnvOrDefault(CatalogDescriptionEnv, c.CatalogDescription)
	c.LogLevel = EnvOrDefault(LogLevelEnv, c.LogLevel)
	c.Port = EnvOrDefaultInt(PortEnv, c.Port)
}

func (c *Config) normalize() error {
	c.RootURL = strings.TrimRight(strings.TrimSpace(c.RootURL), "/")
	u, err := url.Parse(c.RootURL)
	if err != nil {
		return fmt.Errorf("bad %s %q: %w", RootURLEnv, c.RootURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("bad %s %q: want an absolute URL", RootURLEnv, c.RootURL)
	}
	if c.ImagesPrefix == "" {
		c.ImagesPrefix = filepath.Base(filepath.Clean(c.DestinationDir))
	}
	c.ImagesPrefix = strings.Trim(filepath.ToSlash(c.ImagesPrefix), "/")
	return nil
}

// ImagesURL is the URL under which the organized image tree is published.
func (c *Config) ImagesURL() string {
	return c.RootURL + "/" + c.ImagesPrefix
}

// ConfigureLogging applies the configured level to the standard logger.
func (c *Config) ConfigureLogging() {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", c.LogLevel)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
