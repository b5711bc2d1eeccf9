package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v3"

	"github.com/birdayz/transcode/pkg/codec"
)

type SASL struct {
	Mechanism    string   `yaml:"mechanism"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	ClientID     string   `yaml:"clientID"`
	ClientSecret string   `yaml:"clientSecret"`
	TokenURL     string   `yaml:"tokenURL"`
	Scopes       []string `yaml:"scopes"`
	Token        string   `yaml:"token"`
}

type TLS struct {
	Cafile        string
	Clientfile    string
	Clientkeyfile string
	Insecure      bool
}

// Cluster is a Kafka connection profile used by the stream command.
type Cluster struct {
	Name             string
	Brokers          []string `yaml:"brokers"`
	SASL             *SASL    `yaml:"SASL"`
	TLS              *TLS     `yaml:"TLS"`
	SecurityProtocol string   `yaml:"security-protocol"`
}

type Rotation struct {
	Enable     bool   `yaml:"enable"`
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	Compress   bool   `yaml:"compress"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Format      string   `yaml:"format"`
	Outputs     []string `yaml:"outputs"`
	Development bool     `yaml:"development"`
	Rotation    Rotation `yaml:"rotation"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

type Config struct {
	DefaultScheme    string       `yaml:"default-scheme,omitempty"`
	DefaultDirection string       `yaml:"default-direction,omitempty"`
	Output           string       `yaml:"output,omitempty"`
	Log              LogConfig    `yaml:"log,omitempty"`
	Server           ServerConfig `yaml:"server,omitempty"`
	Batch            BatchConfig  `yaml:"batch,omitempty"`

	CurrentCluster  string     `yaml:"current-cluster,omitempty"`
	ClusterOverride string     `yaml:"-"`
	Clusters        []*Cluster `yaml:"clusters,omitempty"`
	// configPath is the file path used for reading and writing this config.
	configPath string `yaml:"-"`
}

const (
	DefaultServerAddr = "localhost:8080"
	DefaultLogLevel   = "info"
)

// Path returns the file this config is read from and written to.
func (c *Config) Path() string {
	return c.configPath
}

// Scheme returns the configured default scheme, if any.
func (c *Config) Scheme() (codec.Scheme, bool) {
	if c.DefaultScheme == "" {
		return 0, false
	}
	s, err := codec.ParseScheme(c.DefaultScheme)
	if err != nil {
		return 0, false
	}
	return s, true
}

// Direction returns the configured default direction, falling back to encode.
func (c *Config) Direction() codec.Direction {
	d, err := codec.ParseDirection(c.DefaultDirection)
	if err != nil {
		return codec.Encode
	}
	return d
}

func (c *Config) SetDefaultScheme(name string) error {
	if _, err := codec.ParseScheme(name); err != nil {
		return err
	}
	old := c.DefaultScheme
	c.DefaultScheme = name
	if err := c.Write(); err != nil {
		c.DefaultScheme = old
		return err
	}
	return nil
}

func (c *Config) SetDefaultDirection(name string) error {
	if _, err := codec.ParseDirection(name); err != nil {
		return err
	}
	old := c.DefaultDirection
	c.DefaultDirection = name
	if err := c.Write(); err != nil {
		c.DefaultDirection = old
		return err
	}
	return nil
}

// Workers returns the batch worker count, at least 1.
func (c *Config) Workers() int {
	if c.Batch.Workers < 1 {
		return 1
	}
	return c.Batch.Workers
}

func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

func (c *Config) HasCluster(name string) bool {
	for _, cluster := range c.Clusters {
		if cluster.Name == name {
			return true
		}
	}
	return false
}

func (c *Config) SetCurrentCluster(name string) error {
	var oldCluster string
	if c.ActiveCluster() != nil {
		oldCluster = c.ActiveCluster().Name
	}
	for _, cluster := range c.Clusters {
		if cluster.Name == name {
			c.CurrentCluster = name

			if err := c.Write(); err != nil {
				// Either everything is persisted or nothing changes.
				c.CurrentCluster = oldCluster
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("could not find cluster with name %v", name)
}

// AddCluster appends cluster and persists the config. Names are unique.
func (c *Config) AddCluster(cluster *Cluster) error {
	if cluster.Name == "" {
		return errors.New("cluster name is required")
	}
	if c.HasCluster(cluster.Name) {
		return fmt.Errorf("cluster %q exists already", cluster.Name)
	}
	if len(cluster.Brokers) == 0 {
		return fmt.Errorf("cluster %q has no brokers", cluster.Name)
	}
	c.Clusters = append(c.Clusters, cluster)
	if err := c.Write(); err != nil {
		c.Clusters = c.Clusters[:len(c.Clusters)-1]
		return err
	}
	return nil
}

// RemoveCluster deletes the named cluster and persists the config. Removing
// the current cluster clears the selection.
func (c *Config) RemoveCluster(name string) error {
	pos := -1
	for i, cluster := range c.Clusters {
		if cluster.Name == name {
			pos = i
			break
		}
	}
	if pos == -1 {
		return fmt.Errorf("cluster %q does not exist", name)
	}

	oldClusters, oldCurrent := c.Clusters, c.CurrentCluster
	c.Clusters = append(append([]*Cluster{}, c.Clusters[:pos]...), c.Clusters[pos+1:]...)
	if c.CurrentCluster == name {
		c.CurrentCluster = ""
	}
	if err := c.Write(); err != nil {
		c.Clusters, c.CurrentCluster = oldClusters, oldCurrent
		return err
	}
	return nil
}

func (c *Config) ActiveCluster() *Cluster {
	if c == nil {
		return nil
	}

	toSearch := c.ClusterOverride
	if c.ClusterOverride == "" {
		toSearch = c.CurrentCluster
	}

	if toSearch == "" {
		return nil
	}

	for _, cluster := range c.Clusters {
		if cluster.Name == toSearch {
			// Return a copy so flag overrides never leak back into the file.
			c := *cluster
			return &c
		}
	}
	return nil
}

func (c *Config) Write() error {
	configPath := c.configPath
	if configPath == "" {
		var err error
		configPath, err = getDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, "config.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encoder := yaml.NewEncoder(tmpFile)
	if err := encoder.Encode(c); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp config file: %w", err)
	}
	c.configPath = configPath
	return nil
}

// ReadConfig loads the YAML config. An empty path means the default
// location, which may be missing; an explicit path must exist.
func ReadConfig(cfgPath string) (c Config, err error) {
	resolvedPath, err := resolveConfigPath(cfgPath)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{configPath: resolvedPath}, nil
		}
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.configPath = resolvedPath
	return c, nil
}

func (c *Config) validate() error {
	if c.DefaultScheme != "" {
		if _, err := codec.ParseScheme(c.DefaultScheme); err != nil {
			return fmt.Errorf("default-scheme: %w", err)
		}
	}
	if c.DefaultDirection != "" {
		if _, err := codec.ParseDirection(c.DefaultDirection); err != nil {
			return fmt.Errorf("default-direction: %w", err)
		}
	}
	return nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func resolveConfigPath(cfgPath string) (string, error) {
	if cfgPath == "" {
		return getDefaultConfigPath()
	}
	expanded, err := homedir.Expand(cfgPath)
	if err != nil {
		return "", fmt.Errorf("expand config path: %w", err)
	}
	if !fileExists(expanded) {
		return "", fmt.Errorf("config file %q does not exist", expanded)
	}
	return expanded, nil
}

func getDefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	return filepath.Join(home, ".transcode", "config"), nil
}
