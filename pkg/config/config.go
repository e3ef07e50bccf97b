package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
	"gopkg.in/yaml.v2"
)

const (
	configDir  string = "bbthread"
	configFile string = "config.yml"
)

// Color modes accepted by the color option.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// JoinTimeout is the default timeout of the join command. Zero or
	// negative waits forever.
	JoinTimeout time.Duration `yaml:"join-timeout,omitempty"`

	// AccessMask overrides the access mask requested when opening threads.
	AccessMask *uint32 `yaml:"access-mask,omitempty"`

	// Color selects colored register output: auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Disassemble makes the regs command print the instruction at the
	// program counter.
	Disassemble bool `yaml:"disassemble"`
}

// ThreadAccess returns the access mask used to open threads.
func (c *Config) ThreadAccess() uint32 {
	if c.AccessMask != nil {
		return *c.AccessMask
	}
	return native.DefaultThreadAccess
}

// UseColor reports whether output to a terminal, or to something else when
// isTerminal is false, should be colored.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return isTerminal
}

func (c *Config) validate() error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q", c.Color)
	}
	return nil
}

// LoadConfig attempts to populate a Config object from the config.yml file,
// creating a default one if it does not exist.
func LoadConfig() (*Config, error) {
	err := createConfigPath()
	if err != nil {
		return &Config{}, fmt.Errorf("could not create config directory: %v", err)
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to get config file path: %v", err)
	}
	if _, err := os.Stat(fullConfigFile); os.IsNotExist(err) {
		if err := createDefaultConfig(fullConfigFile); err != nil {
			return &Config{}, fmt.Errorf("error creating default config file: %v", err)
		}
	}
	return LoadConfigFrom(fullConfigFile)
}

// LoadConfigFrom reads the configuration stored at path.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to decode config file: %v", err)
	}
	if err := c.validate(); err != nil {
		return &Config{}, fmt.Errorf("%s: %v", path, err)
	}

	return &c, nil
}

// SaveConfig will marshal and save the config struct
// to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}
	return SaveConfigTo(conf, fullConfigFile)
}

// SaveConfigTo marshals conf and writes it to path.
func SaveConfigTo(conf *Config, path string) error {
	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

func createDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create config file: %v", err)
	}
	defer f.Close()
	err = writeDefaultConfig(f)
	if err != nil {
		return fmt.Errorf("unable to write default configuration: %v", err)
	}
	return nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for bbthread.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Default timeout of the join command, for example 500ms or 10s.
# Leave unset to wait forever.
# join-timeout: 10s

# Access mask used to open threads. The default requests suspend/resume,
# get/set context, query information, terminate and synchronize rights.
# access-mask: 0x10005b

# Colored register output: auto, always or never.
# color: auto

# Print the instruction at the program counter in the regs command.
disassemble: false
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDir, file), nil
	}

	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return filepath.Join(userHomeDir, ".config", configDir, file), nil
}
