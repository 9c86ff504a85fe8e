// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fawa-io/filemanager/pkg/fwlog"
)

const envPrefix = "FILEMANAGER"

type Config struct {
	Addr     string  `mapstructure:"addr"`
	Port     int     `mapstructure:"port" validate:"gte=0,lte=65535"`
	CertFile string  `mapstructure:"certFile" validate:"required_with=KeyFile"`
	KeyFile  string  `mapstructure:"keyFile" validate:"required_with=CertFile"`
	LogLevel string  `mapstructure:"logLevel"`
	Redis    Redis   `mapstructure:"redis"`
	Mongo    Mongo   `mapstructure:"mongo"`
	Session  Session `mapstructure:"session"`
	Storage  Storage `mapstructure:"storage"`
}

type Redis struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type Mongo struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"gt=0,lte=65535"`
	Database string `mapstructure:"database" validate:"required"`
}

// URI is the connection string for the configured host and port.
func (m Mongo) URI() string {
	return "mongodb://" + net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
}

type Session struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type Storage struct {
	Backend    string `mapstructure:"backend" validate:"oneof=disk minio"`
	FolderPath string `mapstructure:"folderPath"`
	Minio      Minio  `mapstructure:"minio"`
}

type Minio struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"useSSL"`
}

// ListenAddr is Addr when set, otherwise all interfaces on Port.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + strconv.Itoa(c.Port)
}

// TLS reports whether a certificate pair is configured.
func (c Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

var (
	once sync.Once

	mu sync.RWMutex

	config Config
)

func InitConfig() error {
	var initErr error
	once.Do(func() {
		initErr = loadAndWatch(pflag.CommandLine, os.Args[1:])
	})
	return initErr
}

func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return config
}

// Load reads configFile (or config.yaml from the search path when empty)
// together with defaults and environment overrides. It does not watch.
func Load(configFile string) (Config, error) {
	v := newViper(configFile)
	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "")
	v.SetDefault("port", 5000)
	v.SetDefault("certFile", "")
	v.SetDefault("keyFile", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mongo.host", "localhost")
	v.SetDefault("mongo.port", 27017)
	v.SetDefault("mongo.database", "files_manager")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("storage.backend", "disk")
	v.SetDefault("storage.folderPath", "/tmp/files_manager")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.accessKeyID", "")
	v.SetDefault("storage.minio.secretAccessKey", "")
	v.SetDefault("storage.minio.bucket", "")
	v.SetDefault("storage.minio.useSSL", false)
}

// legacyEnv maps keys onto the variable names deployments already use.
// FILEMANAGER_<KEY> takes precedence.
var legacyEnv = map[string]string{
	"port":               "PORT",
	"redis.addr":         "REDIS_ADDR",
	"mongo.host":         "DB_HOST",
	"mongo.port":         "DB_PORT",
	"mongo.database":     "DB_DATABASE",
	"storage.folderPath": "FOLDER_PATH",
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/filemanager/")
	}
	return v
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fwlog.Infof("Config file not found, using defaults and environment.")
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	fwlog.Infof("Using config file %s", v.ConfigFileUsed())
	return nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("the configuration cannot be decoded into the struct: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadAndWatch(fs *pflag.FlagSet, args []string) error {
	configFile := fs.String("config", "", "Path to the config file (defaults to ./config.yaml or /etc/filemanager/config.yaml)")
	fs.String("addr", "", "HTTP listen address (e.g., '127.0.0.1:5000'); overrides port")
	fs.Int("port", 5000, "HTTP listen port")
	fs.String("certFile", "", "Path to the TLS certificate file.")
	fs.String("keyFile", "", "Path to the TLS private key file.")
	fs.String("logLevel", "info", "Log level: debug, info, warn, error")
	fs.String("storage.folderPath", "", "Directory for uploaded content (disk backend)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := newViper(*configFile)
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind pflags: %w", err)
	}
	if err := readConfigFile(v); err != nil {
		return err
	}

	cfg, err := decode(v)
	if err != nil {
		return err
	}
	mu.Lock()
	config = cfg
	mu.Unlock()

	v.OnConfigChange(func(e fsnotify.Event) {
		fwlog.Infof("Config file %s changed, reloading", e.Name)
		reload(v)
	})
	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
	}
	return nil
}

// reload swaps in the new configuration and applies the log level. Other
// settings take effect on restart. An invalid file keeps the current
// configuration.
func reload(v *viper.Viper) {
	cfg, err := decode(v)
	if err != nil {
		fwlog.Errorf("Error reloading the configuration: %v", err)
		return
	}

	mu.Lock()
	config = cfg
	mu.Unlock()

	if lv, err := fwlog.ParseLevel(cfg.LogLevel); err == nil {
		fwlog.SetLevel(lv)
	}
	fwlog.Infof("The configuration has been reloaded")
}
