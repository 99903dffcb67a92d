package main

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName = "tranp"
	configFileName = configBaseName + ".yaml"

	envPrefix = "TRANP"

	srcConfigKey     = "analyze.src"
	coreConfigKey    = "analyze.core"
	scriptsConfigKey = "analyze.scripts_dir"
	workersConfigKey = "analyze.workers"
	dbConfigKey      = "db"
	formatConfigKey  = "format"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultFormat        = "json"
	defaultLogFilename   = ".tranp.log"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(srcConfigKey, []string{"."})
	viper.SetDefault(coreConfigKey, []string{})
	viper.SetDefault(workersConfigKey, 0)
	viper.SetDefault(formatConfigKey, defaultFormat)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, "info")
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadConfig reads the config file. An explicit path must exist; the
// default tranp.yaml is optional.
func loadConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger builds the CLI logger writing to a rotated file. Verbose
// forces debug level.
func configureLogger(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	level := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose || viper.GetBool(logVerboseKey) {
		level = slog.LevelDebug
	}

	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
