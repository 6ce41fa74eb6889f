package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigSuite) writeFile(env, body string) {
	path := filepath.Join(s.dir, "config."+env+".yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
}

func (s *ConfigSuite) TestDefaultsWithoutFile() {
	cfg, err := load(viper.New(), s.dir)
	s.Require().NoError(err)

	s.Equal("dev", cfg.Env)
	s.Equal(8080, cfg.Port)
	s.Equal("memory", cfg.StorageType)
	s.Equal("data/words.txt", cfg.WordsPath)
	s.Equal(7*24*time.Hour, cfg.SessionDuration)
	s.Equal(time.Minute, cfg.CleanupInterval)
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
}

func (s *ConfigSuite) TestFileOverridesDefaults() {
	s.writeFile("dev", "port: 9000\nlog_level: debug\nsession_duration: 1h\n")

	cfg, err := load(viper.New(), s.dir)
	s.Require().NoError(err)

	s.Equal(9000, cfg.Port)
	s.Equal(time.Hour, cfg.SessionDuration)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func (s *ConfigSuite) TestEnvSelectsFileAndOverrides() {
	s.writeFile("prod", "port: 9000\nstorage_type: redis\nredis_url: redis://file:6379\n")
	s.T().Setenv("UNDERCOVER_ENV", "prod")
	s.T().Setenv("UNDERCOVER_REDIS_URL", "redis://env:6379")

	cfg, err := load(viper.New(), s.dir)
	s.Require().NoError(err)

	s.Equal("prod", cfg.Env)
	s.Equal(9000, cfg.Port)
	s.Equal("redis", cfg.StorageType)
	s.Equal("redis://env:6379", cfg.RedisURL)
}

func (s *ConfigSuite) TestEnvOverridesPort() {
	s.T().Setenv("UNDERCOVER_PORT", "7070")

	cfg, err := load(viper.New(), s.dir)
	s.Require().NoError(err)
	s.Equal(7070, cfg.Port)
}

func (s *ConfigSuite) TestValidation() {
	tests := []struct {
		name string
		file string
	}{
		{"redis without url", "storage_type: redis\n"},
		{"unknown storage", "storage_type: sqlite\n"},
		{"bad port", "port: 70000\n"},
		{"zero session", "session_duration: 0s\n"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.writeFile("dev", tt.file)
			_, err := load(viper.New(), s.dir)
			s.Error(err)
		})
	}
}

func (s *ConfigSuite) TestMalformedFileFails() {
	s.writeFile("dev", "port: [unclosed\n")

	_, err := load(viper.New(), s.dir)
	s.Error(err)
}

func (s *ConfigSuite) TestUnknownLogLevelFallsBackToInfo() {
	cfg := &Config{LogLevel: "chatty"}
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
}
