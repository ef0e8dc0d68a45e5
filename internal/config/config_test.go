package config_test

import (
	"os"
	"testing"

	"github.com/paxos-council/council/internal/config"
	"github.com/paxos-council/council/internal/obs/test"
)

type ConfigSuite struct {
	*test.Suite
}

type TestConfig struct {
	Param string `env:"TEST_PARAM" env-default:"default"`
	Num   int    `env:"TEST_NUM" env-default:"42"`
}

type RequiredConfig struct {
	Name string `env:"TEST_REQUIRED_NAME" validate:"required"`
}

func TestConfigSuite(t *testing.T) {
	test.Run(t, &ConfigSuite{Suite: test.NewSuite()})
}

func (s *ConfigSuite) TestLoad_Defaults() {
	os.Unsetenv("TEST_PARAM")
	os.Unsetenv("TEST_NUM")

	var cfg TestConfig
	err := config.Load(&cfg)

	s.NoError(err)
	s.Equal("default", cfg.Param)
	s.Equal(42, cfg.Num)
}

func (s *ConfigSuite) TestLoad_EnvVar() {
	os.Setenv("TEST_PARAM", "council-1")
	defer os.Unsetenv("TEST_PARAM")

	var cfg TestConfig
	err := config.Load(&cfg)

	s.NoError(err)
	s.Equal("council-1", cfg.Param)
}

func (s *ConfigSuite) TestLoad_ValidationFailsOnMissingRequired() {
	os.Unsetenv("TEST_REQUIRED_NAME")

	var cfg RequiredConfig
	err := config.Load(&cfg)

	s.Error(err)
}

func (s *ConfigSuite) TestLoad_ValidationPassesWhenSet() {
	os.Setenv("TEST_REQUIRED_NAME", "member-3")
	defer os.Unsetenv("TEST_REQUIRED_NAME")

	var cfg RequiredConfig
	err := config.Load(&cfg)

	s.NoError(err)
	s.Equal("member-3", cfg.Name)
}
