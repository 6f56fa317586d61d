// Package config loads the dumper's directory connection settings from
// a .env-style file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DumpConfig carries the connection settings for addump.
type DumpConfig struct {
	Host     string
	BaseDN   string
	Username string
	Password string
	PageSize uint32
}

// LoadEnv reads a .env-style file into the process environment and
// assembles the dump configuration from it. LDAP_PAGESIZE defaults to
// 500 when unset.
func LoadEnv(path string) (DumpConfig, error) {
	if err := godotenv.Load(path); err != nil {
		return DumpConfig{}, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg := DumpConfig{
		Host:     os.Getenv("LDAP_HOST"),
		BaseDN:   os.Getenv("LDAP_BASEDN"),
		Username: os.Getenv("LDAP_USERNAME"),
		Password: os.Getenv("LDAP_PASSWORD"),
		PageSize: 500,
	}
	if cfg.Host == "" {
		return DumpConfig{}, fmt.Errorf("%s: LDAP_HOST is required", path)
	}
	if cfg.BaseDN == "" {
		return DumpConfig{}, fmt.Errorf("%s: LDAP_BASEDN is required", path)
	}
	if raw := os.Getenv("LDAP_PAGESIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return DumpConfig{}, fmt.Errorf("%s: invalid LDAP_PAGESIZE %q", path, raw)
		}
		cfg.PageSize = uint32(n)
	}
	return cfg, nil
}
