// Package config содержит логику чтения конфигурации сервиса ввода заявок.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса ввода заявок.
type Config struct {
	RunAddress   string        `env:"RUN_ADDRESS"`
	WorkbookPath string        `env:"WORKBOOK_PATH"`
	DatabaseURI  string        `env:"DATABASE_URI"`
	ManagerPhone string        `env:"MANAGER_PHONE"`
	CatalogTTL   time.Duration `env:"CATALOG_TTL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения. Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envWorkbookPath := cfg.WorkbookPath
	envDatabaseURI := cfg.DatabaseURI
	envManagerPhone := cfg.ManagerPhone
	envCatalogTTL := cfg.CatalogTTL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.WorkbookPath, "f", "zayavki.xlsx", "path to the XLSX order book")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI (overrides the XLSX backend)")
	flag.StringVar(&cfg.ManagerPhone, "m", "", "manager WhatsApp phone")
	flag.DurationVar(&cfg.CatalogTTL, "t", time.Hour, "price list cache TTL")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envWorkbookPath != "" {
		cfg.WorkbookPath = envWorkbookPath
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envManagerPhone != "" {
		cfg.ManagerPhone = envManagerPhone
	}
	if envCatalogTTL != 0 {
		cfg.CatalogTTL = envCatalogTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = time.Hour
	}

	return cfg, nil
}
