package config

import (
	"log"
	"os"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	OperatorPass string // optional; empty disables the login gate
	SeedDemo     bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "sodas.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./sodastock.log" // default log sink in project root
	}

	cfg := Config{
		Port:         port,
		DBDSN:        dsn,
		LogFile:      logFile,
		OperatorPass: os.Getenv("OPERATOR_PASSWORD"),
		SeedDemo:     os.Getenv("SEED_DEMO") == "1",
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SEED_DEMO=%v gate=%v",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.SeedDemo, cfg.OperatorPass != "")
	return cfg
}
