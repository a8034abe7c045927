package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	MongoURI              string         `json:"mongo_uri"`
	MongoDatabase         string         `json:"mongo_database"`
	SessionSecret         string         `json:"session_secret"`
	SessionDuration       timex.Duration `json:"session_duration"`
	SessionActiveDuration timex.Duration `json:"session_active_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a config file that was asked
// for but cannot be used is a startup failure.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.MongoURI = c.MongoURI
	config.MongoDatabase = c.MongoDatabase
	config.SessionSecret = c.SessionSecret
	config.SessionDuration = time.Duration(c.SessionDuration.Duration)
	config.SessionActiveDuration = time.Duration(c.SessionActiveDuration.Duration)
	config.BcryptCost = c.BcryptCost
}
