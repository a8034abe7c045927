package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-m string   MongoDB URI
//	-n string   MongoDB database name
//	-s string   session cookie HMAC secret
//	-t int      absolute session duration, minutes
//	-w int      session activity window, minutes
//	-b int      bcrypt cost
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in minutes and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m", "-n", "-s", "-t", "-w", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database name")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret key")

	sessionDuration := fs.Int("t", int(config.SessionDuration.Minutes()), "session_duration (in minutes)")
	sessionActiveDuration := fs.Int("w", int(config.SessionActiveDuration.Minutes()), "session_active_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionDuration = time.Duration(*sessionDuration) * time.Minute
	config.SessionActiveDuration = time.Duration(*sessionActiveDuration) * time.Minute
}
