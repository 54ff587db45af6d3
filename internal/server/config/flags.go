package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-n", "-d", "-k", "-o", "-f", "-t", "-m", "-w", "-j", "-z", "-x",
	"-u", "-p", "-b", "-g", "-e", "-i", "-q",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-n string   public base URL of temp URLs
//	-d string   PostgreSQL DSN
//	-k string   registry backend: memory | postgres
//	-o string   storage backend: local | s3
//	-f string   local storage root
//	-t int      temp URL validity, minutes
//	-m int      max file size, bytes
//	-w int      batch upload concurrency
//	-j string   janitor cron schedule ("" disables)
//	-z string   log backend: slog | zap
//	-x          enable stdout tracing
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i          redirect temp URL fetches to presigned S3 URLs
//	-q string   comma separated CORS origins
//
// Duration flags are integers in minutes and only replace the current value
// when given, so a sub-minute duration from JSON survives.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], serverFlags, "-x", "-i")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.PublicBaseURL, "n", config.PublicBaseURL, "public base URL of temp URLs")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RegistryBackend, "k", config.RegistryBackend, "temp URL registry backend (memory|postgres)")
	fs.StringVar(&config.StorageBackend, "o", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.StorageRoot, "f", config.StorageRoot, "local storage root")

	tempURLValidityDuration := fs.Int("t", int(config.TempURLValidityDuration.Minutes()), "temp_url_validity_duration (in minutes)")

	fs.Int64Var(&config.MaxFileSize, "m", config.MaxFileSize, "max file size (in bytes)")
	fs.IntVar(&config.BatchConcurrency, "w", config.BatchConcurrency, "batch upload concurrency")
	fs.StringVar(&config.JanitorSchedule, "j", config.JanitorSchedule, "expired temp URL purge schedule")
	fs.StringVar(&config.LogBackend, "z", config.LogBackend, "log backend (slog|zap)")
	fs.BoolVar(&config.TracingEnabled, "x", config.TracingEnabled, "print traces to stdout")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.S3PresignRedirect, "i", config.S3PresignRedirect, "redirect temp URLs to presigned S3 URLs")

	corsOrigins := fs.String("q", strings.Join(config.CORSAllowedOrigins, ","), "CORS allowed origins (comma separated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TempURLValidityDuration = time.Duration(*tempURLValidityDuration) * time.Minute
		}
	})
	config.CORSAllowedOrigins = nil
	if origins := flagx.SplitList(*corsOrigins); len(origins) > 0 {
		config.CORSAllowedOrigins = origins
	}
}
