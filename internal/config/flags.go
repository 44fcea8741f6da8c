package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/flagx"
)

var knownFlags = []string{
	"-a", "-r", "-d", "-s", "-t", "-e", "-g", "-u", "-p", "-b",
	"-q", "-n", "-l", "-w", "-v", "-x", "-o", "-m", "-level",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address
//	-r string   PDF service base URL (user service only)
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-t int      access token validity, minutes
//	-e string   AWS endpoint URL
//	-g string   AWS region
//	-u string   AWS access key id
//	-p string   AWS secret access key
//	-b string   S3 bucket
//	-q string   SQS queue URL
//	-n string   SQS queue name, used when -q is empty
//	-l string   dead-letter queue URL
//	-w int      receive wait, seconds
//	-v int      visibility timeout, seconds (0 keeps the queue default)
//	-x int      object write timeout, seconds
//	-o int      retrieval URL lifetime, minutes
//	-m string   worker gRPC health address
//	-level      log level (debug, info, warn, error)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.PDFServiceURL, "r", config.PDFServiceURL, "PDF service base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "access token secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.AWSEndpoint, "e", config.AWSEndpoint, "AWS endpoint URL")
	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.AWSAccessKeyID, "u", config.AWSAccessKeyID, "AWS access key id")
	fs.StringVar(&config.AWSSecretAccessKey, "p", config.AWSSecretAccessKey, "AWS secret access key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.SQSQueueURL, "q", config.SQSQueueURL, "SQS queue URL")
	fs.StringVar(&config.SQSQueueName, "n", config.SQSQueueName, "SQS queue name")
	fs.StringVar(&config.DeadLetterQueueURL, "l", config.DeadLetterQueueURL, "dead-letter queue URL")

	waitSeconds := fs.Int("w", int(config.ReceiveWaitTime.Seconds()), "receive wait (in seconds)")
	visibilitySeconds := fs.Int("v", int(config.VisibilityTimeout.Seconds()), "visibility timeout (in seconds)")
	writeSeconds := fs.Int("x", int(config.WriteTimeout.Seconds()), "object write timeout (in seconds)")
	presignMinutes := fs.Int("o", int(config.PresignTTL.Minutes()), "retrieval URL lifetime (in minutes)")

	fs.StringVar(&config.HealthAddrGRPC, "m", config.HealthAddrGRPC, "gRPC health address")
	fs.StringVar(&config.LogLevel, "level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Duration flags apply only when present on the command line.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		case "w":
			config.ReceiveWaitTime = time.Duration(*waitSeconds) * time.Second
		case "v":
			config.VisibilityTimeout = time.Duration(*visibilitySeconds) * time.Second
		case "x":
			config.WriteTimeout = time.Duration(*writeSeconds) * time.Second
		case "o":
			config.PresignTTL = time.Duration(*presignMinutes) * time.Minute
		}
	})
}
