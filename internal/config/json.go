package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/flagx"
	"github.com/dmitrijs2005/profilevault/internal/timex"
)

// JsonConfig is the on-disk shape of a config file. Durations go through
// timex.Duration so both "5s" and integer nanoseconds are accepted.
// Absent keys keep the value already present in Config.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	PDFServiceURL               *string         `json:"pdf_service_url"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	AWSEndpoint                 *string         `json:"aws_endpoint"`
	AWSRegion                   *string         `json:"aws_region"`
	AWSAccessKeyID              *string         `json:"aws_access_key_id"`
	AWSSecretAccessKey          *string         `json:"aws_secret_access_key"`
	S3Bucket                    *string         `json:"s3_bucket"`
	SQSQueueURL                 *string         `json:"sqs_queue_url"`
	SQSQueueName                *string         `json:"sqs_queue_name"`
	DeadLetterQueueURL          *string         `json:"dead_letter_queue_url"`
	ReceiveWaitTime             *timex.Duration `json:"receive_wait_time"`
	VisibilityTimeout           *timex.Duration `json:"visibility_timeout"`
	WriteTimeout                *timex.Duration `json:"write_timeout"`
	PresignTTL                  *timex.Duration `json:"presign_ttl"`
	ReceiveErrorBackoff         *timex.Duration `json:"receive_error_backoff"`
	HealthAddrGRPC              *string         `json:"health_addr_grpc"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// A missing flag is a no-op; an unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.PDFServiceURL, c.PDFServiceURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.AWSEndpoint, c.AWSEndpoint)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSAccessKeyID, c.AWSAccessKeyID)
	setString(&config.AWSSecretAccessKey, c.AWSSecretAccessKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.SQSQueueURL, c.SQSQueueURL)
	setString(&config.SQSQueueName, c.SQSQueueName)
	setString(&config.DeadLetterQueueURL, c.DeadLetterQueueURL)
	setDuration(&config.ReceiveWaitTime, c.ReceiveWaitTime)
	setDuration(&config.VisibilityTimeout, c.VisibilityTimeout)
	setDuration(&config.WriteTimeout, c.WriteTimeout)
	setDuration(&config.PresignTTL, c.PresignTTL)
	setDuration(&config.ReceiveErrorBackoff, c.ReceiveErrorBackoff)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
