// Package config loads the LeadScout configuration.
//
// Values are layered, later sources winning:
//
//  1. Default()
//  2. a YAML file: $LEADSCOUT_CONFIG, config.yaml or configs/config.yaml
//  3. environment variables named LEADSCOUT_<SECTION>_<KEY>
//
// For example:
//
//	LEADSCOUT_SERVER_PORT=8080
//	LEADSCOUT_SCORING_WEIGHTING_MODE=unweighted
//	LEADSCOUT_SCORING_ON_UNKNOWN_CATEGORY=treat_as_neutral
//	LEADSCOUT_SENTIMENT_PROVIDER=http
//	LEADSCOUT_SENTIMENT_ENDPOINT=http://sentiment:9000/score
//	LEADSCOUT_DATASET_REFRESH_CRON=@every 15m
//
// The binaries load a .env file into the process environment before calling Load.
package config
