// Package logger provides a global logger for the application
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
)

var Logger *zap.Logger = zap.NewNop()

// Options mirror the --debug/--trace flags of the entrypoints.
type Options struct {
	Debug bool
	Trace bool
}

// defaultEnvironment matches the ENVIRONMENT default of the config package.
const defaultEnvironment = "dev"

// levelFor maps ENVIRONMENT and the entrypoint flags to a zerolog level.
func levelFor(environment string, opts Options) zerolog.Level {
	switch {
	case opts.Debug:
		return zerolog.DebugLevel
	case opts.Trace:
		return zerolog.TraceLevel
	}
	switch strings.ToLower(environment) {
	case "", "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func initLogger(opts Options) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = defaultEnvironment
	}

	logLevel := levelFor(environment, opts)
	switch {
	case opts.Debug:
		log.Info().Msg("Debug flag detected - overriding environment log level")
	case opts.Trace:
		log.Info().Msg("Trace flag detected - overriding environment log level")
	case environment == "dev" || environment == "test":
		log.Info().Str("environment", environment).Msg("Development/Test environment detected - enabling all log levels")
	case environment == "prod":
		log.Info().Str("environment", environment).Msg("Production environment detected - enabling info level and above")
	default:
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}

	zerolog.SetGlobalLevel(logLevel)

	zapCfg := zap.NewProductionConfig()
	if logLevel <= zerolog.DebugLevel {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zl, err := zapCfg.Build()
	if err != nil {
		log.Warn().Err(err).Msg("failed to build zap logger, scoring logs disabled")
		zl = zap.NewNop()
	}
	Logger = zl

	log.Debug().Str("environment", environment).Str("level", logLevel.String()).Msg("logging configured")
}

// Init initializes the logger with the configuration from the environment
// and the command line flags parsed by the entrypoint.
//
//	logger.Init(logger.Options{Debug: c.Bool("debug")})
func Init(opts Options) {
	initLogger(opts)
}

// Sugar returns a sugared logger for easier use
func Sugar() *zap.SugaredLogger {
	return Logger.Sugar()
}

// Sync flushes the zap logger, call on shutdown.
func Sync() {
	_ = Logger.Sync()
}
