package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/tensorplex-labs/eden/internal/config"
	"github.com/tensorplex-labs/eden/internal/embedding"
	"github.com/tensorplex-labs/eden/internal/inference"
	"github.com/tensorplex-labs/eden/internal/miner"
	"github.com/tensorplex-labs/eden/internal/utils/logger"
	"github.com/tensorplex-labs/eden/pkg/schnitz"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

func main() {
	app := &cli.App{
		Name:   "eden-miner",
		Usage:  "serves the generate endpoint polled by validators",
		Flags:  config.IdentityFlags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("miner exited")
	}
}

func run(c *cli.Context) error {
	// ENVIRONMENT may come from the env file, load it before the logger reads it
	envErr := godotenv.Load(c.String("env-file"))

	logger.Init(logger.Options{Debug: c.Bool("debug"), Trace: c.Bool("trace")})
	defer logger.Sync()
	log.Info().Msg("Starting miner...")
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env not loaded; continuing with existing environment")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	cfg.ApplyFlags(c)

	// the miner only needs its key to prove which identity it serves
	if cfg.KeyName != "" {
		key, err := signature.LoadKey(cfg.KeyDir, cfg.KeyName)
		if err != nil {
			log.Fatal().Err(err).Str("key_name", cfg.KeyName).Msg("failed to load miner key")
		}
		log.Info().Str("hotkey", key.SS58Address()).Msg("miner key loaded")
	}

	var (
		enc   embedding.Encoder
		proxy miner.Generator
	)
	switch cfg.MinerMode {
	case miner.ModeProxy:
		client, err := inference.NewClient(&cfg.InferenceEnvConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init inference client")
		}
		proxy = client
	default:
		tk, err := embedding.NewTiktokenEncoder(embedding.DefaultEncoding)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load tokenizer")
		}
		enc = tk
	}

	gen, err := miner.NewGenerator(cfg.MinerMode, enc, proxy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid miner mode")
	}

	var verifier signature.SignatureVerifier
	if cfg.RequireSignature {
		verifier = signature.NewVerifier()
	}

	server := schnitz.NewServer(&schnitz.ServerConfig{
		Host:      cfg.Host,
		Port:      cfg.Port,
		BodyLimit: cfg.BodySizeLimit,
	}, verifier)

	m := miner.NewMiner(server, gen)
	if err := m.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("miner server failed")
	}

	log.Info().Msg("Miner shutdown complete")
	return nil
}
