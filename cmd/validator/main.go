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
	"github.com/tensorplex-labs/eden/internal/scoring"
	"github.com/tensorplex-labs/eden/internal/synapse"
	"github.com/tensorplex-labs/eden/internal/utils/logger"
	"github.com/tensorplex-labs/eden/internal/validator"
	"github.com/tensorplex-labs/eden/pkg/chain"
	"github.com/tensorplex-labs/eden/pkg/schnitz"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

func main() {
	app := &cli.App{
		Name:   "eden-validator",
		Usage:  "samples peers, scores them and votes on chain",
		Flags:  config.IdentityFlags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("validator exited")
	}
}

func run(c *cli.Context) error {
	// ENVIRONMENT may come from the env file, load it before the logger reads it
	envErr := godotenv.Load(c.String("env-file"))

	logger.Init(logger.Options{Debug: c.Bool("debug"), Trace: c.Bool("trace")})
	defer logger.Sync()
	log.Info().Msg("Starting validator...")
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

	key, err := signature.LoadKey(cfg.KeyDir, cfg.KeyName)
	if err != nil {
		log.Fatal().Err(err).Str("key_name", cfg.KeyName).Msg("failed to load validator key")
	}

	gw, err := chain.NewGateway(&cfg.GatewayEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init chain gateway")
	}

	netuid := cfg.Netuid
	if cfg.SubnetName != "" {
		netuid, err = gw.ResolveNetuid(ctx, cfg.SubnetName)
		if err != nil {
			log.Fatal().Err(err).Str("subnet", cfg.SubnetName).Msg("failed to resolve subnet")
		}
	}

	enc, err := embedding.NewTiktokenEncoder(embedding.DefaultEncoding)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tokenizer")
	}

	ref, err := inference.NewClient(&cfg.InferenceEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init inference client")
	}

	peers := synapse.NewClient(synapse.Config{
		Model:       cfg.PeerModel,
		Timeout:     cfg.PeerTimeout,
		Concurrency: cfg.PeerConcurrency,
	}, key.Provider)

	engine := scoring.NewEngine(scoring.WithCoefficients(scoring.Coefficients{
		Similarity: cfg.SimilarityCoefficient,
		Prior:      cfg.PriorCoefficient,
		Stake:      cfg.StakeCoefficient,
	}))

	v, err := validator.NewValidator(&cfg.ValidatorEnvConfig, netuid, validator.Deps{
		Chain:     gw,
		Peers:     peers,
		Reference: ref,
		Embedder:  embedding.NewService(enc),
		Engine:    engine,
		Signer:    key.Provider,
	}, validator.WithSelfAddress(cfg.ListenAddress()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init validator")
	}

	status := schnitz.NewServer(&schnitz.ServerConfig{
		Host:      cfg.Host,
		Port:      cfg.Port,
		BodyLimit: cfg.BodySizeLimit,
	}, nil)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- status.Run(ctx)
	}()

	v.Start()
	log.Info().Str("hotkey", key.SS58Address()).Int("netuid", netuid).Msg("validator is running, press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping validator")
		v.Stop()
		if err := <-serverErr; err != nil {
			log.Error().Err(err).Msg("status server shutdown failed")
		}
	case err := <-serverErr:
		log.Error().Err(err).Msg("status server stopped, stopping validator")
		v.Stop()
	}

	log.Info().Msg("validator stopped")
	return nil
}
