// Package miner serves the generate endpoint polled by validators.
package miner

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/metrics"
	"github.com/tensorplex-labs/eden/internal/synapse"
	"github.com/tensorplex-labs/eden/pkg/schnitz"
)

func NewMiner(server *schnitz.Server, generator Generator) *Miner {
	m := &Miner{server: server, generator: generator}
	server.App.Post(synapse.GeneratePath, m.handleGenerate)
	return m
}

// Run serves until ctx is cancelled.
func (m *Miner) Run(ctx context.Context) error {
	log.Info().Str("addr", m.server.Addr()).Msg("miner server started")
	return m.server.Run(ctx)
}

func (m *Miner) handleGenerate(c *fiber.Ctx) error {
	start := time.Now()

	var req synapse.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		metrics.GenerateRequestsTotal.WithLabelValues("bad_request").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(synapse.GenerateResponse{Error: err.Error()})
	}
	for _, msg := range req.Messages {
		if err := msg.Validate(); err != nil {
			metrics.GenerateRequestsTotal.WithLabelValues("bad_request").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(synapse.GenerateResponse{Error: err.Error()})
		}
	}
	if promptText(req.Messages) == "" {
		metrics.GenerateRequestsTotal.WithLabelValues("bad_request").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(synapse.GenerateResponse{Error: errNoMessage})
	}

	content, err := m.generator.Generate(c.UserContext(), req.Messages)
	if err != nil {
		metrics.GenerateRequestsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("caller", schnitz.Caller(c)).Msg("generate failed")
		return c.Status(fiber.StatusInternalServerError).JSON(synapse.GenerateResponse{Error: err.Error()})
	}

	metrics.GenerateRequestsTotal.WithLabelValues("ok").Inc()
	log.Debug().
		Str("caller", schnitz.Caller(c)).
		Str("model", req.Model).
		Bool("tokens", content.IsTokens).
		Dur("elapsed", time.Since(start)).
		Msg("served generate request")

	return c.JSON(synapse.GenerateResponse{
		Choices: []synapse.Choice{{
			Message: synapse.ResponseMessage{Role: synapse.RoleAssistant, Content: *content},
		}},
	})
}
