package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/config"
)

// Option tweaks a Validator at construction.
type Option func(*Validator)

// WithSelfAddress sets the ip:port used to find self when the hotkey is not
// registered. It must be the public address on chain, 0.0.0.0 is ignored.
func WithSelfAddress(addr string) Option {
	return func(v *Validator) { v.SelfAddress = addr }
}

func WithIntervalConfig(ic *config.IntervalConfig) Option {
	return func(v *Validator) { v.IntervalConfig = ic }
}

func WithTopics(topics []string) Option {
	return func(v *Validator) {
		if len(topics) > 0 {
			v.topics = topics
		}
	}
}

// NewValidator wires the collaborators into a Validator. Every dependency is
// required; a missing one is a startup error.
func NewValidator(cfg *config.ValidatorEnvConfig, netuid int, deps Deps, opts ...Option) (*Validator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("validator config cannot be nil")
	}
	switch {
	case deps.Chain == nil:
		return nil, fmt.Errorf("chain gateway cannot be nil")
	case deps.Peers == nil:
		return nil, fmt.Errorf("peer client cannot be nil")
	case deps.Reference == nil:
		return nil, fmt.Errorf("reference generator cannot be nil")
	case deps.Embedder == nil:
		return nil, fmt.Errorf("embedder cannot be nil")
	case deps.Engine == nil:
		return nil, fmt.Errorf("scoring engine cannot be nil")
	case deps.Signer == nil:
		return nil, fmt.Errorf("signer cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Validator{
		Deps:            deps,
		Netuid:          netuid,
		IntervalConfig:  config.NewIntervalConfig(cfg.Environment),
		ValidatorConfig: cfg,
		Ctx:             ctx,
		Cancel:          cancel,
		topics:          defaultTopics,
	}
	for _, opt := range opts {
		opt(v)
	}

	log.Info().
		Str("hotkey", deps.Signer.SS58Address()).
		Int("netuid", netuid).
		Dur("cooldown_min", v.IntervalConfig.CooldownMin).
		Dur("cooldown_max", v.IntervalConfig.CooldownMax).
		Msg("validator initialised")
	return v, nil
}

// Start runs cycles in the background until Stop is called.
func (v *Validator) Start() {
	v.Wg.Add(1)
	go v.loop(v.Ctx)
}

// Stop cancels the loop and waits for the in-flight cycle to return.
func (v *Validator) Stop() {
	if v.Cancel != nil {
		v.Cancel()
	}
	v.Wg.Wait()
}

// Cycles reports how many cycles have finished, whatever their outcome.
func (v *Validator) Cycles() int64 {
	return v.cycles.Load()
}

func (v *Validator) loop(ctx context.Context) {
	defer v.Wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		v.RunCycle(ctx)

		cooldown := v.IntervalConfig.Cooldown()
		log.Debug().Dur("cooldown", cooldown).Msg("cycle finished, cooling down")
		timer.Reset(cooldown)
	}
}

// RunCycle drives one sample, poll, score and vote pass. It never panics
// and never returns an error: failures end the cycle and are logged.
func (v *Validator) RunCycle(ctx context.Context) {
	if !v.cycleRunning.CompareAndSwap(false, true) {
		log.Warn().Msg("previous cycle still running, skipping")
		return
	}
	defer v.cycleRunning.Store(false)
	defer v.cycles.Add(1)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("cycle panicked")
			recordOutcome(outcomeAborted)
		}
	}()

	recordOutcome(v.runCycle(ctx))
}
