// Package embed obtains fixed-length embedding vectors from remote providers.
// A Client pairs a primary provider with an optional fallback: single-text
// encodes fail over once, batch encodes go to the primary only.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"golang.org/x/time/rate"
)

// Provider converts texts into embedding vectors via a remote API.
type Provider interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Error wraps a provider failure with provider and stage context.
type Error struct {
	Provider string
	Stage    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embed: %s %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client is the embedding front door used by the matching and simulation
// pipelines. Construct with NewClient; the zero value is not usable.
type Client struct {
	primary  Provider
	fallback Provider
	dims     int
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithFallback sets the secondary provider tried when the primary fails.
func WithFallback(p Provider) Option {
	return func(c *Client) { c.fallback = p }
}

// WithLimiter rate-limits outbound provider calls.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client. dims is the model's vector dimensionality;
// responses of any other length are rejected so a namespace can never
// accumulate mixed-dimension vectors.
func NewClient(primary Provider, dims int, opts ...Option) *Client {
	c := &Client{primary: primary, dims: dims, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dims returns the configured vector dimensionality.
func (c *Client) Dims() int { return c.dims }

// Encode embeds a single text. The primary provider is tried first; on any
// failure the fallback (if configured) is tried once. Both failing returns an
// *Error carrying the original primary cause.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, primaryErr := c.call(ctx, c.primary, "encode", []string{text})
	if primaryErr == nil {
		return vecs[0], nil
	}

	if c.fallback == nil {
		return nil, primaryErr
	}
	c.logger.Warn("embed: primary provider failed, trying fallback",
		"primary", c.primary.Name(), "fallback", c.fallback.Name(), "err", primaryErr)

	vecs, fallbackErr := c.call(ctx, c.fallback, "encode fallback", []string{text})
	if fallbackErr != nil {
		return nil, &Error{
			Provider: c.fallback.Name(),
			Stage:    "encode fallback",
			Err:      errors.Join(primaryErr, fallbackErr),
		}
	}
	return vecs[0], nil
}

// BatchEncode embeds texts in one primary-provider call, preserving input
// order. Empty input returns an empty slice without a network call. No
// fallback is attempted for batches.
func (c *Client) BatchEncode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return c.call(ctx, c.primary, "batch encode", texts)
}

// call runs one provider request and enforces the dimension contract.
func (c *Client) call(ctx context.Context, p Provider, stage string, texts []string) ([][]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Provider: p.Name(), Stage: stage, Err: err}
		}
	}

	vecs, err := p.Embed(ctx, texts)
	if err != nil {
		return nil, &Error{Provider: p.Name(), Stage: stage, Err: err}
	}
	if len(vecs) != len(texts) {
		return nil, &Error{Provider: p.Name(), Stage: stage,
			Err: fmt.Errorf("got %d vectors for %d texts", len(vecs), len(texts))}
	}
	if c.dims > 0 {
		for i, v := range vecs {
			if len(v) != c.dims {
				return nil, &Error{Provider: p.Name(), Stage: stage,
					Err: fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), c.dims, domain.ErrDimensionMismatch)}
			}
		}
	}
	return vecs, nil
}
