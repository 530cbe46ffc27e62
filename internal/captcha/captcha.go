// Package captcha verifies bot-score tokens posted with public forms.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

var ErrVerificationFailed = errors.New("bot verification failed")

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Disabled accepts every token. Used when no secret is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string, string) error { return nil }

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Recaptcha checks tokens against a reCAPTCHA v3 style siteverify endpoint
// and rejects scores below MinScore.
type Recaptcha struct {
	Secret   string
	MinScore float64
	Endpoint string
	Timeout  time.Duration
}

func NewRecaptcha(secret string, minScore float64) *Recaptcha {
	return &Recaptcha{
		Secret:   secret,
		MinScore: minScore,
		Endpoint: DefaultEndpoint,
		Timeout:  5 * time.Second,
	}
}

func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrVerificationFailed)
	}

	timeout := r.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("secret", r.Secret)
	args.Set("response", token)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	agent := fiber.Post(r.Endpoint).Form(args).Timeout(timeout)

	var resp siteverifyResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return fmt.Errorf("siteverify request failed: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("siteverify returned status %d", code)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, resp.ErrorCodes)
	}
	if resp.Score < r.MinScore {
		return fmt.Errorf("%w: score %.2f below %.2f", ErrVerificationFailed, resp.Score, r.MinScore)
	}
	return nil
}
