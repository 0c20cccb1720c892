package polymarket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase = "https://clob.polymarket.com"

	// Solo se hacen pruebas de saldo puntuales: límite muy por debajo del CLOB
	// general (9000/10s) para no competir con otros clientes de la misma cuenta.
	clobRatePerSec = 5
	clobBurst      = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client base del CLOB con rate limiting y retries.
type Client struct {
	http        *http.Client
	clobBase    string
	clobLimiter *rate.Limiter
}

// NewClient crea un Client. Si clobBase está vacío usa el URL de producción.
func NewClient(clobBase string) *Client {
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	return &Client{
		http:        &http.Client{Timeout: 10 * time.Second},
		clobBase:    clobBase,
		clobLimiter: rate.NewLimiter(clobRatePerSec, clobBurst),
	}
}

// doWithRetry ejecuta la request construida por newReq con backoff exponencial.
// newReq se llama en cada intento para que las cabeceras firmadas lleven timestamp fresco.
// Devuelve el body crudo de la primera respuesta 2xx.
func (c *Client) doWithRetry(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.clobLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("rate limited by CLOB", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode >= 500 {
			if attempt == maxRetries {
				return nil, fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	}
	return nil, fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
