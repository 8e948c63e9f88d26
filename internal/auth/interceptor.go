package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// hashSecret computes BLAKE2b-256 hash of the secret and returns hex-encoded string.
// BLAKE2b is faster than SHA-256 while maintaining security for high-entropy API keys.
func hashSecret(secret string) string {
	hash := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// maskAPIKey returns a safe-to-log version of an API key showing only the prefix.
func maskAPIKey(apiKey string) string {
	parts := strings.Split(apiKey, "-")
	if len(parts) >= 1 {
		return parts[0] + "-***"
	}
	return "***"
}

type lastUsedUpdate struct {
	keyID     uuid.UUID
	timestamp time.Time
}

// Authenticator validates API keys presented over gRPC metadata, gating
// the control plane's StartRun/CancelRun (spec §"Admin surface
// authentication"). GetStatus never calls it.
type Authenticator struct {
	store           KeyStore
	appCtx          context.Context
	lastUsedUpdates chan lastUsedUpdate
	shutdownChan    chan struct{}
	wg              sync.WaitGroup
}

// NewAuthenticator starts the background worker that records last-used
// timestamps without blocking the request path.
func NewAuthenticator(ctx context.Context, store KeyStore) *Authenticator {
	a := &Authenticator{
		store:           store,
		appCtx:          ctx,
		lastUsedUpdates: make(chan lastUsedUpdate, 1000),
		shutdownChan:    make(chan struct{}),
	}
	a.wg.Add(1)
	go a.processLastUsedUpdates()
	return a
}

// UnaryInterceptor is a gRPC unary interceptor for API key authentication.
func (a *Authenticator) UnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	if err := a.Authorize(ctx); err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// Authorize implements internal/transport/grpc.Authorizer: it extracts a
// bearer API key from incoming gRPC metadata and validates it.
func (a *Authenticator) Authorize(ctx context.Context) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}

	authHeader := authHeaders[0]
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return status.Error(codes.Unauthenticated, "invalid authorization header format")
	}

	apiKey := strings.TrimPrefix(authHeader, "Bearer ")
	if apiKey == "" {
		return status.Error(codes.Unauthenticated, "empty API key")
	}

	if err := a.ValidateAPIKey(ctx, apiKey); err != nil {
		return status.Error(codes.Unauthenticated, "invalid credentials")
	}
	return nil
}

// ValidateAPIKey checks a bearer token against the store, queuing a
// last-used update on success. Shared by the gRPC interceptor (Authorize)
// and internal/http's bearer-token middleware, so both transports enforce
// identical key semantics.
func (a *Authenticator) ValidateAPIKey(ctx context.Context, apiKey string) error {
	if err := a.validateAPIKey(ctx, apiKey); err != nil {
		// Log detailed error internally; return a generic error so callers
		// cannot enumerate short tokens or distinguish failure causes.
		slog.WarnContext(ctx, "authentication failed",
			slog.String("key_prefix", maskAPIKey(apiKey)),
			slog.String("error", err.Error()))
		return ErrUnauthenticated
	}
	return nil
}

func (a *Authenticator) processLastUsedUpdates() {
	defer a.wg.Done()

	for {
		select {
		case update := <-a.lastUsedUpdates:
			ctx, cancel := context.WithTimeout(a.appCtx, 5*time.Second)
			if err := a.store.UpdateLastUsed(ctx, update.keyID, update.timestamp); err != nil {
				slog.WarnContext(ctx, "failed to update API key last_used_at",
					slog.String("key_id", update.keyID.String()),
					slog.String("error", err.Error()))
			}
			cancel()

		case <-a.shutdownChan:
			for {
				select {
				case update := <-a.lastUsedUpdates:
					ctx, cancel := context.WithTimeout(a.appCtx, 5*time.Second)
					_ = a.store.UpdateLastUsed(ctx, update.keyID, update.timestamp)
					cancel()
				default:
					return
				}
			}
		}
	}
}

// Shutdown signals the background worker to drain and waits for it,
// respecting ctx's deadline.
func (a *Authenticator) Shutdown(ctx context.Context) error {
	close(a.shutdownChan)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// validateAPIKey checks apiKey against the store via O(1) indexed lookup
// by short_token, then queues a last_used_at update.
func (a *Authenticator) validateAPIKey(ctx context.Context, apiKey string) error {
	keyParts, err := ParseAPIKey(apiKey)
	if err != nil {
		return fmt.Errorf("invalid API key format: %w", err)
	}

	key, err := a.store.GetByShortToken(ctx, keyParts.ShortToken)
	if err != nil {
		return fmt.Errorf("API key not found")
	}

	providedHash := hashSecret(keyParts.LongSecret)
	if subtle.ConstantTimeCompare([]byte(key.LongSecretHash), []byte(providedHash)) != 1 {
		return fmt.Errorf("invalid API key")
	}

	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now().UTC()) {
		return fmt.Errorf("API key expired")
	}

	select {
	case a.lastUsedUpdates <- lastUsedUpdate{keyID: key.ID, timestamp: time.Now().UTC()}:
	default:
		// Channel full; last_used_at is non-critical, so the update is
		// dropped rather than blocking the request path.
		slog.WarnContext(ctx, "dropped last_used_at update due to full queue",
			slog.String("key_id", key.ID.String()))
	}

	return nil
}
