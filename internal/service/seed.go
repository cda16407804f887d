package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// SeedCredential inserts the configured seed account when it is absent,
// storing the secret in the form the active password scheme expects.
func SeedCredential(ctx context.Context, repo repository.CredentialRepository, store config.StoreConfig, authCfg config.AuthConfig, logger *zap.Logger) error {
	if store.SeedUsername == "" {
		return nil
	}
	secret, err := auth.StoredSecret(authCfg.PasswordScheme, store.SeedPassword, authCfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("prepare seed secret: %w", err)
	}
	created, err := repo.EnsureCredential(ctx, domain.CredentialRecord{Username: store.SeedUsername, Secret: secret})
	if err != nil {
		return fmt.Errorf("seed credential: %w", err)
	}
	if created {
		logger.Info("seeded credential", zap.String("username", store.SeedUsername))
	}
	return nil
}
