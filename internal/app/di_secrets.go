package app

import (
	"fmt"

	cryptoService "github.com/allisson/envvault/internal/crypto/service"
	"github.com/allisson/envvault/internal/database"
	secretsHTTP "github.com/allisson/envvault/internal/secrets/http"
	secretsRepository "github.com/allisson/envvault/internal/secrets/repository"
	secretsUseCase "github.com/allisson/envvault/internal/secrets/usecase"
)

// EnvelopeCodec returns the passphrase envelope codec used for server-side encryption.
func (c *Container) EnvelopeCodec() cryptoService.EnvelopeCodec {
	c.envelopeCodecInit.Do(func() {
		deriver := cryptoService.NewPBKDF2Deriver(c.config.CryptoPBKDF2Iterations)
		c.envelopeCodec = cryptoService.NewEnvelopeService(deriver)
	})
	return c.envelopeCodec
}

// SecretRepository returns the secret version repository based on database driver.
func (c *Container) SecretRepository() (secretsUseCase.SecretVersionRepository, error) {
	var err error
	c.secretRepositoryInit.Do(func() {
		c.secretRepository, err = c.initSecretRepository()
		if err != nil {
			c.initErrors["secretRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretRepository"]; exists {
		return nil, storedErr
	}
	return c.secretRepository, nil
}

// SecretUseCase returns the secret use case.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	var err error
	c.secretUseCaseInit.Do(func() {
		c.secretUseCase, err = c.initSecretUseCase()
		if err != nil {
			c.initErrors["secretUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretUseCase"]; exists {
		return nil, storedErr
	}
	return c.secretUseCase, nil
}

// SecretHandler returns the HTTP handler for secret operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// initSecretRepository creates the secret version repository for the configured driver.
func (c *Container) initSecretRepository() (secretsUseCase.SecretVersionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return secretsRepository.NewPostgreSQLSecretRepository(db), nil
	case database.DriverMySQL, database.DriverSQLite:
		return secretsRepository.NewMySQLSecretRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSecretUseCase creates the secret use case, wrapped with metrics when enabled.
// Project ownership is checked through the project use case.
func (c *Container) initSecretUseCase() (secretsUseCase.SecretUseCase, error) {
	secretRepository, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for secret use case: %w", err)
	}

	projectUseCase, err := c.ProjectUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get project use case for secret use case: %w", err)
	}

	cacheInstance, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for secret use case: %w", err)
	}

	baseUseCase := secretsUseCase.NewSecretUseCase(
		secretRepository,
		projectUseCase,
		c.EnvelopeCodec(),
		cacheInstance,
		secretsUseCase.Config{
			MaxUploadAttempts: c.config.SecretsUploadMaxAttempts,
			EnvironmentsTTL:   c.config.CacheEnvironmentsTTL,
		},
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
		}
		return secretsUseCase.NewSecretUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSecretHandler creates the secret HTTP handler.
func (c *Container) initSecretHandler() (*secretsHTTP.SecretHandler, error) {
	secretUseCase, err := c.SecretUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for secret handler: %w", err)
	}
	return secretsHTTP.NewSecretHandler(secretUseCase, c.Logger()), nil
}
