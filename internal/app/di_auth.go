package app

import (
	"fmt"

	authHTTP "github.com/allisson/envvault/internal/auth/http"
	authRepository "github.com/allisson/envvault/internal/auth/repository"
	authService "github.com/allisson/envvault/internal/auth/service"
	authUseCase "github.com/allisson/envvault/internal/auth/usecase"
	"github.com/allisson/envvault/internal/database"
)

// APIKeyService returns the service that generates and verifies API key tokens.
func (c *Container) APIKeyService() authService.APIKeyService {
	c.apiKeyServiceInit.Do(func() {
		c.apiKeyService = authService.NewAPIKeyService()
	})
	return c.apiKeyService
}

// ProjectRepository returns the project repository based on database driver.
func (c *Container) ProjectRepository() (authUseCase.ProjectRepository, error) {
	var err error
	c.projectRepositoryInit.Do(func() {
		c.projectRepository, err = c.initProjectRepository()
		if err != nil {
			c.initErrors["projectRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["projectRepository"]; exists {
		return nil, storedErr
	}
	return c.projectRepository, nil
}

// APIKeyRepository returns the API key repository based on database driver.
func (c *Container) APIKeyRepository() (authUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeyRepositoryInit.Do(func() {
		c.apiKeyRepository, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepository, nil
}

// ProjectUseCase returns the project use case.
func (c *Container) ProjectUseCase() (authUseCase.ProjectUseCase, error) {
	var err error
	c.projectUseCaseInit.Do(func() {
		c.projectUseCase, err = c.initProjectUseCase()
		if err != nil {
			c.initErrors["projectUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["projectUseCase"]; exists {
		return nil, storedErr
	}
	return c.projectUseCase, nil
}

// APIKeyUseCase returns the API key use case.
func (c *Container) APIKeyUseCase() (authUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUseCaseInit.Do(func() {
		c.apiKeyUseCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeyUseCase, nil
}

// ProjectHandler returns the HTTP handler for project operations.
func (c *Container) ProjectHandler() (*authHTTP.ProjectHandler, error) {
	var err error
	c.projectHandlerInit.Do(func() {
		c.projectHandler, err = c.initProjectHandler()
		if err != nil {
			c.initErrors["projectHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["projectHandler"]; exists {
		return nil, storedErr
	}
	return c.projectHandler, nil
}

// initProjectRepository creates the project repository for the configured driver.
// SQLite shares the MySQL repository: both store UUIDs as 16-byte blobs.
func (c *Container) initProjectRepository() (authUseCase.ProjectRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for project repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLProjectRepository(db), nil
	case database.DriverMySQL, database.DriverSQLite:
		return authRepository.NewMySQLProjectRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIKeyRepository creates the API key repository for the configured driver.
func (c *Container) initAPIKeyRepository() (authUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLAPIKeyRepository(db), nil
	case database.DriverMySQL, database.DriverSQLite:
		return authRepository.NewMySQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initProjectUseCase creates the project use case, wrapped with metrics when enabled.
func (c *Container) initProjectUseCase() (authUseCase.ProjectUseCase, error) {
	projectRepository, err := c.ProjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get project repository for project use case: %w", err)
	}

	baseUseCase := authUseCase.NewProjectUseCase(projectRepository)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for project use case: %w", err)
		}
		return authUseCase.NewProjectUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAPIKeyUseCase creates the API key use case, wrapped with metrics when enabled.
func (c *Container) initAPIKeyUseCase() (authUseCase.APIKeyUseCase, error) {
	apiKeyRepository, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}

	cacheInstance, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for api key use case: %w", err)
	}

	baseUseCase := authUseCase.NewAPIKeyUseCase(apiKeyRepository, c.APIKeyService(), cacheInstance)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
		}
		return authUseCase.NewAPIKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initProjectHandler creates the project HTTP handler.
func (c *Container) initProjectHandler() (*authHTTP.ProjectHandler, error) {
	projectUseCase, err := c.ProjectUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get project use case for project handler: %w", err)
	}
	return authHTTP.NewProjectHandler(projectUseCase, c.Logger()), nil
}

