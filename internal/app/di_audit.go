package app

import (
	"database/sql"
	"fmt"

	auditHTTP "github.com/allisson/incidenthub/internal/audit/http"
	auditRepository "github.com/allisson/incidenthub/internal/audit/repository"
	auditService "github.com/allisson/incidenthub/internal/audit/service"
	auditUseCase "github.com/allisson/incidenthub/internal/audit/usecase"
)

type auditComponents struct {
	auditSigner   lazy[auditService.Signer]
	auditRepo     lazy[auditUseCase.AuditRepository]
	auditRecorder lazy[auditUseCase.Recorder]
	auditUseCase  lazy[auditUseCase.AuditUseCase]
	auditHandler  lazy[*auditHTTP.AuditHandler]
}

// AuditSigner returns the record signer. Without AUDIT_SIGNING_KEY the access token
// secret is used as input key material; the derivation label keeps the two keys apart.
func (c *Container) AuditSigner() (auditService.Signer, error) {
	return c.auditSigner.get(func() (auditService.Signer, error) {
		secret := c.config.AuditSigningKey
		if secret == "" {
			secret = c.config.AccessTokenSecret
		}
		signer, err := auditService.NewSigner([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("failed to create audit signer: %w", err)
		}
		return signer, nil
	})
}

// AuditRepository returns the audit store for the configured driver.
func (c *Container) AuditRepository() (auditUseCase.AuditRepository, error) {
	return c.auditRepo.get(func() (auditUseCase.AuditRepository, error) {
		return selectRepository(c, "audit",
			func(db *sql.DB) auditUseCase.AuditRepository { return auditRepository.NewPostgreSQLAuditRepository(db) },
			func(db *sql.DB) auditUseCase.AuditRepository { return auditRepository.NewMySQLAuditRepository(db) },
		)
	})
}

// AuditRecorder returns the asynchronous post-commit audit recorder.
func (c *Container) AuditRecorder() (auditUseCase.Recorder, error) {
	return c.auditRecorder.get(func() (auditUseCase.Recorder, error) {
		repo, err := c.AuditRepository()
		if err != nil {
			return nil, err
		}
		signer, err := c.AuditSigner()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}
		return auditUseCase.NewRecorder(repo, signer, c.config.AuditWriteTimeout, c.Logger(), businessMetrics), nil
	})
}

// AuditUseCase returns audit listing, verification and retention.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	return c.auditUseCase.get(func() (auditUseCase.AuditUseCase, error) {
		repo, err := c.AuditRepository()
		if err != nil {
			return nil, err
		}
		signer, err := c.AuditSigner()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}
		return auditUseCase.NewAuditUseCaseWithMetrics(auditUseCase.NewAuditUseCase(repo, signer), businessMetrics), nil
	})
}

// AuditHandler returns the /api/audit-logs handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	return c.auditHandler.get(func() (*auditHTTP.AuditHandler, error) {
		useCase, err := c.AuditUseCase()
		if err != nil {
			return nil, err
		}
		return auditHTTP.NewAuditHandler(useCase, c.Logger()), nil
	})
}
