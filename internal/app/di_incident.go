package app

import (
	"database/sql"

	incidentHTTP "github.com/allisson/incidenthub/internal/incident/http"
	incidentRepository "github.com/allisson/incidenthub/internal/incident/repository"
	incidentUseCase "github.com/allisson/incidenthub/internal/incident/usecase"
)

type incidentComponents struct {
	incidentRepo    lazy[incidentUseCase.IncidentRepository]
	commentRepo     lazy[incidentUseCase.CommentRepository]
	incidentUseCase lazy[incidentUseCase.IncidentUseCase]
	commentUseCase  lazy[incidentUseCase.CommentUseCase]
	incidentHandler lazy[*incidentHTTP.IncidentHandler]
	commentHandler  lazy[*incidentHTTP.CommentHandler]
}

// IncidentRepository returns the incident store for the configured driver.
func (c *Container) IncidentRepository() (incidentUseCase.IncidentRepository, error) {
	return c.incidentRepo.get(func() (incidentUseCase.IncidentRepository, error) {
		return selectRepository(c, "incident",
			func(db *sql.DB) incidentUseCase.IncidentRepository {
				return incidentRepository.NewPostgreSQLIncidentRepository(db)
			},
			func(db *sql.DB) incidentUseCase.IncidentRepository {
				return incidentRepository.NewMySQLIncidentRepository(db)
			},
		)
	})
}

// CommentRepository returns the comment store for the configured driver.
func (c *Container) CommentRepository() (incidentUseCase.CommentRepository, error) {
	return c.commentRepo.get(func() (incidentUseCase.CommentRepository, error) {
		return selectRepository(c, "comment",
			func(db *sql.DB) incidentUseCase.CommentRepository {
				return incidentRepository.NewPostgreSQLCommentRepository(db)
			},
			func(db *sql.DB) incidentUseCase.CommentRepository {
				return incidentRepository.NewMySQLCommentRepository(db)
			},
		)
	})
}

// IncidentUseCase returns the incident use case.
func (c *Container) IncidentUseCase() (incidentUseCase.IncidentUseCase, error) {
	return c.incidentUseCase.get(func() (incidentUseCase.IncidentUseCase, error) {
		repo, err := c.IncidentRepository()
		if err != nil {
			return nil, err
		}
		users, err := c.UserUseCase()
		if err != nil {
			return nil, err
		}
		mutator, err := c.MutationCoordinator()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := incidentUseCase.NewIncidentUseCase(repo, users, mutator)
		return incidentUseCase.NewIncidentUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// CommentUseCase returns the comment use case.
func (c *Container) CommentUseCase() (incidentUseCase.CommentUseCase, error) {
	return c.commentUseCase.get(func() (incidentUseCase.CommentUseCase, error) {
		incidents, err := c.IncidentRepository()
		if err != nil {
			return nil, err
		}
		comments, err := c.CommentRepository()
		if err != nil {
			return nil, err
		}
		mutator, err := c.MutationCoordinator()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := incidentUseCase.NewCommentUseCase(incidents, comments, mutator)
		return incidentUseCase.NewCommentUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// IncidentHandler returns the /api/incidents handlers.
func (c *Container) IncidentHandler() (*incidentHTTP.IncidentHandler, error) {
	return c.incidentHandler.get(func() (*incidentHTTP.IncidentHandler, error) {
		useCase, err := c.IncidentUseCase()
		if err != nil {
			return nil, err
		}
		return incidentHTTP.NewIncidentHandler(useCase, c.Logger()), nil
	})
}

// CommentHandler returns the /api/incidents/:id/comments handlers.
func (c *Container) CommentHandler() (*incidentHTTP.CommentHandler, error) {
	return c.commentHandler.get(func() (*incidentHTTP.CommentHandler, error) {
		useCase, err := c.CommentUseCase()
		if err != nil {
			return nil, err
		}
		return incidentHTTP.NewCommentHandler(useCase, c.Logger()), nil
	})
}
