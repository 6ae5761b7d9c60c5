package admission

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/admissions/core"
)

var (
	// errors
	ErrInputRequired = errors.New("application number and mobile number are required")
	ErrNotFound      = errors.New("application not found")
	ErrLoadFailed    = errors.New("failed to load application")
)

type (
	Repository interface {
		// FindApplicant returns ErrNotFound when the variant's table has no row
		// matching both numbers exactly.
		FindApplicant(ctx context.Context, variant Variant, applicationNumber, mobileNumber string) (Applicant, error)
		// GetAcademicYear returns ErrNotFound when the variant has no admission form
		// or the form has no academic year.
		GetAcademicYear(ctx context.Context, variant Variant) (string, error)
		QuerySubjectMarks(ctx context.Context, applicantID uuid.UUID, variant Variant) ([]SubjectMark, error)
		// QueryActiveTemplates returns the active templates ordered by display order.
		QueryActiveTemplates(ctx context.Context, variant Variant) ([]SubjectTemplate, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		logger:     logger,
	}
}

// GetStatus resolves the application identified by q along with its interview marks.
func (svc *Service) GetStatus(ctx context.Context, q Query) (StatusResult, error) {
	if err := q.Validate(svc.validate, svc.translator); err != nil {
		return StatusResult{}, err
	}

	app, err := svc.findApplicant(ctx, q)
	if err != nil {
		return StatusResult{}, err
	}
	variant := app.Variant()

	res := StatusResult{
		Application:     app,
		ApplicationType: variant,
		AcademicYear:    svc.academicYear(ctx, q, variant),
	}

	marks, err := svc.repo.QuerySubjectMarks(ctx, app.ApplicantID(), variant)
	if err != nil {
		svc.logger.Warn("loading interview marks", errors.Wrapf(err, "querying %s subject marks", variant), q)
		marks = nil
	}
	templates, err := svc.repo.QueryActiveTemplates(ctx, variant)
	if err != nil {
		svc.logger.Warn("loading interview subject templates", errors.Wrapf(err, "querying %s subject templates", variant), q)
		templates = nil
	}
	res.InterviewMarks = MergeMarks(templates, marks)

	return res, nil
}

// findApplicant searches the variant tables in order; the first match wins.
// A failing table read aborts the lookup instead of falling through to the next table.
func (svc *Service) findApplicant(ctx context.Context, q Query) (Applicant, error) {
	for _, variant := range Variants {
		app, err := svc.repo.FindApplicant(ctx, variant, q.ApplicationNumber, q.MobileNumber)
		if err == nil {
			return app, nil
		}
		if errors.Cause(err) != ErrNotFound {
			svc.logger.Error("loading application", errors.Wrapf(err, "probing %s applications", variant), q)
			return nil, errors.Wrapf(ErrLoadFailed, "probing %s applications", variant)
		}
	}
	return nil, ErrNotFound
}

func (svc *Service) academicYear(ctx context.Context, q Query, variant Variant) *string {
	year, err := svc.repo.GetAcademicYear(ctx, variant)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			svc.logger.Warn("loading academic year", errors.Wrapf(err, "getting %s academic year", variant), q)
		}
		return nil
	}
	return &year
}
