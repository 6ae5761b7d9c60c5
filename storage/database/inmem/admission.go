package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/admissions/core/admission"
)

type admissionRepository struct {
	db *DB
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{db: db}
}

func (repo *admissionRepository) FindApplicant(_ context.Context, variant admission.Variant, applicationNumber, mobileNumber string) (admission.Applicant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if !variant.IsValid() {
		return nil, errors.Errorf("unknown application variant %q", variant)
	}
	if err := repo.db.failure("FindApplicant", variant); err != nil {
		return nil, err
	}
	for _, app := range repo.db.applicants[variant] {
		if app.AppNumber() == applicationNumber && app.MobileNo() == mobileNumber {
			return app, nil
		}
	}
	return nil, admission.ErrNotFound
}

func (repo *admissionRepository) GetAcademicYear(_ context.Context, variant admission.Variant) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if err := repo.db.failure("GetAcademicYear", variant); err != nil {
		return "", err
	}
	if year, ok := repo.db.years[variant]; ok && year != "" {
		return year, nil
	}
	return "", admission.ErrNotFound
}

func (repo *admissionRepository) QuerySubjectMarks(_ context.Context, applicantID uuid.UUID, variant admission.Variant) ([]admission.SubjectMark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if err := repo.db.failure("QuerySubjectMarks", variant); err != nil {
		return nil, err
	}
	var marks []admission.SubjectMark
	for _, entry := range repo.db.marks {
		if entry.applicantID == applicantID && entry.variant == variant {
			marks = append(marks, entry.mark)
		}
	}
	return marks, nil
}

func (repo *admissionRepository) QueryActiveTemplates(_ context.Context, variant admission.Variant) ([]admission.SubjectTemplate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if err := repo.db.failure("QueryActiveTemplates", variant); err != nil {
		return nil, err
	}
	var templates []admission.SubjectTemplate
	for _, tmpl := range repo.db.templates[variant] {
		if tmpl.IsActive {
			templates = append(templates, tmpl)
		}
	}
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].DisplayOrder < templates[j].DisplayOrder })
	return templates, nil
}
