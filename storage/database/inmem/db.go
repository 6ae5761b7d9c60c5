package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/admissions/core/admission"
)

type (
	DB struct {
		sync.RWMutex
		applicants map[admission.Variant][]admission.Applicant
		years      map[admission.Variant]string
		marks      []markEntry
		templates  map[admission.Variant][]admission.SubjectTemplate
		failures   map[string]error
	}

	markEntry struct {
		applicantID uuid.UUID
		variant     admission.Variant
		mark        admission.SubjectMark
	}
)

func Open() *DB {
	return &DB{
		applicants: make(map[admission.Variant][]admission.Applicant),
		years:      make(map[admission.Variant]string),
		templates:  make(map[admission.Variant][]admission.SubjectTemplate),
		failures:   make(map[string]error),
	}
}

// InsertApplicant stores app in its variant table and assigns it an ID if it has none.
func (db *DB) InsertApplicant(app admission.Applicant) admission.Applicant {
	db.Lock()
	defer db.Unlock()

	if app.ApplicantID() == uuid.Nil {
		switch a := app.(type) {
		case admission.KgStdApplicant:
			a.ID = uuid.New()
			app = a
		case admission.PlusOneApplicant:
			a.ID = uuid.New()
			app = a
		}
	}
	db.applicants[app.Variant()] = append(db.applicants[app.Variant()], app)
	return app
}

func (db *DB) SetAcademicYear(variant admission.Variant, year string) {
	db.Lock()
	defer db.Unlock()
	db.years[variant] = year
}

func (db *DB) InsertMark(applicantID uuid.UUID, variant admission.Variant, mark admission.SubjectMark) {
	db.Lock()
	defer db.Unlock()
	db.marks = append(db.marks, markEntry{applicantID: applicantID, variant: variant, mark: mark})
}

func (db *DB) InsertTemplate(variant admission.Variant, tmpl admission.SubjectTemplate) {
	db.Lock()
	defer db.Unlock()
	db.templates[variant] = append(db.templates[variant], tmpl)
}

// FailOn makes the named repository method (e.g. "FindApplicant:plus_one") return err.
func (db *DB) FailOn(method string, err error) {
	db.Lock()
	defer db.Unlock()
	db.failures[method] = err
}

func (db *DB) failure(method string, variant admission.Variant) error {
	if err, ok := db.failures[method+":"+string(variant)]; ok {
		return err
	}
	return db.failures[method]
}
