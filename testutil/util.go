package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/admissions/core"
	"github.com/trezcool/admissions/core/admission"
	inmemdb "github.com/trezcool/admissions/storage/database/inmem"
)

const (
	ScenarioApplicationNumber = "KG2024001"
	ScenarioMobileNumber      = "9876543210"
	ScenarioAcademicYear      = "2024-2025"
)

func StrPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }

func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

// NewAdmissionService returns a resolver backed by db.
func NewAdmissionService(db *inmemdb.DB, logger core.Logger) *admission.Service {
	validate, translator := NewValidator()
	return admission.NewService(inmemdb.NewAdmissionRepository(db), validate, translator, logger)
}

// SeedScenario stores the KG2024001 applicant: three active templates, marks for English and Mathematics only.
func SeedScenario(t *testing.T, db *inmemdb.DB) admission.KgStdApplicant {
	t.Helper()

	status := admission.StatusInterviewComplete
	app, ok := db.InsertApplicant(admission.KgStdApplicant{
		ApplicationNumber: ScenarioApplicationNumber,
		MobileNumber:      ScenarioMobileNumber,
		ChildName:         StrPtr("Asha Menon"),
		StageApplied:      StrPtr("LKG"),
		FatherName:        StrPtr("Ravi Menon"),
		Status:            &status,
	}).(admission.KgStdApplicant)
	if !ok {
		t.Fatal("SeedScenario() failed: unexpected applicant type")
	}

	db.SetAcademicYear(admission.VariantKgStd, ScenarioAcademicYear)
	for i, subject := range []string{"English", "Mathematics", "Science"} {
		db.InsertTemplate(admission.VariantKgStd, admission.SubjectTemplate{
			SubjectName:  subject,
			MaxMarks:     25,
			DisplayOrder: i + 1,
			IsActive:     true,
		})
	}
	db.InsertMark(app.ID, admission.VariantKgStd, admission.SubjectMark{SubjectName: "English", Marks: FloatPtr(20)})
	db.InsertMark(app.ID, admission.VariantKgStd, admission.SubjectMark{SubjectName: "Mathematics", Marks: FloatPtr(22)})
	return app
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records entries instead of printing them.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

// String renders every entry, errors with their stack.
func (l *Logger) String() string {
	var sb strings.Builder
	for _, e := range l.Entries("") {
		sb.WriteString(fmt.Sprintf("[%s] %s", e.Level, e.Msg))
		for _, arg := range e.Args {
			sb.WriteString(fmt.Sprintf(" %+v", arg))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
