package admission

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/admissions/core"
)

// Variant is the intake form an applicant filled in. Each variant lives in its own table.
type Variant string

const (
	VariantKgStd   Variant = "kg_std"
	VariantPlusOne Variant = "plus_one"
)

// Variants lists every intake variant in lookup order.
var Variants = []Variant{VariantKgStd, VariantPlusOne}

func (v Variant) IsValid() bool {
	for _, variant := range Variants {
		if v == variant {
			return true
		}
	}
	return false
}

// ApplicationStatus tracks an applicant through the intake-to-admission workflow.
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewComplete  ApplicationStatus = "interview_complete"
	StatusAdmitted           ApplicationStatus = "admitted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWaitlisted         ApplicationStatus = "waitlisted"
)

// Applicant is either a KgStdApplicant or a PlusOneApplicant.
//
// Optional fields are pointers tagged `omitempty`: a field that is null in the store
// never shows up in the serialized applicant.
type Applicant interface {
	Variant() Variant
	ApplicantID() uuid.UUID
	AppNumber() string
	MobileNo() string
}

// KgStdApplicant is an application submitted through the KG / Std 1-9 intake form.
type KgStdApplicant struct {
	ID                uuid.UUID          `json:"id"`
	ApplicationNumber string             `json:"application_number"`
	MobileNumber      string             `json:"mobile_number"`
	ChildName         *string            `json:"child_name,omitempty"`
	Gender            *string            `json:"gender,omitempty"`
	DateOfBirth       *time.Time         `json:"date_of_birth,omitempty"`
	StageApplied      *string            `json:"stage_applied,omitempty"`
	FatherName        *string            `json:"father_name,omitempty"`
	MotherName        *string            `json:"mother_name,omitempty"`
	GuardianName      *string            `json:"guardian_name,omitempty"`
	Email             *string            `json:"email,omitempty"`
	Address           *string            `json:"address,omitempty"`
	PreviousSchool    *string            `json:"previous_school,omitempty"`
	Status            *ApplicationStatus `json:"status,omitempty"`
	InterviewDate     *time.Time         `json:"interview_date,omitempty"`
	CreatedAt         *time.Time         `json:"created_at,omitempty"`
	UpdatedAt         *time.Time         `json:"updated_at,omitempty"`
}

func (a KgStdApplicant) Variant() Variant       { return VariantKgStd }
func (a KgStdApplicant) ApplicantID() uuid.UUID { return a.ID }
func (a KgStdApplicant) AppNumber() string      { return a.ApplicationNumber }
func (a KgStdApplicant) MobileNo() string       { return a.MobileNumber }

// PlusOneApplicant is an application submitted through the Plus One (Std 11) intake form.
type PlusOneApplicant struct {
	ID                uuid.UUID          `json:"id"`
	ApplicationNumber string             `json:"application_number"`
	MobileNumber      string             `json:"mobile_number"`
	StudentName       *string            `json:"student_name,omitempty"`
	Gender            *string            `json:"gender,omitempty"`
	DateOfBirth       *time.Time         `json:"date_of_birth,omitempty"`
	FatherName        *string            `json:"father_name,omitempty"`
	MotherName        *string            `json:"mother_name,omitempty"`
	GuardianName      *string            `json:"guardian_name,omitempty"`
	Email             *string            `json:"email,omitempty"`
	Address           *string            `json:"address,omitempty"`
	TenthBoard        *string            `json:"tenth_board,omitempty"`
	TenthSchool       *string            `json:"tenth_school,omitempty"`
	TenthPercentage   *float64           `json:"tenth_percentage,omitempty"`
	FirstPreference   *string            `json:"stream_first_preference,omitempty"`
	SecondPreference  *string            `json:"stream_second_preference,omitempty"`
	Status            *ApplicationStatus `json:"status,omitempty"`
	InterviewDate     *time.Time         `json:"interview_date,omitempty"`
	CreatedAt         *time.Time         `json:"created_at,omitempty"`
	UpdatedAt         *time.Time         `json:"updated_at,omitempty"`
}

func (a PlusOneApplicant) Variant() Variant       { return VariantPlusOne }
func (a PlusOneApplicant) ApplicantID() uuid.UUID { return a.ID }
func (a PlusOneApplicant) AppNumber() string      { return a.ApplicationNumber }
func (a PlusOneApplicant) MobileNo() string       { return a.MobileNumber }

// SubjectMark is the score recorded for one applicant on one interview subject.
type SubjectMark struct {
	SubjectName string
	Marks       *float64 // nil while ungraded
}

// SubjectTemplate defines an interview subject of a variant.
type SubjectTemplate struct {
	SubjectName  string
	MaxMarks     int
	DisplayOrder int
	IsActive     bool
}

// InterviewMark is one row of the interview marks sheet shown to the applicant.
type InterviewMark struct {
	SubjectName   string   `json:"subject_name"`
	MarksObtained *float64 `json:"marks_obtained"`
	MaxMarks      int      `json:"max_marks"`
	DisplayOrder  int      `json:"display_order"`
}

// Query identifies an application by its number and the mobile number used on the form.
type Query struct {
	ApplicationNumber string `json:"applicationNumber" validate:"required,notblank"`
	MobileNumber      string `json:"mobileNumber" validate:"required,notblank"`
}

func (q *Query) Validate(validate *validator.Validate, translator ut.Translator) error {
	q.ApplicationNumber = core.CleanString(q.ApplicationNumber)
	q.MobileNumber = core.CleanString(q.MobileNumber)

	if err := validate.Struct(q); err != nil {
		return core.NewValidationError(ErrInputRequired, core.TranslateFieldErrors(err, translator)...)
	}
	return nil
}

// StatusResult is the read-model returned for a status lookup.
type StatusResult struct {
	Application     Applicant       `json:"application"`
	ApplicationType Variant         `json:"applicationType"`
	AcademicYear    *string         `json:"academicYear"`
	InterviewMarks  []InterviewMark `json:"interviewMarks"`
}
