package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/admissions/core"
	"github.com/trezcool/admissions/core/admission"
)

const (
	tableKgStdApplications   = "kg_std_applications"
	tablePlusOneApplications = "plus_one_applications"
	tableAdmissionForms      = "admission_forms"
	tableSubjectMarks        = "interview_subject_marks"
	tableSubjectTemplates    = "interview_subject_templates"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	kgStdColumns = []string{
		"id", "application_number", "mobile_number", "child_name", "gender", "date_of_birth", "stage_applied",
		"father_name", "mother_name", "guardian_name", "email", "address", "previous_school", "status",
		"interview_date", "created_at", "updated_at",
	}
	plusOneColumns = []string{
		"id", "application_number", "mobile_number", "student_name", "gender", "date_of_birth",
		"father_name", "mother_name", "guardian_name", "email", "address", "tenth_board", "tenth_school",
		"tenth_percentage", "stream_first_preference", "stream_second_preference", "status",
		"interview_date", "created_at", "updated_at",
	}

	templateOrdering = []core.DBOrdering{
		{Field: "display_order", Ascending: true},
		{Field: "subject_name", Ascending: true},
	}
	markOrdering = []core.DBOrdering{
		{Field: "created_at", Ascending: true},
		{Field: "id", Ascending: true},
	}
)

type (
	kgStdRow struct {
		ID                uuid.UUID   `db:"id"`
		ApplicationNumber string      `db:"application_number"`
		MobileNumber      string      `db:"mobile_number"`
		ChildName         null.String `db:"child_name"`
		Gender            null.String `db:"gender"`
		DateOfBirth       null.Time   `db:"date_of_birth"`
		StageApplied      null.String `db:"stage_applied"`
		FatherName        null.String `db:"father_name"`
		MotherName        null.String `db:"mother_name"`
		GuardianName      null.String `db:"guardian_name"`
		Email             null.String `db:"email"`
		Address           null.String `db:"address"`
		PreviousSchool    null.String `db:"previous_school"`
		Status            null.String `db:"status"`
		InterviewDate     null.Time   `db:"interview_date"`
		CreatedAt         null.Time   `db:"created_at"`
		UpdatedAt         null.Time   `db:"updated_at"`
	}

	plusOneRow struct {
		ID                uuid.UUID    `db:"id"`
		ApplicationNumber string       `db:"application_number"`
		MobileNumber      string       `db:"mobile_number"`
		StudentName       null.String  `db:"student_name"`
		Gender            null.String  `db:"gender"`
		DateOfBirth       null.Time    `db:"date_of_birth"`
		FatherName        null.String  `db:"father_name"`
		MotherName        null.String  `db:"mother_name"`
		GuardianName      null.String  `db:"guardian_name"`
		Email             null.String  `db:"email"`
		Address           null.String  `db:"address"`
		TenthBoard        null.String  `db:"tenth_board"`
		TenthSchool       null.String  `db:"tenth_school"`
		TenthPercentage   null.Float64 `db:"tenth_percentage"`
		FirstPreference   null.String  `db:"stream_first_preference"`
		SecondPreference  null.String  `db:"stream_second_preference"`
		Status            null.String  `db:"status"`
		InterviewDate     null.Time    `db:"interview_date"`
		CreatedAt         null.Time    `db:"created_at"`
		UpdatedAt         null.Time    `db:"updated_at"`
	}

	markRow struct {
		SubjectName string       `db:"subject_name"`
		Marks       null.Float64 `db:"marks"`
	}

	templateRow struct {
		SubjectName  string    `db:"subject_name"`
		MaxMarks     null.Int  `db:"max_marks"`
		DisplayOrder null.Int  `db:"display_order"`
		IsActive     null.Bool `db:"is_active"`
	}
)

type admissionRepository struct {
	exec core.DBExecutor
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(exec core.DBExecutor) admission.Repository {
	return &admissionRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to admission.ErrNotFound
func (repo admissionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return admission.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo admissionRepository) FindApplicant(ctx context.Context, variant admission.Variant, applicationNumber, mobileNumber string) (admission.Applicant, error) {
	where := sq.Eq{"application_number": applicationNumber, "mobile_number": mobileNumber}

	switch variant {
	case admission.VariantKgStd:
		query, args, err := psql.Select(kgStdColumns...).From(tableKgStdApplications).Where(where).Limit(1).ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "building kg_std application query")
		}
		var row kgStdRow
		if err = sqlx.GetContext(ctx, repo.exec, &row, query, args...); err != nil {
			return nil, repo.trapNoRowsErr(err, "finding kg_std application")
		}
		return unboilKgStd(row), nil

	case admission.VariantPlusOne:
		query, args, err := psql.Select(plusOneColumns...).From(tablePlusOneApplications).Where(where).Limit(1).ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "building plus_one application query")
		}
		var row plusOneRow
		if err = sqlx.GetContext(ctx, repo.exec, &row, query, args...); err != nil {
			return nil, repo.trapNoRowsErr(err, "finding plus_one application")
		}
		return unboilPlusOne(row), nil

	default:
		return nil, errors.Errorf("unknown application variant %q", variant)
	}
}

func (repo admissionRepository) GetAcademicYear(ctx context.Context, variant admission.Variant) (string, error) {
	query, args, err := psql.Select("academic_year").
		From(tableAdmissionForms).
		Where(sq.Eq{"form_type": string(variant)}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "building academic year query")
	}

	var year null.String
	if err = sqlx.GetContext(ctx, repo.exec, &year, query, args...); err != nil {
		return "", repo.trapNoRowsErr(err, "getting academic year")
	}
	if !year.Valid || year.String == "" {
		return "", admission.ErrNotFound
	}
	return year.String, nil
}

func (repo admissionRepository) QuerySubjectMarks(ctx context.Context, applicantID uuid.UUID, variant admission.Variant) ([]admission.SubjectMark, error) {
	query, args, err := psql.Select("subject_name", "marks").
		From(tableSubjectMarks).
		Where(sq.Eq{"application_id": applicantID.String(), "application_type": string(variant)}).
		OrderBy(orderBy(markOrdering)...).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building subject marks query")
	}

	var rows []markRow
	if err = sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subject marks")
	}

	marks := make([]admission.SubjectMark, 0, len(rows))
	for _, r := range rows {
		marks = append(marks, admission.SubjectMark{SubjectName: r.SubjectName, Marks: r.Marks.Ptr()})
	}
	return marks, nil
}

func (repo admissionRepository) QueryActiveTemplates(ctx context.Context, variant admission.Variant) ([]admission.SubjectTemplate, error) {
	query, args, err := psql.Select("subject_name", "max_marks", "display_order", "is_active").
		From(tableSubjectTemplates).
		Where(sq.Eq{"form_type": string(variant), "is_active": true}).
		OrderBy(orderBy(templateOrdering)...).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building subject templates query")
	}

	var rows []templateRow
	if err = sqlx.SelectContext(ctx, repo.exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying subject templates")
	}

	templates := make([]admission.SubjectTemplate, 0, len(rows))
	for _, r := range rows {
		tmpl := admission.SubjectTemplate{
			SubjectName:  r.SubjectName,
			MaxMarks:     admission.DefaultMaxMarks,
			DisplayOrder: r.DisplayOrder.Int,
			IsActive:     r.IsActive.Bool,
		}
		if r.MaxMarks.Valid {
			tmpl.MaxMarks = r.MaxMarks.Int
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func orderBy(ordering []core.DBOrdering) []string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return orderList
}

func statusPtr(s null.String) *admission.ApplicationStatus {
	if !s.Valid {
		return nil
	}
	status := admission.ApplicationStatus(s.String)
	return &status
}

func unboilKgStd(r kgStdRow) admission.KgStdApplicant {
	return admission.KgStdApplicant{
		ID:                r.ID,
		ApplicationNumber: r.ApplicationNumber,
		MobileNumber:      r.MobileNumber,
		ChildName:         r.ChildName.Ptr(),
		Gender:            r.Gender.Ptr(),
		DateOfBirth:       r.DateOfBirth.Ptr(),
		StageApplied:      r.StageApplied.Ptr(),
		FatherName:        r.FatherName.Ptr(),
		MotherName:        r.MotherName.Ptr(),
		GuardianName:      r.GuardianName.Ptr(),
		Email:             r.Email.Ptr(),
		Address:           r.Address.Ptr(),
		PreviousSchool:    r.PreviousSchool.Ptr(),
		Status:            statusPtr(r.Status),
		InterviewDate:     r.InterviewDate.Ptr(),
		CreatedAt:         r.CreatedAt.Ptr(),
		UpdatedAt:         r.UpdatedAt.Ptr(),
	}
}

func unboilPlusOne(r plusOneRow) admission.PlusOneApplicant {
	return admission.PlusOneApplicant{
		ID:                r.ID,
		ApplicationNumber: r.ApplicationNumber,
		MobileNumber:      r.MobileNumber,
		StudentName:       r.StudentName.Ptr(),
		Gender:            r.Gender.Ptr(),
		DateOfBirth:       r.DateOfBirth.Ptr(),
		FatherName:        r.FatherName.Ptr(),
		MotherName:        r.MotherName.Ptr(),
		GuardianName:      r.GuardianName.Ptr(),
		Email:             r.Email.Ptr(),
		Address:           r.Address.Ptr(),
		TenthBoard:        r.TenthBoard.Ptr(),
		TenthSchool:       r.TenthSchool.Ptr(),
		TenthPercentage:   r.TenthPercentage.Ptr(),
		FirstPreference:   r.FirstPreference.Ptr(),
		SecondPreference:  r.SecondPreference.Ptr(),
		Status:            statusPtr(r.Status),
		InterviewDate:     r.InterviewDate.Ptr(),
		CreatedAt:         r.CreatedAt.Ptr(),
		UpdatedAt:         r.UpdatedAt.Ptr(),
	}
}
