package admission

// DefaultMaxMarks is the maximum assumed for marks recorded without a subject template.
const DefaultMaxMarks = 25

// MergeMarks builds the interview marks sheet.
//
// When the variant has active templates they are authoritative: one row per template,
// in template order, with the marks recorded for that subject (nil if ungraded).
// Otherwise the recorded marks are listed as retrieved, out of DefaultMaxMarks.
func MergeMarks(templates []SubjectTemplate, marks []SubjectMark) []InterviewMark {
	if len(templates) > 0 {
		bySubject := make(map[string]*float64, len(marks))
		for _, m := range marks {
			if _, ok := bySubject[m.SubjectName]; !ok { // first recorded wins
				bySubject[m.SubjectName] = m.Marks
			}
		}

		sheet := make([]InterviewMark, 0, len(templates))
		for _, tmpl := range templates {
			sheet = append(sheet, InterviewMark{
				SubjectName:   tmpl.SubjectName,
				MarksObtained: bySubject[tmpl.SubjectName],
				MaxMarks:      tmpl.MaxMarks,
				DisplayOrder:  tmpl.DisplayOrder,
			})
		}
		return sheet
	}

	sheet := make([]InterviewMark, 0, len(marks))
	for i, m := range marks {
		sheet = append(sheet, InterviewMark{
			SubjectName:   m.SubjectName,
			MarksObtained: m.Marks,
			MaxMarks:      DefaultMaxMarks,
			DisplayOrder:  i + 1,
		})
	}
	return sheet
}
