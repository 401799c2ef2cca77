package model

// Subject 科目代码
type Subject string

const (
	SubjectArabic       Subject = "arabic"
	SubjectEnglish      Subject = "english"
	SubjectMath         Subject = "math"
	SubjectChemistry    Subject = "chemistry"
	SubjectPhysics      Subject = "physics"
	SubjectBiology      Subject = "biology"
	SubjectGeology      Subject = "geology"
	SubjectConstitution Subject = "constitution"
	SubjectIslamic      Subject = "islamic"
)

var subjectNames = map[Subject]string{
	SubjectArabic:       "اللغة العربية",
	SubjectEnglish:      "اللغة الإنجليزية",
	SubjectMath:         "الرياضيات",
	SubjectChemistry:    "الكيمياء",
	SubjectPhysics:      "الفيزياء",
	SubjectBiology:      "الأحياء",
	SubjectGeology:      "الجيولوجيا",
	SubjectConstitution: "الدستور",
	SubjectIslamic:      "التربية الإسلامية",
}

func (s Subject) Valid() bool {
	_, ok := subjectNames[s]
	return ok
}

// DisplayName 返回科目的展示名称，未知科目原样返回
func (s Subject) DisplayName() string {
	if name, ok := subjectNames[s]; ok {
		return name
	}
	return string(s)
}

// Semester 学期
type Semester string

const (
	SemesterFirst  Semester = "first"
	SemesterSecond Semester = "second"
)

func (s Semester) Valid() bool {
	return s == SemesterFirst || s == SemesterSecond
}
