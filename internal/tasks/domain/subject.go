package domain

import (
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// Subject is the closed set of exam subjects. Tasks, sessions and the
// daily statistics buckets are all keyed by it.
type Subject string

const (
	SubjectComputer408 Subject = "COMPUTER_408"
	SubjectMath        Subject = "MATH"
	SubjectEnglish     Subject = "ENGLISH"
	SubjectPolitics    Subject = "POLITICS"
)

// AllSubjects returns every subject in display order.
func AllSubjects() []Subject {
	return []Subject{SubjectComputer408, SubjectMath, SubjectEnglish, SubjectPolitics}
}

// ParseSubject converts a raw string into a Subject. Unrecognized values
// are a validation error, never coerced.
func ParseSubject(s string) (Subject, error) {
	switch Subject(s) {
	case SubjectComputer408, SubjectMath, SubjectEnglish, SubjectPolitics:
		return Subject(s), nil
	default:
		return "", sharedDomain.Validationf("unknown subject %q", s)
	}
}

// IsValid checks if the subject is one of the recognized values.
func (s Subject) IsValid() bool {
	switch s {
	case SubjectComputer408, SubjectMath, SubjectEnglish, SubjectPolitics:
		return true
	default:
		return false
	}
}

// Name returns the display name of the subject.
func (s Subject) Name() string {
	switch s {
	case SubjectComputer408:
		return "计算机408"
	case SubjectMath:
		return "数学"
	case SubjectEnglish:
		return "英语"
	case SubjectPolitics:
		return "政治"
	default:
		return string(s)
	}
}

// ShortName returns the abbreviated display name of the subject.
func (s Subject) ShortName() string {
	switch s {
	case SubjectComputer408:
		return "408"
	case SubjectMath:
		return "数学"
	case SubjectEnglish:
		return "英语"
	case SubjectPolitics:
		return "政治"
	default:
		return string(s)
	}
}

// Color returns the display color of the subject.
func (s Subject) Color() string {
	switch s {
	case SubjectComputer408:
		return "#3B82F6"
	case SubjectMath:
		return "#10B981"
	case SubjectEnglish:
		return "#F59E0B"
	case SubjectPolitics:
		return "#EF4444"
	default:
		return "#6B7280"
	}
}
