package feature

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Categorical profile fields are closed enumerations with integer codes.
// Code 0 is always the "unknown" bucket: an unrecognized input string maps
// there rather than failing, so free-form profile data can never break
// feature preparation.

// State is a two-letter US state code recognized by the trained model.
type State string

// States covered by the model's training data, in code order.
var stateCodes = []State{
	"AZ", "CA", "FL", "GA", "IL", "IN", "MA", "MD", "MI", "MO",
	"NC", "NJ", "NY", "OH", "PA", "TN", "TX", "VA", "WA", "WI",
}

// EducationLevel is a recognized education attainment bucket.
type EducationLevel string

const (
	EducationHighSchool  EducationLevel = "high_school"
	EducationSomeCollege EducationLevel = "some_college"
	EducationBachelors   EducationLevel = "bachelors"
	EducationMasters     EducationLevel = "masters"
	EducationDoctorate   EducationLevel = "doctorate"
)

var educationCodes = []EducationLevel{
	EducationHighSchool,
	EducationSomeCollege,
	EducationBachelors,
	EducationMasters,
	EducationDoctorate,
}

// EmploymentType is a recognized employment status bucket.
type EmploymentType string

const (
	EmploymentFullTime     EmploymentType = "full_time"
	EmploymentPartTime     EmploymentType = "part_time"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentUnemployed   EmploymentType = "unemployed"
	EmploymentStudent      EmploymentType = "student"
	EmploymentRetired      EmploymentType = "retired"
)

var employmentCodes = []EmploymentType{
	EmploymentFullTime,
	EmploymentPartTime,
	EmploymentSelfEmployed,
	EmploymentUnemployed,
	EmploymentStudent,
	EmploymentRetired,
}

var foldCaser = cases.Fold()

// fold normalizes a raw categorical input for case-insensitive matching.
func fold(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// ParseState maps a raw state string to its categorical code.
// Unrecognized values map to 0.
func ParseState(raw string) int {
	norm := fold(raw)
	for i, s := range stateCodes {
		if norm == fold(string(s)) {
			return i + 1
		}
	}
	return 0
}

// ParseEducation maps a raw education string to its categorical code.
// Unrecognized values map to 0.
func ParseEducation(raw string) int {
	norm := normalizeToken(raw)
	for i, e := range educationCodes {
		if norm == string(e) {
			return i + 1
		}
	}
	return 0
}

// ParseEmployment maps a raw employment-type string to its categorical code.
// Unrecognized values map to 0.
func ParseEmployment(raw string) int {
	norm := normalizeToken(raw)
	for i, e := range employmentCodes {
		if norm == string(e) {
			return i + 1
		}
	}
	return 0
}

// normalizeToken lowercases a raw value and joins separators so that
// "Full Time", "full-time", and "full_time" all match the same bucket.
func normalizeToken(s string) string {
	norm := fold(s)
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	return norm
}

var titleCaser = cases.Title(language.AmericanEnglish)

// DisplayLabel renders a categorical token as a human-readable label,
// e.g. "some_college" -> "Some College".
func DisplayLabel(token string) string {
	return titleCaser.String(strings.ReplaceAll(token, "_", " "))
}
