package profile

import (
	"strings"
)

// CSV column names in the order they are written.
const (
	ColumnName           = "Name"
	ColumnOccupation     = "Occupation"
	ColumnCompany        = "Company"
	ColumnCertifications = "Certifications"
	ColumnSkills         = "Skills"
	ColumnPostTitles     = "Post Titles"
	ColumnIndustry       = "Industry"
	ColumnLocation       = "Location"
	ColumnLanguages      = "Languages"
	ColumnExperience     = "Experience"
)

// Columns is the header of every profile CSV file.
var Columns = []string{
	ColumnName,
	ColumnOccupation,
	ColumnCompany,
	ColumnCertifications,
	ColumnSkills,
	ColumnPostTitles,
	ColumnIndustry,
	ColumnLocation,
	ColumnLanguages,
	ColumnExperience,
}

// Profile is a flat person record. Any field may be empty.
type Profile struct {
	Name           string `json:"name"`
	Occupation     string `json:"occupation"`
	Company        string `json:"company"`
	Certifications string `json:"certifications"`
	Skills         string `json:"skills"`
	PostTitles     string `json:"post_titles"`
	Industry       string `json:"industry"`
	Location       string `json:"location"`
	Languages      string `json:"languages"`
	Experience     string `json:"experience"`
}

// Text joins the non-empty text fields used for similarity with single spaces.
// It never fails: any panic while building yields an empty string.
func Text(p *Profile) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	if p == nil {
		return ""
	}

	fields := []string{
		p.Occupation,
		p.Company,
		p.Certifications,
		p.Skills,
		p.Industry,
		p.Experience,
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field != "" {
			parts = append(parts, field)
		}
	}

	return strings.Join(parts, " ")
}

// FromRecord builds a profile from a header-keyed CSV row.
// Absent columns become empty strings.
func FromRecord(record map[string]string) *Profile {
	return &Profile{
		Name:           record[ColumnName],
		Occupation:     record[ColumnOccupation],
		Company:        record[ColumnCompany],
		Certifications: record[ColumnCertifications],
		Skills:         record[ColumnSkills],
		PostTitles:     record[ColumnPostTitles],
		Industry:       record[ColumnIndustry],
		Location:       record[ColumnLocation],
		Languages:      record[ColumnLanguages],
		Experience:     record[ColumnExperience],
	}
}

// Record returns the profile values in Columns order.
func (p *Profile) Record() []string {
	return []string{
		p.Name,
		p.Occupation,
		p.Company,
		p.Certifications,
		p.Skills,
		p.PostTitles,
		p.Industry,
		p.Location,
		p.Languages,
		p.Experience,
	}
}

// SplitList splits a comma separated field, trimming items and dropping empty ones.
func SplitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

type Profiles struct {
	Items []*Profile
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

// Texts returns the text of every profile in order, including empty ones.
func (p *Profiles) Texts() []string {
	texts := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		texts = append(texts, Text(item))
	}
	return texts
}

// NonEmptyTexts returns the texts of profiles that have any text, preserving order.
func (p *Profiles) NonEmptyTexts() []string {
	texts := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		if text := Text(item); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		names = append(names, item.Name)
	}
	return names
}
