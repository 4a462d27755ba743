package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/talent-ranker/internal/profile"
)

const (
	profileViewPath = "/identity/profiles/%s/profileView"
	notAvailable    = "N/A"
)

type ProfileView struct {
	Status            int
	Profile           ProfileInfo
	PositionView      elements[Position]
	SkillView         elements[namedElement]
	CertificationView elements[namedElement]
	LanguageView      elements[namedElement]
	PublicationView   elements[Publication]
}

type ProfileInfo struct {
	FirstName    string
	LastName     string
	Headline     string
	IndustryName string
	LocationName string
}

type Position struct {
	Title       string
	CompanyName string
}

type Publication struct {
	Name  string
	Title string
}

type namedElement struct {
	Name string
}

type elements[T any] struct {
	Elements []T
}

// GetProfile fetches a profile by URN id or public identifier.
func (c *Client) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("profile id is required")
	}

	var raw map[string]any
	err := c.getJSON(ctx, fmt.Sprintf(profileViewPath, url.PathEscape(id)), "", &raw)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}

	var view ProfileView
	if err := mapstructure.WeakDecode(raw, &view); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}

	// The API reports missing profiles with a status field inside a 200 response.
	if view.Status != 0 && view.Status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}

	return view.ToProfile(), nil
}

// ToProfile flattens the API view into a profile record.
func (v *ProfileView) ToProfile() *profile.Profile {
	p := &profile.Profile{
		Name:           v.Profile.FirstName + " " + v.Profile.LastName,
		Occupation:     v.Profile.Headline,
		Certifications: joinNames(v.CertificationView.Elements),
		Skills:         joinNames(v.SkillView.Elements),
		Languages:      joinNames(v.LanguageView.Elements),
		Industry:       orDefault(v.Profile.IndustryName, notAvailable),
		Location:       orDefault(v.Profile.LocationName, notAvailable),
	}

	positions := v.PositionView.Elements
	if len(positions) > 0 {
		p.Company = positions[0].CompanyName
	}

	experience := make([]string, 0, len(positions))
	for _, position := range positions {
		experience = append(experience, fmt.Sprintf("%s at %s", position.Title, position.CompanyName))
	}
	p.Experience = strings.Join(experience, ", ")

	titles := make([]string, 0, len(v.PublicationView.Elements))
	for _, publication := range v.PublicationView.Elements {
		titles = append(titles, orDefault(publication.Title, publication.Name))
	}
	p.PostTitles = strings.Join(titles, ", ")

	return p
}

func joinNames(items []namedElement) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
