package recommend

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/spigell/talent-ranker/internal/profile"
)

const (
	// TopN is how many of the most frequent missing labels are considered.
	TopN = 10
	// SampleSize is how many labels are recommended per table.
	SampleSize = 5
)

// ErrInsufficientItems is returned when fewer than SampleSize labels are missing.
var ErrInsufficientItems = errors.New("not enough missing items to recommend")

// Recommendation is the response of the skill-gap recommender.
type Recommendation struct {
	Skills       []string `json:"skills"`
	Certificates []string `json:"certificates"`
}

// Recommender suggests skills and certifications a candidate does not declare yet.
type Recommender struct {
	skills         *FrequencyTable
	certifications *FrequencyTable

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a recommender. A nil rng is replaced by a randomly seeded one.
func New(skills, certifications *FrequencyTable, rng *rand.Rand) *Recommender {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Recommender{
		skills:         skills,
		certifications: certifications,
		rng:            rng,
	}
}

// Recommend takes the comma separated skills and certifications of a candidate.
func (r *Recommender) Recommend(skills, certifications string) (*Recommendation, error) {
	recommendedSkills, err := r.pick(r.skills, skills)
	if err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}

	recommendedCertificates, err := r.pick(r.certifications, certifications)
	if err != nil {
		return nil, fmt.Errorf("certifications: %w", err)
	}

	return &Recommendation{
		Skills:       recommendedSkills,
		Certificates: recommendedCertificates,
	}, nil
}

// RecommendFor uses the declared skills and certifications of a profile.
func (r *Recommender) RecommendFor(p *profile.Profile) (*Recommendation, error) {
	if p == nil {
		p = &profile.Profile{}
	}
	return r.Recommend(p.Skills, p.Certifications)
}

func (r *Recommender) pick(table *FrequencyTable, declared string) ([]string, error) {
	set := make(map[string]struct{})
	for _, item := range profile.SplitList(declared) {
		set[item] = struct{}{}
	}

	missing := table.Missing(set)
	if len(missing) > TopN {
		missing = missing[:TopN]
	}

	if len(missing) < SampleSize {
		return nil, fmt.Errorf("%w: %d available, %d required", ErrInsufficientItems, len(missing), SampleSize)
	}

	r.mu.Lock()
	perm := r.rng.Perm(len(missing))
	r.mu.Unlock()

	picked := make([]string, 0, SampleSize)
	for _, idx := range perm[:SampleSize] {
		picked = append(picked, missing[idx].Label)
	}

	return picked, nil
}
