package proximity

import (
	"strings"

	"jobboard/geo-service/internal/model"
)

// activeStatuses is the fixed allow-list of status values eligible for
// discovery, compared case-insensitively.
var activeStatuses = map[string]struct{}{
	"active":    {},
	"aberta":    {},
	"open":      {},
	"available": {},
	"ativo":     {},
}

// IsActive reports whether status belongs to the active synonym set.
func IsActive(status string) bool {
	_, ok := activeStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// JobFilter holds the optional attribute predicates for job search. Empty
// fields match everything.
type JobFilter struct {
	Title    string // case-insensitive substring
	Category string // exact
	Type     string // exact
}

// Match reports whether j satisfies every set predicate.
func (f JobFilter) Match(j *model.Job) bool {
	if f.Title != "" && !containsFold(j.Title, f.Title) {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	return true
}

// CandidateFilter holds the optional attribute predicates for candidate
// search.
type CandidateFilter struct {
	Skills     []string // any-of, case-insensitive
	Name       string   // case-insensitive substring
	Experience string   // exact
	MinRating  float64
}

// Match reports whether u satisfies every set predicate.
func (f CandidateFilter) Match(u *model.User) bool {
	if len(f.Skills) > 0 && !anySkill(u.Skills, f.Skills) {
		return false
	}
	if f.Name != "" && !containsFold(u.Name, f.Name) {
		return false
	}
	if f.Experience != "" && u.Experience != f.Experience {
		return false
	}
	if f.MinRating > 0 && u.Rating < f.MinRating {
		return false
	}
	return true
}

// IsCandidate reports whether u is an active candidate profile.
func IsCandidate(u *model.User) bool {
	return strings.EqualFold(strings.TrimSpace(u.Type), model.CandidateType) && IsActive(u.Status)
}

func anySkill(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
