package recommend

import (
	"strings"
	"time"

	"jobboard/geo-service/internal/model"
)

// recencyWindow is how long a posting keeps any recency weight.
const recencyWindow = 30 * 24 * time.Hour

// aux holds the four auxiliary signals appended to the text vector.
type aux struct {
	recency   float64
	location  float64
	skills    float64
	interests float64
}

func (a aux) slice() []float64 {
	return []float64{a.recency, a.location, a.skills, a.interests}
}

// subjectAux is what every job's auxiliary signals are compared against.
var subjectAux = aux{1, 1, 1, 1}

func auxFeatures(j *model.Job, subject *model.User, now time.Time) aux {
	return aux{
		recency:   recency(j.CreatedAt, now),
		location:  locationMatch(j.LocationText(), subjectPlace(subject)),
		skills:    fractionFound(subject.Skills, j.Requirements),
		interests: fractionFound(subject.Interests, j.Title+" "+j.Description),
	}
}

// recency decays linearly from 1 at posting time to 0 after 30 days.
// Postings dated in the future count as brand new; undated ones get 0.
func recency(created, now time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	age := now.Sub(created)
	if age < 0 {
		return 1
	}
	r := 1 - float64(age)/float64(recencyWindow)
	if r < 0 {
		return 0
	}
	return r
}

// subjectPlace is the subject's own location text, address first.
func subjectPlace(u *model.User) string {
	if u.Address != "" {
		return u.Address
	}
	return u.Location
}

func locationMatch(jobPlace, userPlace string) float64 {
	a, b := lower(strings.TrimSpace(jobPlace)), lower(strings.TrimSpace(userPlace))
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1
	}
	return 0
}

// fractionFound is the share of non-blank needles contained in text,
// case-insensitive.
func fractionFound(needles []string, text string) float64 {
	total := 0
	for _, n := range needles {
		if strings.TrimSpace(n) != "" {
			total++
		}
	}
	if total == 0 || strings.TrimSpace(text) == "" {
		return 0
	}
	return float64(len(found(needles, text))) / float64(total)
}

// found returns the needles contained in text, in input order.
func found(needles []string, text string) []string {
	hay := lower(text)
	var out []string
	for _, n := range needles {
		n = strings.TrimSpace(n)
		if n != "" && strings.Contains(hay, lower(n)) {
			out = append(out, n)
		}
	}
	return out
}
