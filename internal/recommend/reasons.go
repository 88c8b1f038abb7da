package recommend

import (
	"fmt"
	"strings"
	"time"

	"jobboard/geo-service/internal/model"
)

const (
	maxReasons    = 5
	maxSkillNames = 3
	freshWithin   = 7 * 24 * time.Hour
)

const fallbackReason = "Suggested based on your profile"

// explain lists why j was recommended to subject. It never returns an
// empty list.
func explain(j *model.Job, subject *model.User, a aux, score float64, now time.Time) []string {
	out := make([]string, 0, maxReasons)

	if skills := found(subject.Skills, j.Requirements+" "+j.Title+" "+j.Description); len(skills) > 0 {
		if len(skills) > maxSkillNames {
			skills = skills[:maxSkillNames]
		}
		out = append(out, "Matches your skills: "+strings.Join(skills, ", "))
	}
	if interests := found(subject.Interests, j.Title+" "+j.Description); len(interests) > 0 {
		out = append(out, fmt.Sprintf("Related to your interest in %s", interests[0]))
	}
	if a.location == 1 {
		out = append(out, "Located near you: "+j.LocationText())
	}
	if !j.CreatedAt.IsZero() && now.Sub(j.CreatedAt) < freshWithin {
		out = append(out, "Posted recently")
	}
	switch {
	case score > 80:
		out = append(out, "High match with your profile")
	case score > 60:
		out = append(out, "Good match with your profile")
	}

	if len(out) == 0 {
		out = append(out, fallbackReason)
	}
	if len(out) > maxReasons {
		out = out[:maxReasons]
	}
	return out
}
