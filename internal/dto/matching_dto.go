package dto

// MentorMatch is one ranked candidate produced by the matching engine.
// MatchedSkills lists the actual intersection so clients can render why the
// mentor was suggested.
type MentorMatch struct {
	MentorID      string   `json:"mentor_id"`
	Name          string   `json:"name"`
	Department    string   `json:"department"`
	Skills        []string `json:"skills"`
	Availability  []string `json:"availability"`
	Rating        *float64 `json:"rating"`
	Bio           string   `json:"bio"`
	Avatar        string   `json:"avatar"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
}

// MatchListResponse wraps the ranked mentors for a mentee.
type MatchListResponse struct {
	Matches  []MentorMatch `json:"matches"`
	CacheHit bool          `json:"cache_hit,omitempty"`
}
