package models

// Assessment is the validated result of a resume analysis. Every numeric
// field is guaranteed to lie in [0,100] once the parser has accepted it.
type Assessment struct {
	MatchScore      int         `json:"matchScore"`
	SoftSkills      SoftSkills  `json:"softSkills"`
	TechSkills      []TechSkill `json:"techSkills"`
	Recommendations []string    `json:"recommendations"`
	MissingSkills   []string    `json:"missingSkills"`
}

type SoftSkills struct {
	Match int `json:"match"`
	Gap   int `json:"gap"`
}

// TechSkill pairs the candidate's current level with market demand for
// one named skill. The model is asked for three entries but the count is
// advisory; only element shape is validated.
type TechSkill struct {
	Name    string `json:"name"`
	Current int    `json:"current"`
	Demand  int    `json:"demand"`
}
