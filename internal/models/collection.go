package models

// Collection is a card deck. Cards are ordered pairs (front, back),
// stored as an array of string arrays.
type Collection struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Public      bool       `json:"public"`
	Author      string     `json:"author"`
	Cards       [][]string `json:"cards"`
	Version     int        `json:"version"`
	Sets        []string   `json:"sets"`
}

// LearningSet groups collections for study.
type LearningSet struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     int      `json:"version"`
	Author      string   `json:"author"`
	Collections []string `json:"collections"`
	Public      bool     `json:"public"`
}

// Owner and Visible let access control treat both resource types alike.

func (c *Collection) Owner() string { return c.Author }
func (c *Collection) Visible() bool { return c.Public }

func (s *LearningSet) Owner() string { return s.Author }
func (s *LearningSet) Visible() bool { return s.Public }
