package models

// PeerSimilarity is a peer and its cosine similarity to the target student.
type PeerSimilarity struct {
	StudentID  string  `json:"student_id"`
	Similarity float64 `json:"similarity"`
}

// StrongConcept is a concept a peer has mastered.
type StrongConcept struct {
	ConceptID    string  `json:"concept_id"`
	MasteryScore float64 `json:"mastery_score"`
}

// PeerPattern lists a similar peer's strong concepts.
type PeerPattern struct {
	PeerID         string          `json:"peer_id"`
	Similarity     float64         `json:"similarity"`
	StrongConcepts []StrongConcept `json:"strong_concepts"`
}
