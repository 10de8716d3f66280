package models

// MasteryLevel is the rule-based band a mastery score falls into.
type MasteryLevel string

const (
	LevelAdvanced     MasteryLevel = "Advanced"
	LevelIntermediate MasteryLevel = "Intermediate"
	LevelBeginner     MasteryLevel = "Beginner"
	LevelStruggling   MasteryLevel = "Struggling"
)

// IsWeak reports whether the level marks a concept the student needs to work on.
func (l MasteryLevel) IsWeak() bool {
	return l == LevelStruggling || l == LevelBeginner
}

// ConceptMasteryRecord aggregates one student's performance on one concept.
type ConceptMasteryRecord struct {
	StudentID      string  `json:"student_id"`
	ConceptID      string  `json:"concept_id"`
	ConceptName    string  `json:"concept_name"`
	Subject        string  `json:"subject"`
	Level          int     `json:"level"`
	Accuracy       float64 `json:"accuracy"`
	TotalQuestions int     `json:"total_questions"`
	CorrectCount   int     `json:"correct_count"`
	AvgTimeTaken   float64 `json:"avg_time_taken"`
	// TimeStd is nil for groups with a single observation.
	TimeStd     *float64 `json:"time_std"`
	AvgAttempts float64  `json:"avg_attempts"`

	LearningStyle   string   `json:"learning_style,omitempty"`
	AvgAccuracy     *float64 `json:"avg_accuracy,omitempty"`
	AvgResponseTime *float64 `json:"avg_response_time,omitempty"`

	MasteryScore  float64      `json:"mastery_score"`
	IsWeakConcept bool         `json:"is_weak_concept"`
	MasteryLevel  MasteryLevel `json:"mastery_level,omitempty"`

	PredictedMastery   *int     `json:"predicted_mastery,omitempty"`
	MasteryProbability *float64 `json:"mastery_probability,omitempty"`
}

// WeakConcept is the projection of a mastery record used by the recommender.
type WeakConcept struct {
	ConceptID    string       `json:"concept_id"`
	ConceptName  string       `json:"concept_name"`
	MasteryScore float64      `json:"mastery_score"`
	MasteryLevel MasteryLevel `json:"mastery_level"`
}

// StudentFeatures are the per-student aggregates used for clustering.
type StudentFeatures struct {
	StudentID        string  `json:"student_id"`
	Accuracy         float64 `json:"accuracy"`
	AvgTimeTaken     float64 `json:"avg_time_taken"`
	AvgAttempts      float64 `json:"avg_attempts"`
	TotalQuestions   int     `json:"total_questions"`
	MasteryScore     float64 `json:"mastery_score"`
	WeakConceptRatio float64 `json:"weak_concept_ratio"`

	ClusterLabel *int  `json:"cluster_label,omitempty"`
	ClusterName  string `json:"cluster_name,omitempty"`
}

// ClusteringVector returns the features k-means operates on, in a fixed order.
func (f StudentFeatures) ClusteringVector() []float64 {
	return []float64{f.Accuracy, f.AvgTimeTaken, f.AvgAttempts, float64(f.TotalQuestions), f.MasteryScore}
}

// ClusterStats summarizes one cohort.
type ClusterStats struct {
	ClusterLabel   int     `json:"cluster_label"`
	ClusterName    string  `json:"cluster_name"`
	Size           int     `json:"size"`
	Accuracy       float64 `json:"accuracy"`
	AvgTimeTaken   float64 `json:"avg_time_taken"`
	AvgAttempts    float64 `json:"avg_attempts"`
	MasteryScore   float64 `json:"mastery_score"`
	TotalQuestions float64 `json:"total_questions"`
	AccuracyRank   int     `json:"accuracy_rank"`
	TimeRank       int     `json:"time_rank"`
}
