package models

// RecommendationItem is one recommended resource with its justification.
type RecommendationItem struct {
	ConceptID       string  `json:"concept_id"`
	ConceptName     string  `json:"concept_name"`
	ResourceID      string  `json:"resource_id"`
	ResourceName    string  `json:"resource_name"`
	ResourceType    string  `json:"resource_type"`
	Difficulty      string  `json:"difficulty"`
	DurationMinutes int     `json:"duration_minutes"`
	Rating          float64 `json:"rating"`
	URL             string  `json:"url"`
	Reason          string  `json:"reason"`
}

// NewRecommendationItem copies the catalog fields of r into an item.
func NewRecommendationItem(conceptID, conceptName string, r Resource, reason string) RecommendationItem {
	return RecommendationItem{
		ConceptID:       conceptID,
		ConceptName:     conceptName,
		ResourceID:      r.ResourceID,
		ResourceName:    r.ResourceName,
		ResourceType:    r.ResourceType,
		Difficulty:      r.Difficulty,
		DurationMinutes: r.DurationMinutes,
		Rating:          r.Rating,
		URL:             r.URL,
		Reason:          reason,
	}
}

// LearningPathStep is one concept to work on, in study order.
type LearningPathStep struct {
	Type           string  `json:"type"`
	ConceptID      string  `json:"concept_id"`
	ConceptName    string  `json:"concept_name"`
	Level          int     `json:"level"`
	PrerequisiteID string  `json:"prerequisite_id,omitempty"`
	CurrentMastery float64 `json:"current_mastery"`
	TargetMastery  float64 `json:"target_mastery"`
}

// ScheduleEntry is one activity on a study day.
type ScheduleEntry struct {
	Concept  string `json:"concept"`
	Activity string `json:"activity"`
	Duration string `json:"duration"`
	Resource string `json:"resource"`
}

// Weekdays is the study week, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// StudySchedule maps each weekday to its activities. All weekdays are present.
type StudySchedule map[string][]ScheduleEntry

// NewStudySchedule returns a schedule with an empty slot for every weekday.
func NewStudySchedule() StudySchedule {
	s := make(StudySchedule, len(Weekdays))
	for _, day := range Weekdays {
		s[day] = []ScheduleEntry{}
	}
	return s
}

// LearningPlan is the personalized plan returned for one student.
type LearningPlan struct {
	StudentID         string               `json:"student_id"`
	LearningStyle     string               `json:"learning_style"`
	WeakConceptsCount int                  `json:"weak_concepts_count"`
	LearningPath      []LearningPathStep   `json:"learning_path"`
	Recommendations   []RecommendationItem `json:"recommendations"`
	StudySchedule     StudySchedule        `json:"study_schedule"`
}

// ProgressSummary is a student's mastery overview.
type ProgressSummary struct {
	TotalConceptsStudied int     `json:"total_concepts_studied"`
	MasteredConcepts     int     `json:"mastered_concepts"`
	WeakConcepts         int     `json:"weak_concepts"`
	AverageMastery       float64 `json:"average_mastery"`
	MasteryPercentage    float64 `json:"mastery_percentage"`
}

// ClusterInfo describes the cohort a student was assigned to.
type ClusterInfo struct {
	Clustered    bool   `json:"clustered"`
	ClusterLabel *int   `json:"cluster_label,omitempty"`
	ClusterName  string `json:"cluster_name"`
}

// NotClustered is reported for students outside the clustering run.
const NotClustered = "Not clustered"

// ResourceFilter narrows a catalog search. Empty fields match everything.
type ResourceFilter struct {
	ConceptID    string `form:"concept_id" json:"concept_id,omitempty"`
	ResourceType string `form:"resource_type" json:"resource_type,omitempty"`
	Difficulty   string `form:"difficulty" json:"difficulty,omitempty"`
}

// TrendPrediction is the extrapolated next score on one concept. Predicted
// is nil when the history is too short to fit a trend.
type TrendPrediction struct {
	StudentID string    `json:"student_id"`
	ConceptID string    `json:"concept_id"`
	History   []float64 `json:"history"`
	Predicted *float64  `json:"predicted,omitempty"`
}
