package models

// PerformanceRecord is one student answer to one question.
type PerformanceRecord struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	StudentID  string  `gorm:"size:64;index;not null" json:"student_id" validate:"required"`
	QuestionID string  `gorm:"size:64;index;not null" json:"question_id" validate:"required"`
	Correct    bool    `json:"correct"`
	TimeTaken  float64 `json:"time_taken" validate:"gte=0"`
	Attempts   int     `json:"attempts" validate:"gte=0"`
}

// TableName specifies the table name
func (PerformanceRecord) TableName() string {
	return "student_performance"
}

// Question maps a question to the concept it exercises.
type Question struct {
	QuestionID string `gorm:"primaryKey;size:64" json:"question_id" validate:"required"`
	ConceptID  string `gorm:"size:64;index" json:"concept_id"`
	Difficulty string `gorm:"size:32" json:"difficulty"`
}

// TableName specifies the table name
func (Question) TableName() string {
	return "questions"
}

// Concept is the metadata row of a curriculum concept. PrerequisiteID is
// empty when the concept has no prerequisite.
type Concept struct {
	ConceptID      string `gorm:"primaryKey;size:64" json:"concept_id" validate:"required"`
	ConceptName    string `gorm:"size:255" json:"concept_name"`
	Subject        string `gorm:"size:128" json:"subject"`
	Level          int    `json:"level"`
	PrerequisiteID string `gorm:"size:64" json:"prerequisite_id,omitempty"`
}

// TableName specifies the table name
func (Concept) TableName() string {
	return "concepts"
}

// Student is a learner profile.
type Student struct {
	StudentID       string   `gorm:"primaryKey;size:64" json:"student_id" validate:"required"`
	LearningStyle   string   `gorm:"size:64" json:"learning_style"`
	AvgAccuracy     *float64 `json:"avg_accuracy,omitempty" validate:"omitempty,gte=0,lte=1"`
	AvgResponseTime *float64 `json:"avg_response_time,omitempty"`
}

// TableName specifies the table name
func (Student) TableName() string {
	return "students"
}

// Resource is a catalog entry that can be recommended.
type Resource struct {
	ResourceID      string  `gorm:"primaryKey;size:64" json:"resource_id" validate:"required"`
	ConceptID       string  `gorm:"size:64;index" json:"concept_id"`
	ConceptName     string  `gorm:"size:255" json:"concept_name"`
	ResourceName    string  `gorm:"size:255" json:"resource_name"`
	ResourceType    string  `gorm:"size:64;index" json:"resource_type"`
	Difficulty      string  `gorm:"size:32;index" json:"difficulty"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`
	ViewCount       int     `json:"view_count" validate:"gte=0"`
	URL             string  `gorm:"size:512" json:"url"`
}

// TableName specifies the table name
func (Resource) TableName() string {
	return "learning_resources"
}

// AllTables lists every persisted model, in migration order.
func AllTables() []interface{} {
	return []interface{}{
		&Concept{},
		&Question{},
		&Student{},
		&Resource{},
		&PerformanceRecord{},
	}
}
