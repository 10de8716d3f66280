package models

// Dataset is the immutable set of reference tables loaded at startup and
// shared by every pipeline component. Callers must not mutate its slices.
type Dataset struct {
	Resources   []Resource
	Concepts    []Concept
	Students    []Student
	Questions   []Question
	Performance []PerformanceRecord

	conceptByID  map[string]*Concept
	studentByID  map[string]*Student
	questionByID map[string]*Question
}

// NewDataset indexes the tables. For duplicated keys the first row wins.
func NewDataset(resources []Resource, concepts []Concept, students []Student, questions []Question, performance []PerformanceRecord) *Dataset {
	ds := &Dataset{
		Resources:    resources,
		Concepts:     concepts,
		Students:     students,
		Questions:    questions,
		Performance:  performance,
		conceptByID:  make(map[string]*Concept, len(concepts)),
		studentByID:  make(map[string]*Student, len(students)),
		questionByID: make(map[string]*Question, len(questions)),
	}
	for i := range concepts {
		if _, ok := ds.conceptByID[concepts[i].ConceptID]; !ok {
			ds.conceptByID[concepts[i].ConceptID] = &concepts[i]
		}
	}
	for i := range students {
		if _, ok := ds.studentByID[students[i].StudentID]; !ok {
			ds.studentByID[students[i].StudentID] = &students[i]
		}
	}
	for i := range questions {
		if _, ok := ds.questionByID[questions[i].QuestionID]; !ok {
			ds.questionByID[questions[i].QuestionID] = &questions[i]
		}
	}
	return ds
}

// Concept looks up concept metadata by id.
func (d *Dataset) Concept(id string) (*Concept, bool) {
	c, ok := d.conceptByID[id]
	return c, ok
}

// Student looks up a student profile by id.
func (d *Dataset) Student(id string) (*Student, bool) {
	s, ok := d.studentByID[id]
	return s, ok
}

// Question looks up a question by id.
func (d *Dataset) Question(id string) (*Question, bool) {
	q, ok := d.questionByID[id]
	return q, ok
}

// ConceptIDs returns the distinct concept ids of the catalog in table order.
func (d *Dataset) ConceptIDs() []string {
	ids := make([]string, 0, len(d.Concepts))
	seen := make(map[string]struct{}, len(d.Concepts))
	for _, c := range d.Concepts {
		if _, ok := seen[c.ConceptID]; ok {
			continue
		}
		seen[c.ConceptID] = struct{}{}
		ids = append(ids, c.ConceptID)
	}
	return ids
}
