package models

type Project struct {
	BaseModel `bson:",inline"`

	Name             string   `bson:"name" json:"name" validate:"required"`
	Location         string   `bson:"location" json:"location" validate:"required"`
	Year             string   `bson:"year" json:"year"`
	Duration         string   `bson:"duration" json:"duration"`
	Image            string   `bson:"image" json:"image"`
	Video            string   `bson:"video,omitempty" json:"video,omitempty"`
	Description      string   `bson:"description" json:"description" validate:"required"`
	Challenges       []string `bson:"challenges" json:"challenges"`
	ExecutionMethods []string `bson:"executionMethods" json:"executionMethods"`
	Results          []string `bson:"results" json:"results"`
	TechnicalNotes   string   `bson:"technicalNotes" json:"technicalNotes"`
	Gallery          []string `bson:"gallery" json:"gallery"`
}
