package models

// HomepageVideo is a hero video candidate. At most one should be active; the
// handlers enforce that with sequential writes, not a database constraint.
type HomepageVideo struct {
	BaseModel `bson:",inline"`

	VideoURL string `bson:"videoUrl" json:"videoUrl" validate:"required"`
	Title    string `bson:"title" json:"title"`
	Subtitle string `bson:"subtitle" json:"subtitle"`
	IsActive bool   `bson:"isActive" json:"isActive"`
}
