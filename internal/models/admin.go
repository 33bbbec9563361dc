package models

type Admin struct {
	BaseModel `bson:",inline"`

	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`
	Name     string `bson:"name" json:"name"`
}
