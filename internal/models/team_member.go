package models

// SocialLinks holds optional profile links; empty entries are omitted.
type SocialLinks struct {
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
}

type TeamMember struct {
	BaseModel `bson:",inline"`

	Name         string      `bson:"name" json:"name" validate:"required"`
	Role         string      `bson:"role" json:"role" validate:"required"`
	Bio          string      `bson:"bio" json:"bio" validate:"required"`
	ProfileImage string      `bson:"profileImage" json:"profileImage"`
	SocialLinks  SocialLinks `bson:"socialLinks" json:"socialLinks"`
	CVURL        string      `bson:"cvUrl" json:"cvUrl"`
	DisplayOrder int         `bson:"displayOrder" json:"displayOrder" validate:"min=0"`
}
