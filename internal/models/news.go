package models

import "time"

type News struct {
	BaseModel `bson:",inline"`

	Title            string    `bson:"title" json:"title" validate:"required"`
	MainImage        string    `bson:"mainImage" json:"mainImage"`
	Summary          string    `bson:"summary" json:"summary" validate:"required"`
	FullText         string    `bson:"fullText" json:"fullText" validate:"required"`
	AdditionalImages []string  `bson:"additionalImages" json:"additionalImages"`
	PublicationDate  time.Time `bson:"publicationDate" json:"publicationDate"`
	DisplayOrder     int       `bson:"displayOrder" json:"displayOrder" validate:"min=0"`
}
