package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Order    int    `json:"displayOrder" validate:"min=0"`
	Ref      string `json:"ref" validate:"omitempty,objectid"`
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(&sample{
		Name:     "Amal",
		Email:    "amal@solar.example",
		Password: "secret1",
		Ref:      primitive.NewObjectID().Hex(),
	})
	assert.NoError(t, err)
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name  string
		input sample
		field string
		msg   string
	}{
		{"required", sample{}, "name", "name is required"},
		{"email", sample{Name: "a", Email: "nope"}, "email", "email must be a valid email address"},
		{"min string", sample{Name: "a", Password: "123"}, "password", "password must be at least 6 characters"},
		{"min number", sample{Name: "a", Order: -1}, "displayOrder", "displayOrder must be at least 0"},
		{"objectid", sample{Name: "a", Ref: "xyz"}, "ref", "ref must be a valid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			require.Error(t, err)

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{tt.field}, verr.Fields)
			assert.Equal(t, tt.msg, verr.Error())
		})
	}
}

func TestTranslate_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))
}
