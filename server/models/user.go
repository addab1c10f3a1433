package models

import (
	"errors"
	"fmt"

	"github.com/raksha-app/raksha/server/auth"
	"gorm.io/gorm"
)

var allFieldsExceptPassword = []string{"id",
	"name",
	"phone_number",
	"father_number",
	"mother_number",
	"guardian_number",
	"guardian2_number",
	"created_at",
	"updated_at",
}

// User is an account holder plus their emergency-contact numbers. All phone
// fields are stored in the canonical "+<country><number>" form; the four
// contact fields are optional and empty when not supplied.
type User struct {
	BaseModel
	Name            string `json:"name" validate:"required"`
	PhoneNumber     string `json:"phone_number" validate:"required,e164" gorm:"not null;unique"`
	Password        string `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	FatherNumber    string `json:"father_number,omitempty" validate:"omitempty,e164"`
	MotherNumber    string `json:"mother_number,omitempty" validate:"omitempty,e164"`
	GuardianNumber  string `json:"guardian_number,omitempty" validate:"omitempty,e164"`
	Guardian2Number string `json:"guardian2_number,omitempty" validate:"omitempty,e164"`
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(phoneNumber string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "phone_number = ?", phoneNumber).Error

	if err != nil {
		return "", err
	}
	return user.Password, nil
}

func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	return db.Create(user).Error
}

func DeleteUser(id interface{}) error {
	return db.Delete(&User{}, id).Error
}

func AtLeastOneUserExists() (bool, error) {
	err := db.First(&User{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
