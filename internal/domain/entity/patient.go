package entity

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID  uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20);index" json:"phone,omitempty"`
	FamilyID  string    `gorm:"type:varchar(20);index" json:"family_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

const familyKeyDigits = 10

// FamilyKey groups patients by the last ten digits of their phone number.
// Everyone sharing a phone lands in the same family.
func FamilyKey(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) > familyKeyDigits {
		digits = digits[len(digits)-familyKeyDigits:]
	}
	return "FAM-" + digits
}

// SetPhone updates the phone and reconciles the family key with it
func (p *Patient) SetPhone(phone string) {
	p.Phone = strings.TrimSpace(phone)
	p.FamilyID = FamilyKey(p.Phone)
}
