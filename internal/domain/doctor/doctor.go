package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name            string `gorm:"column:name;type:varchar(200);not null"`
	Department      string `gorm:"column:department;type:varchar(100);not null;index"`
	ExperienceYears int    `gorm:"column:experience_years;default:0"`
	Location        string `gorm:"column:location;type:varchar(200)"`
	Email           string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Bio             string `gorm:"column:bio;type:text"`
	ImageURL        string `gorm:"column:image_url;type:text"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

type CreateDoctorCommand struct {
	Name            string
	Department      string
	ExperienceYears int
	Location        string
	Email           string
	Bio             string
	ImageURL        string
}

type ListDoctorsQuery struct {
	Department string
	Page       int
	PageSize   int
}

type PagedDoctors struct {
	Doctors    []*Doctor
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
