package models

import "time"

// User owns ratings and favorites
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// Rating is one user's score for one movie. (UserID, MovieID) is unique.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_movie" json:"userId"`
	MovieID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_movie;index" json:"movieId"`
	Score     int       `gorm:"not null" json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Rating) TableName() string {
	return "ratings"
}

// Favorite marks a movie as a user's favorite. (UserID, MovieID) is unique.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_movie" json:"userId"`
	MovieID   uint      `gorm:"not null;uniqueIndex:idx_favorites_user_movie" json:"movieId"`
	CreatedAt time.Time `json:"createdAt"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"movie,omitempty"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}
