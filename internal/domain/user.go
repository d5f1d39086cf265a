package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Name         string    `json:"name" dynamodbav:"name"`
	Age          int       `json:"age" dynamodbav:"age"`
	Gender       string    `json:"gender" dynamodbav:"gender"`
	Bio          string    `json:"bio" dynamodbav:"bio"`
	Location     string    `json:"location" dynamodbav:"location"`
	Photos       []string  `json:"photos" dynamodbav:"photos"`
	Interests    []string  `json:"interests" dynamodbav:"interests"`
	Work         string    `json:"work,omitempty" dynamodbav:"work"`
	Education    string    `json:"education,omitempty" dynamodbav:"education"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`

	// Presence flags are served from the presence cache, never persisted.
	Online     bool       `json:"online" dynamodbav:"-"`
	LastActive *time.Time `json:"last_active,omitempty" dynamodbav:"-"`
}

// PublicUser is the profile projection exposed to other users.
// It never carries credentials or the account email.
type PublicUser struct {
	UserID     string     `json:"id"`
	Name       string     `json:"name"`
	Age        int        `json:"age"`
	Gender     string     `json:"gender"`
	Bio        string     `json:"bio"`
	Location   string     `json:"location"`
	Photos     []string   `json:"photos"`
	Interests  []string   `json:"interests"`
	Work       string     `json:"work,omitempty"`
	Education  string     `json:"education,omitempty"`
	Online     bool       `json:"online"`
	LastActive *time.Time `json:"last_active,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Public returns the shareable projection of u.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UserID:     u.UserID,
		Name:       u.Name,
		Age:        u.Age,
		Gender:     u.Gender,
		Bio:        u.Bio,
		Location:   u.Location,
		Photos:     u.Photos,
		Interests:  u.Interests,
		Work:       u.Work,
		Education:  u.Education,
		Online:     u.Online,
		LastActive: u.LastActive,
		CreatedAt:  u.CreatedAt,
	}
}

type RegisterRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=72"`
	Name      string   `json:"name" validate:"required"`
	Age       int      `json:"age" validate:"required,gte=18"`
	Gender    string   `json:"gender" validate:"required"`
	Location  string   `json:"location" validate:"required"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name      *string   `json:"name"`
	Age       *int      `json:"age" validate:"omitempty,gte=18"`
	Gender    *string   `json:"gender"`
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location"`
	Photos    *[]string `json:"photos"`
	Interests *[]string `json:"interests"`
	Work      *string   `json:"work"`
	Education *string   `json:"education"`
}
