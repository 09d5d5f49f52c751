package types

// PublicUser is a user account without its credentials
type PublicUser struct {
	ID        string `json:"id" example:"665f1c2e9b1e8a0012345678"`
	Name      string `json:"name" example:"Jane Doe"`
	Email     string `json:"email" example:"jane@example.com"`
	CreatedAt string `json:"createdAt" example:"2024-06-01T10:00:00.000Z"`
	UpdatedAt string `json:"updatedAt" example:"2024-06-01T10:00:00.000Z"`
}

// RegistrationData is the payload of an account registration
type RegistrationData struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginData is the payload of a credentials login
type LoginData struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=128"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// ProfileUpdate carries the profile fields a user may change
type ProfileUpdate struct {
	Name  string `json:"name" validate:"required,max=50"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// Notifications toggles the delivery channels of a user
type Notifications struct {
	Email  bool `json:"email" bson:"email"`
	Push   bool `json:"push" bson:"push"`
	Digest bool `json:"digest" bson:"digest"`
}

// Preferences holds dashboard display preferences
type Preferences struct {
	DefaultView  string `json:"defaultView" bson:"defaultView" validate:"oneof=all favorites youtube"`
	ItemsPerPage int    `json:"itemsPerPage" bson:"itemsPerPage" validate:"min=1,max=100"`
	AutoRefresh  bool   `json:"autoRefresh" bson:"autoRefresh"`
}

// Settings is the per-user dashboard configuration
type Settings struct {
	Theme         string        `json:"theme" bson:"theme" validate:"oneof=light dark system"`
	Notifications Notifications `json:"notifications" bson:"notifications"`
	Preferences   Preferences   `json:"preferences" bson:"preferences"`
}

// DefaultSettings returns the settings reported for users that never saved any
func DefaultSettings() Settings {
	return Settings{
		Theme: "system",
		Notifications: Notifications{
			Email:  true,
			Push:   false,
			Digest: true,
		},
		Preferences: Preferences{
			DefaultView:  "all",
			ItemsPerPage: 20,
			AutoRefresh:  true,
		},
	}
}
