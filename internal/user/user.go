package user

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderOther       = "other"
	GenderUndisclosed = "prefer-not-to-say"
	DefaultLanguage   = "en"
	dateOfBirthLayout = "2006-01-02"
	maxAllergies      = 20
)

var (
	genders   = []string{GenderMale, GenderFemale, GenderOther, GenderUndisclosed}
	languages = []string{"en", "hi", "ta", "te", "kn", "ml", "bn"}
)

type User struct {
	ID          int         `json:"userId"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password,omitempty"`
	Role        string      `json:"role"`
	FullName    string      `json:"fullName"`
	Phone       string      `json:"phone"`
	Avatar      *string     `json:"avatar,omitempty"`
	DateOfBirth *time.Time  `json:"dateOfBirth,omitempty"`
	Gender      string      `json:"gender"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Preferences is stored as one JSON document per user.
type Preferences struct {
	EmailNotifications bool     `json:"emailNotifications"`
	SMSNotifications   bool     `json:"smsNotifications"`
	PushNotifications  bool     `json:"pushNotifications"`
	Language           string   `json:"language"`
	FavoriteCategories []string `json:"favoriteCategories"`
	Dietary            Dietary  `json:"dietaryPreferences"`
}

type Dietary struct {
	IsVegan      bool     `json:"isVegan"`
	IsSugarFree  bool     `json:"isSugarFree"`
	IsGlutenFree bool     `json:"isGlutenFree"`
	Allergies    []string `json:"allergies"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PushNotifications:  true,
		Language:           DefaultLanguage,
		FavoriteCategories: []string{},
		Dietary:            Dietary{Allergies: []string{}},
	}
}

// PreferencesUpdate carries the fields a PATCH may change.
type PreferencesUpdate struct {
	EmailNotifications *bool          `json:"emailNotifications"`
	SMSNotifications   *bool          `json:"smsNotifications"`
	PushNotifications  *bool          `json:"pushNotifications"`
	Language           *string        `json:"language"`
	FavoriteCategories *[]string      `json:"favoriteCategories"`
	Dietary            *DietaryUpdate `json:"dietaryPreferences"`
}

type DietaryUpdate struct {
	IsVegan      *bool     `json:"isVegan"`
	IsSugarFree  *bool     `json:"isSugarFree"`
	IsGlutenFree *bool     `json:"isGlutenFree"`
	Allergies    *[]string `json:"allergies"`
}

// Stats summarizes a customer's order history.
type Stats struct {
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	MemberSince time.Time       `json:"memberSince"`
}

// Sanitized returns a copy without the password hash.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	// DateOfBirth is YYYY-MM-DD; an empty string clears it.
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
}
