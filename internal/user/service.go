package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	mailer "github.com/wichananm65/juice-shop-backend/internal/mail"
	"github.com/wichananm65/juice-shop-backend/internal/product"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

var ErrResetTokenUsed = apperr.New(apperr.ErrUnauthorized, "reset token already used")

// OrderHistory totals a customer's orders. Cancelled orders are counted
// but add nothing to spent.
type OrderHistory interface {
	OrderTotals(ctx context.Context, userID int) (count int, spent decimal.Decimal, err error)
}

type Service struct {
	repo        Repository
	tokens      *auth.TokenManager
	revocations auth.Revocations
	mailer      mailer.Dispatcher
	resetURL    string
	orders      OrderHistory
}

func NewService(repo Repository, tokens *auth.TokenManager, revocations auth.Revocations, m mailer.Dispatcher, resetURL string, orders OrderHistory) *Service {
	return &Service{repo: repo, tokens: tokens, revocations: revocations, mailer: m, resetURL: resetURL, orders: orders}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ResolveRole lets the auth gate look up the current role of a token holder.
func (s *Service) ResolveRole(ctx context.Context, id int) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if errs := validateRegistration(in); len(errs) > 0 {
		return User{}, apperr.Validation(errs)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hashed),
		Role:        auth.RoleUser,
		Gender:      GenderUndisclosed,
		Preferences: DefaultPreferences(),
	})
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, _, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, id auth.Identity) error {
	return s.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

// ForgotPassword emails a reset link when the address is registered. Unknown
// addresses are not reported to the caller.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		log.Infof("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, _, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password:\n\n%s?token=%s\n\nIf you did not ask for this, ignore this email.\n", u.Username, s.resetURL, token)
	mailer.SendAsync(s.mailer, u.Email, "Reset your Juice Shop password", body)
	return nil
}

// ResetPassword sets a new password. Each reset token works once.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.tokens.Parse(token, auth.PurposeReset)
	if err != nil {
		return err
	}
	if msg := validatePassword(password); msg != "" {
		return apperr.Invalid("password", msg)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	claimed, err := s.revocations.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrResetTokenUsed
	}
	return s.repo.UpdatePassword(ctx, claims.UserID, string(hashed))
}

func (s *Service) UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return User{}, apperr.Invalid("username", "must not be empty")
		}
		u.Username = name
	}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Gender != nil {
		if !slices.Contains(genders, *in.Gender) {
			return User{}, apperr.Invalid("gender", "must be one of "+strings.Join(genders, ", "))
		}
		u.Gender = *in.Gender
	}
	if in.DateOfBirth != nil {
		dob, err := parseDateOfBirth(*in.DateOfBirth)
		if err != nil {
			return User{}, err
		}
		u.DateOfBirth = dob
	}
	return s.repo.Update(ctx, u)
}

func parseDateOfBirth(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	dob, err := time.Parse(dateOfBirthLayout, v)
	if err != nil {
		return nil, apperr.Invalid("dateOfBirth", "must be a date in YYYY-MM-DD form")
	}
	if dob.After(time.Now()) {
		return nil, apperr.Invalid("dateOfBirth", "must not be in the future")
	}
	return &dob, nil
}

func (s *Service) Preferences(ctx context.Context, id int) (Preferences, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Preferences{}, err
	}
	return u.Preferences, nil
}

// UpdatePreferences merges in over the stored preferences.
func (s *Service) UpdatePreferences(ctx context.Context, id int, in PreferencesUpdate) (Preferences, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Preferences{}, err
	}
	p := u.Preferences
	errs := map[string]string{}
	if in.EmailNotifications != nil {
		p.EmailNotifications = *in.EmailNotifications
	}
	if in.SMSNotifications != nil {
		p.SMSNotifications = *in.SMSNotifications
	}
	if in.PushNotifications != nil {
		p.PushNotifications = *in.PushNotifications
	}
	if in.Language != nil {
		if slices.Contains(languages, *in.Language) {
			p.Language = *in.Language
		} else {
			errs["language"] = "must be one of " + strings.Join(languages, ", ")
		}
	}
	if in.FavoriteCategories != nil {
		categories := make([]string, 0, len(*in.FavoriteCategories))
		for _, c := range *in.FavoriteCategories {
			c = strings.ToLower(strings.TrimSpace(c))
			if !product.IsCategory(c) {
				errs["favoriteCategories"] = fmt.Sprintf("unknown category %q", c)
				break
			}
			if !slices.Contains(categories, c) {
				categories = append(categories, c)
			}
		}
		p.FavoriteCategories = categories
	}
	if d := in.Dietary; d != nil {
		if d.IsVegan != nil {
			p.Dietary.IsVegan = *d.IsVegan
		}
		if d.IsSugarFree != nil {
			p.Dietary.IsSugarFree = *d.IsSugarFree
		}
		if d.IsGlutenFree != nil {
			p.Dietary.IsGlutenFree = *d.IsGlutenFree
		}
		if d.Allergies != nil {
			allergies := make([]string, 0, len(*d.Allergies))
			for _, a := range *d.Allergies {
				if a = strings.TrimSpace(a); a != "" {
					allergies = append(allergies, a)
				}
			}
			if len(allergies) > maxAllergies {
				errs["dietaryPreferences.allergies"] = fmt.Sprintf("at most %d allergies", maxAllergies)
			}
			p.Dietary.Allergies = allergies
		}
	}
	if len(errs) > 0 {
		return Preferences{}, apperr.Validation(errs)
	}

	u.Preferences = p
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return Preferences{}, err
	}
	return updated.Preferences, nil
}

func (s *Service) Stats(ctx context.Context, id int) (Stats, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	count, spent, err := s.orders.OrderTotals(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalOrders: count, TotalSpent: spent, MemberSince: u.CreatedAt}, nil
}

// SetAvatar stores url as the avatar and returns the previous one, if any.
func (s *Service) SetAvatar(ctx context.Context, id int, url *string) (User, *string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, nil, err
	}
	previous := u.Avatar
	u.Avatar = url
	updated, err := s.repo.Update(ctx, u)
	return updated, previous, err
}

// EnsureAdmin creates the admin account, or promotes an existing one. It
// does nothing unless both email and password are set.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	switch {
	case err == nil:
		if existing.Role == auth.RoleAdmin {
			return nil
		}
		existing.Role = auth.RoleAdmin
		_, err = s.repo.Update(ctx, existing)
		return err
	case !errors.Is(err, ErrNotFound):
		return err
	}

	created, err := s.Register(ctx, RegisterInput{Username: "admin", Email: email, Password: password})
	if err != nil {
		return err
	}
	created.Role = auth.RoleAdmin
	_, err = s.repo.Update(ctx, created)
	return err
}

func validateRegistration(in RegisterInput) map[string]string {
	errs := map[string]string{}
	if in.Username == "" {
		errs["username"] = "is required"
	}
	if in.Email == "" {
		errs["email"] = "is required"
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs["email"] = "is not a valid email address"
	}
	if msg := validatePassword(in.Password); msg != "" {
		errs["password"] = msg
	}
	return errs
}

func validatePassword(p string) string {
	if len(p) < minPasswordLength {
		return fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
	if len(p) > maxPasswordLength {
		return fmt.Sprintf("must be at most %d characters", maxPasswordLength)
	}
	return ""
}
