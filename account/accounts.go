package account

import (
	"context"
	"errors"
	"strings"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/persistence"
	"taskboard/session"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

var BcryptCost = bcrypt.DefaultCost

var errEmailTaken = &bizerror.ErrConflict{Message: "User with this email already exists"}

func HashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account. Registration can never grant another role.
func Register(c *UserRegistration, ctx context.Context) (*User, error) {
	hashed, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := User{ID: domain.NewID(), Email: normalizeEmail(c.Email), Password: hashed,
		FirstName: strings.TrimSpace(c.FirstName), LastName: strings.TrimSpace(c.LastName),
		Role: authority.RoleUser, CreatedAt: now, UpdatedAt: now}

	txErr := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, user.Email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return errEmailTaken
		}
		return tx.Create(&user).Error
	})
	if persistence.IsUniqueViolation(txErr) {
		return nil, errEmailTaken
	}
	if txErr != nil {
		return nil, txErr
	}
	return &user, nil
}

func Login(c *LoginRequest, ctx context.Context) (*LoginResponse, error) {
	user := User{}
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("email = ?", normalizeEmail(c.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bizerror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(c.Password)) != nil {
		return nil, bizerror.ErrInvalidCredentials
	}

	token, _, err := session.ActiveTokenManager.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: token, User: user.Info()}, nil
}

func Logout(sec *session.Session) error {
	return session.Logout(sec)
}

func QueryUsers(sec *session.Session) ([]User, error) {
	if !sec.Permits(authority.UserList) {
		return nil, bizerror.ErrForbidden
	}
	users := []User{}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func DetailUser(id uuid.UUID, sec *session.Session) (*User, error) {
	if !sec.Is(id) && !sec.Permits(authority.UserRead) {
		return nil, bizerror.ErrForbidden
	}
	return findUser(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
}

func CurrentUser(sec *session.Session) (*User, error) {
	if !sec.Authenticated() {
		return nil, bizerror.ErrUnauthenticated
	}
	return DetailUser(sec.Identity.ID, sec)
}

func UpdateUser(id uuid.UUID, u *UserUpdating, sec *session.Session) (*User, error) {
	if !sec.Permits(authority.UserUpdate) {
		return nil, bizerror.ErrForbidden
	}
	return updateUser(id, &u.UserSelfUpdating, u.Role, sec)
}

// UpdateCurrentUser updates the caller's own profile; the role is never touched.
func UpdateCurrentUser(u *UserSelfUpdating, sec *session.Session) (*User, error) {
	if !sec.Authenticated() {
		return nil, bizerror.ErrUnauthenticated
	}
	return updateUser(sec.Identity.ID, u, nil, sec)
}

func UpdateUserRole(id uuid.UUID, r *RoleUpdating, sec *session.Session) (*User, error) {
	if !sec.Permits(authority.UserAssignRole) {
		return nil, bizerror.ErrForbidden
	}
	role := r.Role
	return updateUser(id, &UserSelfUpdating{}, &role, sec)
}

func updateUser(id uuid.UUID, u *UserSelfUpdating, role *authority.Role, sec *session.Session) (*User, error) {
	user := User{}
	txErr := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		found, err := findUser(tx, id)
		if err != nil {
			return err
		}
		user = *found

		if u.Email != nil {
			email := normalizeEmail(*u.Email)
			if email != user.Email {
				taken, err := emailTaken(tx, email, user.ID)
				if err != nil {
					return err
				}
				if taken {
					return errEmailTaken
				}
				user.Email = email
			}
		}
		if u.Password != nil {
			hashed, err := HashPassword(*u.Password)
			if err != nil {
				return err
			}
			user.Password = hashed
		}
		if u.FirstName != nil {
			user.FirstName = strings.TrimSpace(*u.FirstName)
		}
		if u.LastName != nil {
			user.LastName = strings.TrimSpace(*u.LastName)
		}
		if role != nil {
			user.Role = *role
		}
		user.UpdatedAt = time.Now()
		return tx.Save(&user).Error
	})
	if persistence.IsUniqueViolation(txErr) {
		return nil, errEmailTaken
	}
	if txErr != nil {
		return nil, txErr
	}
	return &user, nil
}

func findUser(db *gorm.DB, id uuid.UUID) (*User, error) {
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NotFound("User")
		}
		return nil, err
	}
	return &user, nil
}

func emailTaken(db *gorm.DB, email string, except uuid.UUID) (bool, error) {
	var count int
	if err := db.Model(&User{}).Where("email = ? AND id <> ?", email, except).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Exists checks a user reference inside the caller's transaction.
func Exists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int
	if err := db.Model(&User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// QueryAccountNames resolves display names in one query; missing ids are simply absent.
func QueryAccountNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	summaries, err := QueryUserSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := map[uuid.UUID]string{}
	for id, s := range summaries {
		result[id] = User{Email: s.Email, FirstName: s.FirstName, LastName: s.LastName}.DisplayName()
	}
	return result, nil
}

func QueryUserSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserSummary, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.UserSummary{}, nil
	}
	var records []User
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[uuid.UUID]domain.UserSummary{}
	for _, r := range records {
		result[r.ID] = r.Summary()
	}
	return result, nil
}
