package account_test

import (
	"context"
	"encoding/json"
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/session"
	"taskboard/testinfra"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string {
	return &s
}

var _ = Describe("Accounts", func() {
	var (
		testDatabase *testinfra.TestDatabase
		ctx          = context.Background()
	)
	BeforeEach(func() {
		account.BcryptCost = bcrypt.MinCost
		testDatabase = testinfra.StartTestDatabase("taskboard")
		Expect(testDatabase.DS.Migrate(&account.User{})).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	register := func(email string) *account.User {
		u, err := account.Register(&account.UserRegistration{Email: email, Password: "123456", FirstName: "Ann", LastName: "Lee"}, ctx)
		Expect(err).To(BeNil())
		return u
	}

	Describe("Register", func() {
		It("should create user with role USER and hashed password", func() {
			u := register(" Ann@Example.com ")
			Expect(u.ID).ToNot(Equal(uuid.Nil))
			Expect(u.Email).To(Equal("ann@example.com"))
			Expect(u.Role).To(Equal(authority.RoleUser))
			Expect(u.Password).ToNot(Equal("123456"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("123456"))).To(BeNil())

			data, err := json.Marshal(u)
			Expect(err).To(BeNil())
			Expect(string(data)).ToNot(ContainSubstring("password"))
		})

		It("should return conflict when email is registered twice", func() {
			register("ann@example.com")
			u, err := account.Register(&account.UserRegistration{Email: "ANN@example.com", Password: "654321", FirstName: "A", LastName: "B"}, ctx)
			Expect(u).To(BeNil())
			Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrConflict{}))
			Expect(err.Error()).To(Equal("User with this email already exists"))
		})
	})

	Describe("Login", func() {
		It("should issue token carrying user id and role", func() {
			u := register("ann@example.com")
			resp, err := account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "123456"}, ctx)
			Expect(err).To(BeNil())
			Expect(resp.User).To(Equal(account.UserInfo{ID: u.ID, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", Role: authority.RoleUser}))

			s, err := session.ActiveTokenManager.Verify(resp.AccessToken)
			Expect(err).To(BeNil())
			Expect(s.Identity.ID).To(Equal(u.ID))
			Expect(s.Role).To(Equal(authority.RoleUser))

			data, err := json.Marshal(resp)
			Expect(err).To(BeNil())
			Expect(string(data)).To(ContainSubstring(`"access_token"`))
			Expect(string(data)).ToNot(ContainSubstring("password"))
		})

		It("should reject wrong password and unknown email alike", func() {
			register("ann@example.com")
			_, err := account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "bad-password"}, ctx)
			Expect(err).To(Equal(bizerror.ErrInvalidCredentials))
			_, err = account.Login(&account.LoginRequest{Email: "nobody@example.com", Password: "123456"}, ctx)
			Expect(err).To(Equal(bizerror.ErrInvalidCredentials))
		})
	})

	Describe("QueryUsers and DetailUser", func() {
		It("should list users for any authenticated role", func() {
			u1 := register("ann@example.com")
			u2 := register("bob@example.com")

			users, err := account.QueryUsers(testinfra.BuildSession(u1.ID, authority.RoleUser))
			Expect(err).To(BeNil())
			Expect(len(users)).To(Equal(2))

			_, err = account.QueryUsers(&session.Session{})
			Expect(err).To(Equal(bizerror.ErrForbidden))

			found, err := account.DetailUser(u2.ID, testinfra.BuildSession(uuid.New(), authority.RoleAdmin))
			Expect(err).To(BeNil())
			Expect(found.Email).To(Equal("bob@example.com"))
		})

		It("should restrict reading other users to admins", func() {
			u1 := register("ann@example.com")
			u2 := register("bob@example.com")
			sec := testinfra.BuildSession(u1.ID, authority.RoleUser)

			_, err := account.DetailUser(u2.ID, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))

			me, err := account.CurrentUser(sec)
			Expect(err).To(BeNil())
			Expect(me.ID).To(Equal(u1.ID))

			_, err = account.CurrentUser(&session.Session{})
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})

		It("should report missing user as not found", func() {
			_, err := account.DetailUser(uuid.New(), testinfra.BuildSession(uuid.New(), authority.RoleAdmin))
			Expect(err).To(MatchError("User not found"))
		})
	})

	Describe("UpdateCurrentUser", func() {
		It("should update provided fields and re-hash password", func() {
			u := register("ann@example.com")
			sec := testinfra.BuildSession(u.ID, authority.RoleUser)

			updated, err := account.UpdateCurrentUser(&account.UserSelfUpdating{FirstName: strPtr("Anna"), Password: strPtr("new-secret")}, sec)
			Expect(err).To(BeNil())
			Expect(updated.FirstName).To(Equal("Anna"))
			Expect(updated.LastName).To(Equal("Lee"))
			Expect(updated.Email).To(Equal("ann@example.com"))
			Expect(updated.Role).To(Equal(authority.RoleUser))
			Expect(updated.UpdatedAt).To(BeTemporally(">=", u.UpdatedAt))

			_, err = account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "123456"}, ctx)
			Expect(err).To(Equal(bizerror.ErrInvalidCredentials))
			_, err = account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "new-secret"}, ctx)
			Expect(err).To(BeNil())
		})

		It("should return conflict when taking another user's email", func() {
			u := register("ann@example.com")
			register("bob@example.com")
			sec := testinfra.BuildSession(u.ID, authority.RoleUser)

			_, err := account.UpdateCurrentUser(&account.UserSelfUpdating{Email: strPtr("bob@example.com")}, sec)
			Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrConflict{}))

			updated, err := account.UpdateCurrentUser(&account.UserSelfUpdating{Email: strPtr("ANN@example.com")}, sec)
			Expect(err).To(BeNil())
			Expect(updated.Email).To(Equal("ann@example.com"))
		})
	})

	Describe("UpdateUser and UpdateUserRole", func() {
		It("should allow admins to change role", func() {
			u := register("ann@example.com")
			admin := testinfra.BuildSession(uuid.New(), authority.RoleAdmin)

			role := authority.RoleAdmin
			updated, err := account.UpdateUser(u.ID, &account.UserUpdating{Role: &role, UserSelfUpdating: account.UserSelfUpdating{LastName: strPtr("Smith")}}, admin)
			Expect(err).To(BeNil())
			Expect(updated.Role).To(Equal(authority.RoleAdmin))
			Expect(updated.LastName).To(Equal("Smith"))

			updated, err = account.UpdateUserRole(u.ID, &account.RoleUpdating{Role: authority.RoleUser}, admin)
			Expect(err).To(BeNil())
			Expect(updated.Role).To(Equal(authority.RoleUser))
			Expect(updated.LastName).To(Equal("Smith"))
		})

		It("should forbid users and report missing targets", func() {
			u := register("ann@example.com")
			sec := testinfra.BuildSession(u.ID, authority.RoleUser)

			_, err := account.UpdateUser(u.ID, &account.UserUpdating{}, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))
			_, err = account.UpdateUserRole(u.ID, &account.RoleUpdating{Role: authority.RoleAdmin}, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))

			_, err = account.UpdateUserRole(uuid.New(), &account.RoleUpdating{Role: authority.RoleAdmin}, testinfra.BuildSession(uuid.New(), authority.RoleAdmin))
			Expect(err).To(MatchError("User not found"))
		})
	})

	Describe("QueryAccountNames", func() {
		It("should resolve display names in batch", func() {
			u1 := register("ann@example.com")
			u2, err := account.Register(&account.UserRegistration{Email: "bob@example.com", Password: "123456", FirstName: "Bob", LastName: "Ray"}, ctx)
			Expect(err).To(BeNil())

			names, err := account.QueryAccountNames(ctx, []uuid.UUID{u1.ID, u2.ID, uuid.New()})
			Expect(err).To(BeNil())
			Expect(names).To(Equal(map[uuid.UUID]string{u1.ID: "Ann Lee", u2.ID: "Bob Ray"}))

			names, err = account.QueryAccountNames(ctx, nil)
			Expect(err).To(BeNil())
			Expect(names).To(BeEmpty())
		})
	})

	Describe("DisplayName", func() {
		It("should fall back to email", func() {
			Expect(account.User{FirstName: "Ann", LastName: "Lee", Email: "a@b.c"}.DisplayName()).To(Equal("Ann Lee"))
			Expect(account.User{Email: "a@b.c"}.DisplayName()).To(Equal("a@b.c"))
		})
	})

	Describe("DefaultSecurityConfiguration", func() {
		It("should create initial admin only once", func() {
			Expect(account.DefaultSecurityConfiguration("Admin@example.com", "123456")).To(BeNil())
			Expect(account.DefaultSecurityConfiguration("admin@example.com", "other")).To(BeNil())

			admin := account.User{}
			Expect(testDatabase.DS.GormDB(ctx).Where("email = ?", "admin@example.com").First(&admin).Error).To(BeNil())
			Expect(admin.Role).To(Equal(authority.RoleAdmin))

			resp, err := account.Login(&account.LoginRequest{Email: "admin@example.com", Password: "123456"}, ctx)
			Expect(err).To(BeNil())
			Expect(resp.User.Role).To(Equal(authority.RoleAdmin))

			var count int
			Expect(testDatabase.DS.GormDB(ctx).Model(&account.User{}).Count(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})
	})

	Describe("Logout", func() {
		It("should revoke token", func() {
			u := register("ann@example.com")
			resp, err := account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "123456"}, ctx)
			Expect(err).To(BeNil())
			s, err := session.ActiveTokenManager.Verify(resp.AccessToken)
			Expect(err).To(BeNil())
			Expect(s.Identity.ID).To(Equal(u.ID))

			Expect(account.Logout(s)).To(BeNil())
			revoked, err := session.ActiveRevocationStore.IsRevoked(ctx, resp.AccessToken)
			Expect(err).To(BeNil())
			Expect(revoked).To(BeTrue())
			Expect(s.ExpiresAt).To(BeTemporally(">", time.Now()))
		})
	})
})
