package namespace_test

import (
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/domain/namespace"
	"taskboard/testinfra"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ProjectMembers", func() {
	var (
		testDatabase *testinfra.TestDatabase
		admin        account.User
		user         account.User
		project      domain.Project
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("taskboard")
		Expect(testDatabase.DS.Migrate(&account.User{}, &domain.Project{}, &domain.ProjectMember{})).To(BeNil())
		admin = createUser(testDatabase, "admin@example.com", authority.RoleAdmin)
		user = createUser(testDatabase, "user@example.com", authority.RoleUser)
		project = createProject(testDatabase, "p1", admin.ID)
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	Describe("AddProjectMember", func() {
		It("should add member with default role and caller as assigner", func() {
			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			m, err := namespace.AddProjectMember(project.ID, &domain.ProjectMemberCreation{UserID: user.ID}, sec)
			Expect(err).To(BeNil())
			Expect(m.ProjectID).To(Equal(project.ID))
			Expect(m.UserID).To(Equal(user.ID))
			Expect(m.AssignedByID).To(Equal(admin.ID))
			Expect(m.Role).To(Equal(authority.ProjectRoleWorker))
		})

		It("should return conflict when adding the same user twice", func() {
			sec := testinfra.BuildSession(user.ID, authority.RoleUser)
			role := authority.ProjectRoleManager
			_, err := namespace.AddProjectMember(project.ID, &domain.ProjectMemberCreation{UserID: user.ID, Role: &role}, sec)
			Expect(err).To(BeNil())

			_, err = namespace.AddProjectMember(project.ID, &domain.ProjectMemberCreation{UserID: user.ID}, sec)
			Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrConflict{}))
			Expect(err.Error()).To(Equal("User is already a member of this project"))
		})

		It("should name the missing reference", func() {
			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			_, err := namespace.AddProjectMember(uuid.New(), &domain.ProjectMemberCreation{UserID: user.ID}, sec)
			Expect(err).To(MatchError("Project not found"))

			_, err = namespace.AddProjectMember(project.ID, &domain.ProjectMemberCreation{UserID: uuid.New()}, sec)
			Expect(err).To(MatchError("User not found"))

			_, err = namespace.AddProjectMember(project.ID, &domain.ProjectMemberCreation{UserID: user.ID}, testinfra.BuildSession(uuid.New(), authority.RoleAdmin))
			Expect(err).To(MatchError("Assigning user not found"))
		})
	})

	Describe("QueryProjectMembers", func() {
		It("should embed user and assigner summaries", func() {
			createMember(testDatabase, project.ID, user.ID, admin.ID, authority.ProjectRoleWorker)

			members, err := namespace.QueryProjectMembers(project.ID, testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(BeNil())
			Expect(len(members)).To(Equal(1))
			Expect(*members[0].User).To(Equal(user.Summary()))
			Expect(*members[0].AssignedBy).To(Equal(admin.Summary()))

			members, err = namespace.QueryProjectMembers(uuid.New(), testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(BeNil())
			Expect(members).To(BeEmpty())
		})
	})

	Describe("RemoveProjectMember", func() {
		It("should remove membership once", func() {
			createMember(testDatabase, project.ID, user.ID, admin.ID, authority.ProjectRoleWorker)
			_, err := namespace.RemoveProjectMember(project.ID, user.ID, testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			removed, err := namespace.RemoveProjectMember(project.ID, user.ID, sec)
			Expect(err).To(BeNil())
			Expect(removed).To(BeTrue())

			removed, err = namespace.RemoveProjectMember(project.ID, user.ID, sec)
			Expect(err).To(MatchError("Project member not found"))
			Expect(removed).To(BeFalse())
		})
	})

	Describe("QueryMemberRoleCounts", func() {
		It("should tally memberships by role", func() {
			p2 := createProject(testDatabase, "p2", admin.ID)
			p3 := createProject(testDatabase, "p3", admin.ID)
			createMember(testDatabase, project.ID, user.ID, admin.ID, authority.ProjectRoleWorker)
			createMember(testDatabase, p2.ID, user.ID, admin.ID, authority.ProjectRoleManager)
			createMember(testDatabase, p3.ID, user.ID, admin.ID, authority.ProjectRoleWorker)

			counts, err := namespace.QueryMemberRoleCounts(testinfra.BuildSession(user.ID, authority.RoleUser).Ctx(), user.ID)
			Expect(err).To(BeNil())
			Expect(counts).To(Equal(map[authority.ProjectRole]int{authority.ProjectRoleWorker: 2, authority.ProjectRoleManager: 1}))
		})

		It("should skip memberships of deleted projects", func() {
			p2 := createProject(testDatabase, "p2", admin.ID)
			createMember(testDatabase, project.ID, user.ID, admin.ID, authority.ProjectRoleWorker)
			createMember(testDatabase, p2.ID, user.ID, admin.ID, authority.ProjectRoleManager)

			ok, err := namespace.DeleteProject(p2.ID, testinfra.BuildSession(admin.ID, authority.RoleAdmin))
			Expect(err).To(BeNil())
			Expect(ok).To(BeTrue())

			counts, err := namespace.QueryMemberRoleCounts(testinfra.BuildSession(user.ID, authority.RoleUser).Ctx(), user.ID)
			Expect(err).To(BeNil())
			Expect(counts).To(Equal(map[authority.ProjectRole]int{authority.ProjectRoleWorker: 1}))
		})
	})
})
