package services

import (
	"context"
	"testing"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/config"
	"biblio-circulate/internal/core/domain"
	"biblio-circulate/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthServiceForTest() (*AuthService, *MockUserRepo) {
	userRepo := new(MockUserRepo)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", AccessTokenMins: 60},
	}
	return NewAuthService(userRepo, cfg), userRepo
}

func TestRegister_SelfRegistrationIsAlwaysStudent(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	userRepo.On("ExistsByUsername", ctx, "somsri").Return(false, nil)
	userRepo.On("ExistsByEmail", ctx, "somsri@example.org").Return(false, nil)
	userRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, &RegisterInput{
		Username: "somsri",
		Email:    "somsri@example.org",
		Password: "longenough",
		FullName: "Somsri T.",
		Role:     "ADMIN", // must be ignored on self-registration
	}, false)

	assert.NoError(t, err)
	assert.Equal(t, string(domain.RoleStudent), user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "longenough", user.Password)
}

func TestRegister_AdminSetsRole(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	userRepo.On("ExistsByUsername", ctx, "lib1").Return(false, nil)
	userRepo.On("ExistsByEmail", ctx, "lib1@example.org").Return(false, nil)
	userRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, &RegisterInput{
		Username: "lib1",
		Email:    "lib1@example.org",
		Password: "longenough",
		FullName: "Librarian One",
		Role:     "LIBRARIAN",
	}, true)

	assert.NoError(t, err)
	assert.Equal(t, "LIBRARIAN", user.Role)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "somsri",
		Email:    "somsri@example.org",
		Password: "short",
		FullName: "Somsri T.",
	}, false)

	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	userRepo.On("ExistsByUsername", ctx, "somsri").Return(true, nil)

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "somsri",
		Email:    "somsri@example.org",
		Password: "longenough",
		FullName: "Somsri T.",
	}, false)

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	hash, err := password.Hash("longenough")
	assert.NoError(t, err)

	userRepo.On("GetByUsername", ctx, "somsri").Return(&models.User{
		ID: 1, Username: "somsri", Password: hash, Role: "STUDENT", IsActive: true,
	}, nil)

	out, err := svc.Login(ctx, "somsri", "longenough")

	assert.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "somsri", out.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	hash, err := password.Hash("longenough")
	assert.NoError(t, err)

	userRepo.On("GetByUsername", ctx, "somsri").Return(&models.User{
		ID: 1, Username: "somsri", Password: hash, Role: "STUDENT", IsActive: true,
	}, nil)

	_, err = svc.Login(ctx, "somsri", "not-the-password")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "somsri").Return(&models.User{
		ID: 1, Username: "somsri", IsActive: false,
	}, nil)

	_, err := svc.Login(ctx, "somsri", "whatever")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, userRepo := newAuthServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, assert.AnError)

	_, err := svc.Login(ctx, "ghost", "whatever")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
