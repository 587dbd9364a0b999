package services

import (
	"testing"
	"time"

	"rentbroker/internal/models"
	"rentbroker/internal/store"
	th "rentbroker/internal/testhelpers"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-not-base64!"

type env struct {
	db           *gorm.DB
	tokens       *TokenService
	resolver     *IdentityResolver
	users        *UserService
	properties   *PropertyService
	applications *ApplicationService
	viewings     *ViewingService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := th.NewDB(t)
	log := zerolog.Nop()
	tx := store.NewTxManager(gdb)
	userRepo := store.NewUserRepository(gdb)
	propertyRepo := store.NewPropertyRepository(gdb)
	tokens := NewTokenService(testSecret, time.Hour, log)

	return &env{
		db:           gdb,
		tokens:       tokens,
		resolver:     NewIdentityResolver(tokens, userRepo, log),
		users:        NewUserService(userRepo, tx, NewBcryptHasher(bcrypt.MinCost), tokens, log),
		properties:   NewPropertyService(propertyRepo, tx, log),
		applications: NewApplicationService(store.NewApplicationRepository(gdb), propertyRepo, tx, log),
		viewings:     NewViewingService(store.NewViewingRepository(gdb), propertyRepo, tx, log),
	}
}

func identityOf(u *models.User) *Identity {
	return newIdentity(u, u.Roles().Claims())
}
