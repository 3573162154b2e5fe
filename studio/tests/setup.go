package tests

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tunesmith/studio/auth"
	"tunesmith/studio/generation"
	"tunesmith/studio/schema"
	"tunesmith/studio/services"
	"tunesmith/studio/storage"
	"tunesmith/studio/store"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	studio  services.Studio
	api     chi.Router
	store   *store.Store
	storage storage.Storage
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	// Every connection to an in-memory sqlite database sees its own copy,
	// so the pool has to stay at a single connection.
	sqlDb, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDb.SetMaxOpenConns(1)

	err = db.AutoMigrate(schema.Tables()...)
	if err != nil {
		t.Fatal(err)
	}

	storagePath := filepath.Join(t.TempDir(), "storage")
	err = os.MkdirAll(storagePath, 0777)
	if err != nil {
		t.Fatalf("error creating storage directory: %v", err)
	}

	st := store.NewStore(db)
	assets := storage.NewSharedDisk(storagePath)

	secret := []byte("290zcv02ai249")

	userAuth := auth.NewBasicIdentityProvider(st, auth.NewAuditLogger(new(bytes.Buffer)), secret)

	provider := generation.NewMockProvider(assets)

	studio := services.NewStudio(st, assets, provider, userAuth)

	return &testEnv{studio: studio, api: studio.Routes(), store: st, storage: assets}
}

func (t *testEnv) newClient() client {
	return client{api: t.api}
}

func (t *testEnv) newUser(name string) (client, error) {
	c := t.newClient()
	login, err := c.signup(name+"@mail.com", name+"_password")
	if err != nil {
		return client{}, err
	}

	err = c.login(login)
	if err != nil {
		return client{}, err
	}

	return c, nil
}

func (t *testEnv) seedArtists(artists ...schema.AiArtist) error {
	return t.store.SeedArtists(artists)
}

func (t *testEnv) setCredits(userId string, credits int) error {
	result := t.store.DB().Model(&schema.User{}).Where("id = ?", userId).Update("ai_credits", credits)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user with id %v", userId)
	}
	return nil
}

var testArtists = []schema.AiArtist{
	{Name: "Luna Nova", Gender: "female", VoiceType: "soprano", Genre: "pop", Language: "en", IsActive: true, Popularity: 95},
	{Name: "Max Steel", Gender: "male", VoiceType: "baritone", Genre: "hip-hop", Language: "en", IsActive: true, Popularity: 88},
	{Name: "Aria Rose", Gender: "female", VoiceType: "alto", Genre: "r&b", Language: "en", IsActive: true, Popularity: 92},
}
