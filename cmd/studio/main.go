package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"tunesmith/studio/auth"
	"tunesmith/studio/generation"
	"tunesmith/studio/schema"
	"tunesmith/studio/services"
	"tunesmith/studio/storage"
	"tunesmith/studio/store"
	"tunesmith/utils"
	"tunesmith/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type studioEnv struct {
	PublicHostname string
	ShareDir       string
	JwtSecret      string

	IdentityProvider  string
	KeycloakServerUrl string
	KeycloakRealm     string

	DatabaseUri string
}

func loadEnvFile(envFile string) {
	slog.Info(fmt.Sprintf("loading env from file %v", envFile))
	err := godotenv.Load(envFile)
	if err != nil {
		log.Fatalf("error loading .env file '%v': %v", envFile, err)
	}
}

/**
 * =======================================================================
 * ==== All variables that are used by the studio must be loaded here. ====
 * ==== This makes the data flow clear so that a user can see what     ====
 * ==== variables are exposed, and how the values are propagated       ====
 * ==== through the system.                                            ====
 * =======================================================================
 */
func loadEnv() studioEnv {
	missingEnvs := []string{}

	requiredEnv := func(key string) string {
		env := os.Getenv(key)
		if env == "" {
			missingEnvs = append(missingEnvs, key)
			slog.Error("missing required env variable", "key", key)
		}
		return env
	}

	env := studioEnv{
		PublicHostname: requiredEnv("PUBLIC_HOSTNAME"),
		ShareDir:       requiredEnv("SHARE_DIR"),
		JwtSecret:      requiredEnv("JWT_SECRET"),

		IdentityProvider:  requiredEnv("IDENTITY_PROVIDER"),
		KeycloakServerUrl: utils.OptionalEnv("KEYCLOAK_SERVER_URL"),
		KeycloakRealm:     utils.OptionalEnv("KEYCLOAK_REALM"),

		DatabaseUri: requiredEnv("DATABASE_URI"),
	}

	if len(missingEnvs) > 0 {
		log.Fatalf("The following required env vars are missing: %s", strings.Join(missingEnvs, ", "))
	}

	if env.IdentityProvider == "keycloak" && env.KeycloakServerUrl == "" {
		log.Fatal("KEYCLOAK_SERVER_URL must be specified when IDENTITY_PROVIDER is keycloak")
	}

	return env
}

func (env *studioEnv) postgresDsn() string {
	parts, err := url.Parse(env.DatabaseUri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}

func initLogging(logFile *os.File) {
	jsonHandler := slog.NewJSONHandler(logFile, logging.GetVictoriaLogsOptions(false))
	textHandler := slog.NewTextHandler(os.Stderr, nil)

	logger := slog.New(slogmulti.Fanout(jsonHandler, textHandler))
	slog.SetDefault(logger)

	slog.Info("logging initialized", "log_file", logFile.Name(), "code", logging.SYSTEM)
}

func initDb(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	err = db.AutoMigrate(schema.Tables()...)
	if err != nil {
		log.Fatalf("error migrating db schema: %v", err)
	}

	return db
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from. If not specified will just load them from the environment variables already defined.")
	seed := flag.Bool("seed", false, "If specified will seed the ai artist catalog before serving.")
	seedFile := flag.String("seed_file", "", "Path to a YAML artist catalog. Defaults to the catalog shipped with the binary.")

	port := flag.Int("port", 8000, "Port to run server on")

	flag.Parse()

	if *envFile != "" {
		loadEnvFile(*envFile)
	}
	env := loadEnv()

	err := os.MkdirAll(filepath.Join(env.ShareDir, "logs/"), 0777)
	if err != nil {
		log.Fatalf("error creating log dir: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(env.ShareDir, "logs/studio.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer logFile.Close()

	auditLog, err := os.OpenFile(filepath.Join(env.ShareDir, "logs/audit.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening audit log file: %v", err)
	}
	defer auditLog.Close()

	initLogging(logFile)

	db := initDb(env.postgresDsn())

	st := store.NewStore(db)

	if *seed {
		if err := seedArtists(st, *seedFile); err != nil {
			log.Fatalf("error seeding artist catalog: %v", err)
		}
		slog.Info("artist catalog seeded", "code", logging.SYSTEM)
	}

	sharedStorage := storage.NewSharedDisk(env.ShareDir)

	var identityProvider auth.IdentityProvider
	if env.IdentityProvider == "keycloak" {
		identityProvider, err = auth.NewKeycloakIdentityProvider(
			st,
			auth.NewAuditLogger(auditLog),
			auth.KeycloakArgs{
				ServerUrl: env.KeycloakServerUrl,
				Realm:     env.KeycloakRealm,
			},
		)
		if err != nil {
			log.Fatalf("error creating keycloak identity provider: %v", err)
		}
	} else {
		identityProvider = auth.NewBasicIdentityProvider(st, auth.NewAuditLogger(auditLog), []byte(env.JwtSecret))
	}

	provider := generation.NewMockProvider(sharedStorage)

	studio := services.NewStudio(st, sharedStorage, provider, identityProvider)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{env.PublicHostname},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/api", studio.Routes())

	slog.Info("starting server", "port", *port, "code", logging.SYSTEM)
	err = http.ListenAndServe(fmt.Sprintf(":%d", *port), r)
	if err != nil {
		log.Fatalf("listen and serve returned error: %v", err.Error())
	}
}
