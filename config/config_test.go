package config

import (
	"errors"
	"testing"
	"time"
)

func TestGetDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_ACCESS_KEY", "")
	t.Setenv("GO_ENV", "")
	t.Setenv("USE_LOCAL_ADMIN", "")
	t.Setenv("CRON_ENABLED", "")

	env, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if env.PORT != 8080 {
		t.Errorf("PORT = %d, want 8080", env.PORT)
	}
	if env.JWT_EXPIRES_IN != 7*24*time.Hour {
		t.Errorf("JWT_EXPIRES_IN = %v, want 168h", env.JWT_EXPIRES_IN)
	}
	if env.STORAGE_DRIVER != "local" {
		t.Errorf("STORAGE_DRIVER = %q, want local without credentials in development", env.STORAGE_DRIVER)
	}
	if env.USE_LOCAL_ADMIN {
		t.Error("USE_LOCAL_ADMIN must default to false")
	}
	if !env.CRON_ENABLED {
		t.Error("CRON_ENABLED should default to true")
	}
	if len(env.ALLOWED_FILE_TYPES) != 4 {
		t.Errorf("ALLOWED_FILE_TYPES = %v", env.ALLOWED_FILE_TYPES)
	}
}

func TestGetInvalidDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "7 days")
	if _, err := Get(); err == nil {
		t.Fatal("expected error for malformed JWT_EXPIRES_IN")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     EnvironmentVariable
		wantErr error
	}{
		{
			name:    "missing secret",
			env:     EnvironmentVariable{STORAGE_DRIVER: "local"},
			wantErr: ErrMissingJWTSecret,
		},
		{
			name:    "bypass refused in production",
			env:     EnvironmentVariable{GO_ENV: "production", JWT_SECRET: "s", USE_LOCAL_ADMIN: true, STORAGE_DRIVER: "local"},
			wantErr: ErrBypassInProduction,
		},
		{
			name: "bypass allowed in development",
			env:  EnvironmentVariable{GO_ENV: "development", USE_LOCAL_ADMIN: true, STORAGE_DRIVER: "local"},
		},
		{
			name:    "unknown storage driver",
			env:     EnvironmentVariable{JWT_SECRET: "s", STORAGE_DRIVER: "ftp"},
			wantErr: ErrUnknownStorageDriver,
		},
		{
			name:    "s3 without credentials",
			env:     EnvironmentVariable{JWT_SECRET: "s", STORAGE_DRIVER: "s3"},
			wantErr: ErrMissingStorageCreds,
		},
		{
			name: "s3 configured",
			env: EnvironmentVariable{
				JWT_SECRET:         "s",
				STORAGE_DRIVER:     "s3",
				STORAGE_ACCESS_KEY: "a",
				STORAGE_SECRET_KEY: "b",
				STORAGE_ENDPOINT:   "https://example.storage.supabase.co/storage/v1/s3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	env := EnvironmentVariable{DB_HOST: "db", DB_USER_NAME: "u", DB_PASSWORD: "p", DB_NAME: "mathwa", DB_PORT: "5432"}
	want := "host=db user=u password=p dbname=mathwa port=5432 sslmode=disable TimeZone=UTC"
	if got := env.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	env.DATABASE_URL = "postgres://u:p@db/mathwa"
	if got := env.DSN(); got != env.DATABASE_URL {
		t.Errorf("DSN() = %q, want DATABASE_URL", got)
	}
}
