package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 12*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 0.5, cfg.RecaptchaMinScore)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.AdminToken, "admin token must not have a built-in fallback")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_SKIP_TLS_VERIFY", "1")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("RECAPTCHA_MIN_SCORE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.SMTPSkipTLSVerify)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, 0.5, cfg.RecaptchaMinScore)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		want   string
	}{
		{"postgres", "postgres", "host=db user=u password=p dbname=site port=5432 sslmode=disable TimeZone=UTC"},
		{"mysql", "mysql", "u:p@tcp(db:5432)/site?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"sqlite", "sqlite", "site.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DBDriver: tt.driver, DBHost: "db", DBPort: "5432", DBUser: "u",
				DBPassword: "p", DBName: "site", DBSSLMode: "disable", DBPath: "site.db",
			}
			assert.Equal(t, tt.want, cfg.DSN())
		})
	}
}

func TestSMTPConfigured(t *testing.T) {
	assert.False(t, (&Config{SMTPHost: "smtp.example.com"}).SMTPConfigured())
	assert.True(t, (&Config{SMTPHost: "smtp.example.com", SMTPFrom: "a@b.c"}).SMTPConfigured())
}

func TestRequiresDBPassword(t *testing.T) {
	assert.True(t, (&Config{DBDriver: "postgres"}).RequiresDBPassword())
	assert.True(t, (&Config{DBDriver: "mysql"}).RequiresDBPassword())
	assert.False(t, (&Config{DBDriver: "sqlite"}).RequiresDBPassword())
}
