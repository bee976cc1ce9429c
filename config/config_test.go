package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth: AuthConfig{
			JWTSecret:       "unit-test-secret-0123456789",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		Attendance: AttendanceConfig{Timezone: "UTC"},
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("合法配置不应校验失败: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"空密钥", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"端口为零", func(c *Config) { c.Server.Port = 0 }},
		{"非法时区", func(c *Config) { c.Attendance.Timezone = "Not/AZone" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("应校验失败，实际通过")
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "attend",
		User:     "postgres",
		Password: "secret",
		SSLMode:  "disable",
		Timezone: "UTC",
	}

	dsn := cfg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=attend", "user=postgres", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN 应包含 %q，实际为 %s", part, dsn)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ATTEND_AUTH_JWT_SECRET", "env-secret-0123456789abcdef")
	t.Setenv("ATTEND_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("环境变量应覆盖默认端口，实际为 %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret-0123456789abcdef" {
		t.Error("环境变量应注入密钥")
	}
	// 未覆盖的项取默认值
	if cfg.Attendance.Timezone != "UTC" {
		t.Errorf("考勤时区默认应为 UTC，实际为 %s", cfg.Attendance.Timezone)
	}
}
