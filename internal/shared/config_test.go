package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	validID     = "8885e3e6-3d5d-4a4c-8f9f-0b2d6f0a1c4e"
	validSecret = "4f3c2b1a-9e8d-7c6b-5a49-382716050403"
)

func validConfig() *Config {
	c := DefaultConfig()
	c.Smartcar.ClientID = validID
	c.Smartcar.ClientSecret = validSecret
	c.ApplyDefaults()
	return c
}

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		c := DefaultConfig()
		if c.Smartcar.Mode != ModeTest {
			t.Errorf("expected default mode %q, got %q", ModeTest, c.Smartcar.Mode)
		}
		if c.Server.Port != 8000 {
			t.Errorf("expected default port 8000, got %d", c.Server.Port)
		}
	})

	t.Run("ApplyDefaults", func(t *testing.T) {
		t.Run("Derives Redirect URI From Port", func(t *testing.T) {
			c := &Config{}
			c.Server.Port = 9191
			c.ApplyDefaults()
			if c.Smartcar.RedirectURI != "http://localhost:9191/callback" {
				t.Errorf("unexpected redirect URI %q", c.Smartcar.RedirectURI)
			}
		})

		t.Run("Keeps Explicit Redirect URI", func(t *testing.T) {
			c := &Config{}
			c.Smartcar.RedirectURI = "https://example.com/cb"
			c.ApplyDefaults()
			if c.Smartcar.RedirectURI != "https://example.com/cb" {
				t.Errorf("redirect URI overwritten: %q", c.Smartcar.RedirectURI)
			}
		})

		t.Run("Fills Port And Mode", func(t *testing.T) {
			c := &Config{}
			c.ApplyDefaults()
			if c.Server.Port != 8000 || c.Smartcar.Mode != ModeTest {
				t.Errorf("defaults not applied: port=%d mode=%q", c.Server.Port, c.Smartcar.Mode)
			}
		})
	})

	t.Run("Validate", func(t *testing.T) {
		t.Run("Valid Config", func(t *testing.T) {
			if err := validConfig().Validate(); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Non-UUID Client ID", func(t *testing.T) {
			c := validConfig()
			c.Smartcar.ClientID = "not-a-uuid"
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error for non-UUID client id")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), "client_id") {
				t.Errorf("error should name client_id: %v", err)
			}
		})

		t.Run("Non-UUID Client Secret", func(t *testing.T) {
			c := validConfig()
			c.Smartcar.ClientSecret = "nope"
			if err := c.Validate(); err == nil {
				t.Error("expected error for non-UUID client secret")
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			c := &Config{}
			c.ApplyDefaults()
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error for missing credentials")
			}
			if !strings.Contains(err.Error(), "client_id is required") {
				t.Errorf("error should mention missing client_id: %v", err)
			}
		})

		t.Run("Unknown Mode", func(t *testing.T) {
			c := validConfig()
			c.Smartcar.Mode = "staging"
			if err := c.Validate(); err == nil {
				t.Error("expected error for unknown mode")
			}
		})

		t.Run("Invalid Port", func(t *testing.T) {
			c := validConfig()
			c.Server.Port = 70000
			if err := c.Validate(); err == nil {
				t.Error("expected error for out-of-range port")
			}
		})
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Run("Overrides File Values", func(t *testing.T) {
			t.Setenv("SMARTCAR_CLIENT_ID", validID)
			t.Setenv("SMARTCAR_MODE", ModeLive)
			t.Setenv("PORT", "9000")

			c := DefaultConfig()
			c.Smartcar.ClientID = "from-file"
			if err := c.ApplyEnv(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Smartcar.ClientID != validID {
				t.Errorf("env should win, got %q", c.Smartcar.ClientID)
			}
			if c.Smartcar.Mode != ModeLive {
				t.Errorf("expected live mode, got %q", c.Smartcar.Mode)
			}
			if c.Server.Port != 9000 {
				t.Errorf("expected port 9000, got %d", c.Server.Port)
			}
		})

		t.Run("Rejects Non-Numeric Port", func(t *testing.T) {
			t.Setenv("PORT", "eight thousand")
			c := DefaultConfig()
			if err := c.ApplyEnv(); err == nil {
				t.Error("expected error for non-numeric PORT")
			}
		})
	})

	t.Run("Resolve", func(t *testing.T) {
		t.Run("Aborts On Invalid Credentials", func(t *testing.T) {
			t.Setenv("SMARTCAR_CLIENT_ID", "not-a-uuid")
			t.Setenv("SMARTCAR_CLIENT_SECRET", validSecret)
			if _, err := Resolve(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
				t.Error("expected resolve to fail on invalid client id")
			}
		})

		t.Run("Reads Config File", func(t *testing.T) {
			for _, key := range []string{"SMARTCAR_CLIENT_ID", "SMARTCAR_CLIENT_SECRET", "SMARTCAR_MODE", "PORT"} {
				t.Setenv(key, "")
			}

			path := filepath.Join(t.TempDir(), "config.toml")
			body := "[smartcar]\nclient_id = \"" + validID + "\"\nclient_secret = \"" + validSecret + "\"\nmode = \"live\"\n"
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			c, err := Resolve(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if c.Smartcar.Mode != ModeLive {
				t.Errorf("expected mode from file, got %q", c.Smartcar.Mode)
			}
			if c.Server.Port != 8000 {
				t.Errorf("expected default port, got %d", c.Server.Port)
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
