package password

import (
	"errors"
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Memory:      minMemoryKB,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   8,
	}
}

func mustHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestHashAndCompare(t *testing.T) {
	h := mustHasher(t, fastConfig())

	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}
	if err := h.Compare("correct horse", encoded); err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if err := h.Compare("wrong horse!", encoded); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := mustHasher(t, fastConfig())
	a, _ := h.Hash("same password")
	b, _ := h.Hash("same password")
	if a == b {
		t.Fatal("expected distinct encodings for the same password")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := mustHasher(t, fastConfig())
	if _, err := h.Hash("short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestCompareAcrossParameterChange(t *testing.T) {
	old := mustHasher(t, fastConfig())
	encoded, err := old.Hash("migrating-user")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	stronger := fastConfig()
	stronger.Time = 2
	stronger.Memory = 2 * minMemoryKB
	h := mustHasher(t, stronger)

	if err := h.Compare("migrating-user", encoded); err != nil {
		t.Fatalf("old hash should still verify: %v", err)
	}
	needs, err := h.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !needs {
		t.Fatal("expected NeedsRehash for weaker parameters")
	}

	fresh, _ := h.Hash("migrating-user")
	if needs, _ := h.NeedsRehash(fresh); needs {
		t.Fatal("fresh hash should not need rehash")
	}
}

func TestCompareRejectsMalformedHashes(t *testing.T) {
	h := mustHasher(t, fastConfig())
	valid, _ := h.Hash("valid-password")
	parts := strings.Split(valid, "$")

	cases := map[string]string{
		"empty":          "",
		"plain":          "not-a-hash",
		"bcrypt":         "$2a$10$abcdefghijklmnopqrstuv",
		"wrong alg":      strings.Join([]string{"", "argon2i", parts[2], parts[3], parts[4], parts[5]}, "$"),
		"wrong version":  strings.Join([]string{"", parts[1], "v=16", parts[3], parts[4], parts[5]}, "$"),
		"low memory":     strings.Join([]string{"", parts[1], parts[2], "m=1024,t=1,p=1", parts[4], parts[5]}, "$"),
		"unknown param":  strings.Join([]string{"", parts[1], parts[2], "m=8192,t=1,x=1", parts[4], parts[5]}, "$"),
		"duplicate m":    strings.Join([]string{"", parts[1], parts[2], "m=8192,m=8192,t=1", parts[4], parts[5]}, "$"),
		"short salt":     strings.Join([]string{"", parts[1], parts[2], parts[3], "c2FsdA", parts[5]}, "$"),
		"bad key base64": strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], "!!!"}, "$"),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			if err := h.Compare("valid-password", encoded); !errors.Is(err, ErrInvalidHash) {
				t.Fatalf("expected ErrInvalidHash, got %v", err)
			}
		})
	}
}

func TestNewHasherValidatesConfig(t *testing.T) {
	mutate := map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
		"min length":  func(c *Config) { c.MinLength = -1 },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			cfg := fastConfig()
			fn(&cfg)
			if _, err := NewHasher(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}

	if _, err := NewHasher(DefaultConfig()); err != nil {
		t.Fatalf("DefaultConfig should validate: %v", err)
	}
}
