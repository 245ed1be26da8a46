package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://u:p@db/hosting")
		t.Setenv("DB_HOST", "ignored")
		assert.Equal(t, "postgres://u:p@db/hosting", FromEnv())
	})

	t.Run("built from parts", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_PORT", "")
		t.Setenv("DB_USER", "postgres")
		t.Setenv("DB_PASS", "secret")
		t.Setenv("DB_NAME", "hosting")
		t.Setenv("DB_SSLMODE", "")
		assert.Equal(t,
			"host=localhost port=5432 user=postgres password=secret dbname=hosting sslmode=disable",
			FromEnv())
	})

	t.Run("no host", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("DB_HOST", "")
		assert.Empty(t, FromEnv())
	})
}
