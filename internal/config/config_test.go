package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FE_TEST_STR", "  value ")
	t.Setenv("FE_TEST_INT", "7")
	t.Setenv("FE_TEST_BAD_INT", "-3")
	t.Setenv("FE_TEST_DUR", "1500ms")
	t.Setenv("FE_TEST_BAD_DUR", "soon")

	assert.Equal(t, "value", getEnv("FE_TEST_STR", "x"))
	assert.Equal(t, "x", getEnv("FE_TEST_UNSET", "x"))
	assert.Equal(t, 7, getEnvInt("FE_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("FE_TEST_BAD_INT", 1))
	assert.Equal(t, 1500*time.Millisecond, getEnvDuration("FE_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("FE_TEST_BAD_DUR", time.Second))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"text", "textarea"}, splitList(" text, ,textarea "))
	assert.Nil(t, splitList(""))
}

func TestDBConfig_DSN(t *testing.T) {
	c := &DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "forms", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=forms port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
