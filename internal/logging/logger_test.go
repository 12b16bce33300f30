package logging

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("chatty", false).GetLevel())

	_, ok := New("warn", true).Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "production logs are JSON")
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	app := fiber.New()
	app.Use(RequestLogger(logger))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	_, err := app.Test(httptest.NewRequest("GET", "/ok?x=1", nil))
	require.NoError(t, err)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "/ok?x=1", entry.Data["path"])
	assert.Equal(t, fiber.StatusOK, entry.Data["status"])

	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, fiber.StatusInternalServerError, entry.Data["status"])
}
