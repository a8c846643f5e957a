package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	original := log
	defer func() { log = original }()

	t.Run("production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})
}

func TestL_LazyInit(t *testing.T) {
	original := log
	defer func() { log = original }()

	log = nil
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, log)
}

func TestComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	Component(zap.New(core), "claim_arbiter").Info("claimed")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "claim_arbiter", entries[0].ContextMap()["component"])
	}

	assert.NotPanics(t, func() { Component(nil, "x").Info("dropped") })
}
