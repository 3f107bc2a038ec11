package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cost-reconciler/pkg/logger"
)

func TestNew_JSONEnProduccion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})

	log.Info().Str("product_code", "KKKBG002BLK").Msg("investigación iniciada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "KKKBG002BLK", line["product_code"])
	assert.Equal(t, "investigación iniciada", line["message"])
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("nada") })
}
