package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/manrura/internal/assistant"
	"github.com/terra-clan/manrura/internal/catalog"
	"github.com/terra-clan/manrura/internal/config"
)

func TestPrintCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	printCatalog(&buf, cat)

	out := buf.String()
	first := cat.Standards()[0]
	assert.True(t, strings.HasPrefix(out, first.ID+"  "+first.Title))
	assert.Contains(t, out, first.Elements[0].Points[0].ID)
	assert.Contains(t, out, "standards,")
}

func TestCatalogCommand_JSON(t *testing.T) {
	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"catalog", "--json"})

	require.NoError(t, cmd.Execute())
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "manrura dev\n", buf.String())
}

type stubModel struct{}

func (stubModel) Answer(context.Context, string, string) (string, error) {
	return "ok", nil
}

func TestAssistantModel(t *testing.T) {
	ctx := context.Background()
	failing := func(context.Context, string, string) (assistant.TextAssistant, error) {
		return nil, errors.New("dial failed")
	}
	working := func(context.Context, string, string) (assistant.TextAssistant, error) {
		return stubModel{}, nil
	}

	assert.Nil(t, assistantModel(ctx, config.AssistantConfig{}, working))
	assert.Equal(t, stubModel{}, assistantModel(ctx, config.AssistantConfig{APIKey: "k"}, working))

	model := assistantModel(ctx, config.AssistantConfig{APIKey: "k"}, failing)
	assert.Nil(t, model)

	cat, err := catalog.Default()
	require.NoError(t, err)
	svc, err := assistant.NewService(model, cat, time.Second, nil)
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.Equal(t, assistant.MsgDisabled, svc.Ask(ctx, "halo"))
}
