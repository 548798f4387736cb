package mqx

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSON(t *testing.T) {
	m := &Memory{}
	require.NoError(t, PublishJSON(context.Background(), m, KeyScheduleCreated, map[string]string{"meal_type": "Comida"}))
	require.NoError(t, PublishJSON(context.Background(), nil, KeyScheduleCreated, nil))

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{KeyScheduleCreated}, m.Keys())

	var ev struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Body, &ev))
	assert.Equal(t, KeyScheduleCreated, ev.Type)
	assert.Equal(t, "Comida", ev.Data["meal_type"])
}
