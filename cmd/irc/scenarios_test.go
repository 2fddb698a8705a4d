package main

import (
	"io"
	"testing"

	"github.com/sunholo/irlang/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosAllPass(t *testing.T) {
	for _, s := range scenarios {
		s := s
		t.Run(s.id, func(t *testing.T) {
			mod := engine.Default().NewModule()
			log := newScenarioLogger(io.Discard)
			result, err := s.run(mod, log)
			require.NoError(t, err)
			assert.NotEmpty(t, result)
		})
	}
}

func TestSelectScenariosFiltersByID(t *testing.T) {
	selected, err := selectScenarios([]string{"S6", "S1"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "S6", selected[0].id)
	assert.Equal(t, "S1", selected[1].id)
}

func TestSelectScenariosRejectsUnknownID(t *testing.T) {
	_, err := selectScenarios([]string{"S99"})
	assert.Error(t, err)
}

func TestSelectScenariosDefaultsToAll(t *testing.T) {
	selected, err := selectScenarios(nil)
	require.NoError(t, err)
	assert.Len(t, selected, len(scenarios))
}
