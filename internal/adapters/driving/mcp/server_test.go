package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil recall service returns error", func(t *testing.T) {
		ports := &Ports{Files: &mockFileService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRecallService)
	})

	t.Run("nil file service returns error", func(t *testing.T) {
		ports := &Ports{Recall: &mockRecallService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingFileService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Recall: &mockRecallService{},
			Files:  &mockFileService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("recall and files are required", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingRecallService)
		assert.ErrorIs(t, (&Ports{Recall: &mockRecallService{}}).Validate(), ErrMissingFileService)
	})

	t.Run("status is optional", func(t *testing.T) {
		ports := &Ports{
			Recall: &mockRecallService{},
			Files:  &mockFileService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Recall: &mockRecallService{},
			Files:  &mockFileService{},
			Status: &mockStatusService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
