package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Chat: &mockChatService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("chat only is valid", func(t *testing.T) {
		ports := &Ports{
			Chat: &mockChatService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Chat:     &mockChatService{},
			Index:    &mockIndexService{},
			Document: &mockDocumentService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_ClientSeesToolsAndResources(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{Chat: &mockChatService{}, Index: &mockIndexService{}})
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "ward-assistant", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"ask", "search"}, names)

	resources, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	uris := make([]string, 0, len(resources.Resources))
	for _, r := range resources.Resources {
		uris = append(uris, r.URI)
	}
	assert.Contains(t, uris, StatsURI)
	assert.Contains(t, uris, CollectionsURI)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Chat: &mockChatService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestServer_RunHTTPBadAddr(t *testing.T) {
	server, err := NewServer(&Ports{Chat: &mockChatService{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "256.0.0.1:bad")

	assert.ErrorContains(t, err, "listen on 256.0.0.1:bad")
}

func TestInstructions_NameTools(t *testing.T) {
	assert.Contains(t, Instructions, `"ask"`)
	assert.Contains(t, Instructions, `"search"`)
}
