package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/infostress/lib/infodtest"
	"github.com/ValentinKolb/infostress/lib/stress"
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/ValentinKolb/infostress/rpc/transport"
	"github.com/ValentinKolb/infostress/rpc/transport/tcp"
	"github.com/ValentinKolb/infostress/rpc/transport/unix"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// testTransports maps a transport name to its server and client factory
var testTransports = map[string]struct {
	start     func() (*infodtest.Server, error)
	transport func() transport.IFrameTransport
}{
	"unix": {infodtest.StartUnix, unix.NewUnixClientTransport},
	"tcp":  {infodtest.StartTCP, tcp.NewTCPClientTransport},
}

// forEachTransport runs fn against a fresh server and connected client per transport
func forEachTransport(t *testing.T, fn func(t *testing.T, server *infodtest.Server, c *InfoClient)) {
	for name, tt := range testTransports {
		t.Run(name, func(t *testing.T) {
			server, err := tt.start()
			require.NoError(t, err)
			defer server.Close()

			config := common.ClientConfig{
				TimeoutSecond: 5,
				Transport:     common.ClientTransportConfig{Endpoint: server.Endpoint()},
			}
			config.Transport.TCPNoDelay = true

			c, err := NewInfoClient(config, tt.transport())
			require.NoError(t, err)
			defer c.Close()

			fn(t, server, c)
		})
	}
}

func TestWriteRead(t *testing.T) {
	forEachTransport(t, func(t *testing.T, _ *infodtest.Server, c *InfoClient) {
		require.NoError(t, c.Write("foo", []byte("bar")))
		require.NoError(t, c.Ping())

		value, ok, err := c.Read("foo")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("bar"), value)

		// never written
		value, ok, err = c.Read("missing")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, value)
	})
}

func TestCorpusRoundTrip(t *testing.T) {
	corpus := stress.DefaultCorpus()
	forEachTransport(t, func(t *testing.T, _ *infodtest.Server, c *InfoClient) {
		for _, key := range corpus.Keys {
			for _, value := range corpus.Values {
				require.NoError(t, c.Write(key, value))
				got, ok, err := c.Read(key)
				require.NoError(t, err)
				require.True(t, ok)
				require.True(t, bytes.Equal(value, got), "key %d bytes, value %d bytes", len(key), len(value))
			}
		}
	})
}

func TestEmptyValueIsNotAbsent(t *testing.T) {
	forEachTransport(t, func(t *testing.T, _ *infodtest.Server, c *InfoClient) {
		require.NoError(t, c.Write("a", []byte("x")))
		require.NoError(t, c.Write("b", []byte("")))
		require.NoError(t, c.Delete("a"))
		require.NoError(t, c.Ping())

		entries, err := c.All()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "b", entries[0].Key)
		require.Empty(t, entries[0].Value)

		value, ok, err := c.Read("b")
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, value)

		_, ok, err = c.Read("a")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestDeleteMissingKey(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		require.NoError(t, c.Delete("never-written"))
		require.NoError(t, c.Delete("never-written"))
		require.NoError(t, c.Ping())
		require.Equal(t, 0, server.Len())
	})
}

func TestFrameBoundarySizes(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		key := strings.Repeat("K", 30000)
		value := bytes.Repeat([]byte("V"), 65534-30000)

		require.NoError(t, c.Write(key, value))
		require.NoError(t, c.Write("a", value))
		require.NoError(t, c.Ping())

		got, ok, err := c.Read(key)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, bytes.Equal(value, got), "largest value came back with %d bytes", len(got))

		entries, err := c.All()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, kv := range entries {
			require.Equal(t, len(value), len(kv.Value))
		}

		// one byte more does not fit into a frame
		err = c.Write(key, append(value, 'V'))
		require.ErrorIs(t, err, transport.ErrPayloadTooLarge)
	})
}

func TestAllReturnsEveryKeyOnce(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		expected := map[string][]byte{}
		for i, k := range []string{"a", "b", "aa", "foo", "bar", "999999999"} {
			v := bytes.Repeat([]byte("x"), i)
			expected[k] = v
			require.NoError(t, c.Write(k, v))
		}
		require.NoError(t, c.Ping())

		entries, err := c.All()
		require.NoError(t, err)
		require.Len(t, entries, len(expected))

		seen := map[string]bool{}
		for _, kv := range entries {
			require.False(t, seen[kv.Key], "key %s reported twice", kv.Key)
			seen[kv.Key] = true
			require.Equal(t, len(expected[kv.Key]), len(kv.Value))
		}

		// the client stays in step after a snapshot
		require.NoError(t, c.Ping())
		value, ok, err := c.Read("foo")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, expected["foo"], value)
	})
}

func TestAllOnEmptyStore(t *testing.T) {
	forEachTransport(t, func(t *testing.T, _ *infodtest.Server, c *InfoClient) {
		entries, err := c.All()
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestHello(t *testing.T) {
	forEachTransport(t, func(t *testing.T, _ *infodtest.Server, c *InfoClient) {
		version, err := c.Hello()
		require.NoError(t, err)
		require.Equal(t, infodtest.Version, version)
	})
}

func TestServerError(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		server.SetFaults(infodtest.Faults{
			Reject: func(code common.Code) bool { return code == common.CmdPing },
		})

		err := c.Ping()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrServer), "expected ErrServer, got %v", err)
		require.False(t, errors.Is(err, ErrProtocol))
	})
}

func TestInvalidKey(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		require.ErrorIs(t, c.Write("a\x00b", []byte("x")), ErrInvalidKey)
		require.ErrorIs(t, c.Delete(""), ErrInvalidKey)
		_, _, err := c.Read("")
		require.ErrorIs(t, err, ErrInvalidKey)

		// nothing was sent
		require.NoError(t, c.Ping())
		require.Equal(t, 0, server.Len())
	})
}

func TestExpectCode(t *testing.T) {
	require.NoError(t, expectCode("ping", common.NewFrame(common.MsgPong, nil), common.MsgPong))

	err := expectCode("ping", common.NewFrame(common.MsgError, []byte("bad message")), common.MsgPong)
	require.True(t, errors.Is(err, ErrServer))
	require.Contains(t, err.Error(), "bad message")

	err = expectCode("ping", common.NewFrame(common.MsgInfo, []byte("a")), common.MsgPong)
	require.True(t, errors.Is(err, ErrProtocol))
}

func TestSubscribe(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, watcher *InfoClient) {
		server.Put("foo1", []byte("x"))
		server.Put("bar", []byte("y"))

		writerTransport := unix.NewUnixClientTransport()
		if server.Network() == "tcp" {
			writerTransport = tcp.NewTCPClientTransport()
		}
		writer, err := NewInfoClient(common.ClientConfig{
			TimeoutSecond: 5,
			Transport:     common.ClientTransportConfig{Endpoint: server.Endpoint()},
		}, writerTransport)
		require.NoError(t, err)
		defer writer.Close()

		type event struct {
			key   string
			value string
			ok    bool
		}
		errStop := errors.New("stop")
		var events []event
		subscribed := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- watcher.Subscribe("foo*", func(key string, value []byte, ok bool) error {
				events = append(events, event{key, string(value), ok})
				if len(events) == 1 {
					close(subscribed)
				}
				if len(events) == 3 {
					return errStop
				}
				return nil
			})
		}()

		<-subscribed
		require.NoError(t, writer.Write("foo2", []byte("z")))
		require.NoError(t, writer.Write("bar", []byte("ignored")))
		require.NoError(t, writer.Delete("foo1"))
		require.NoError(t, writer.Ping())

		require.ErrorIs(t, <-done, errStop)
		require.Equal(t, []event{
			{"foo1", "x", true},
			{"foo2", "z", true},
			{"foo1", "", false},
		}, events)
	})
}

func TestSubscribeRejected(t *testing.T) {
	forEachTransport(t, func(t *testing.T, server *infodtest.Server, c *InfoClient) {
		server.SetFaults(infodtest.Faults{
			Reject: func(code common.Code) bool { return code == common.CmdSub },
		})
		err := c.Subscribe("*", func(string, []byte, bool) error { return nil })
		require.True(t, errors.Is(err, ErrServer), "expected ErrServer, got %v", err)

		require.ErrorIs(t, c.Subscribe("", nil), ErrInvalidKey)
	})
}
