// Package infodtest provides an in-memory server speaking the infod wire
// protocol, for use in tests, in the spirit of net/http/httptest.
//
// It implements the parts of infod the harness relies on: reads, writes and
// deletes, subscriptions with an initial INFO burst and change notifications,
// BEGIN/COMMIT buffering with nesting, PING/PONG echo, HELLO and ERROR
// replies for malformed commands. Faults can be injected to check that the
// stress driver detects a misbehaving store.
//
// Example:
//
//	srv, err := infodtest.StartUnix()
//	if err != nil {
//	  t.Fatal(err)
//	}
//	defer srv.Close()
//
//	conf := common.ClientConfig{Transport: common.ClientTransportConfig{Endpoint: srv.Endpoint()}}
//	c, err := client.NewInfoClient(conf, unix.NewUnixClientTransport())
package infodtest
