// Package client implements the infod protocol client used by the stress
// driver and the kv commands.
//
// The package focuses on:
//   - Encoding point operations (read, write, delete) into infod frames
//   - Strict validation of every response: a wrong code, a mismatched key or a
//     malformed payload is reported as ErrProtocol and never papered over
//   - The read-all choreography (BEGIN, SUB *, UNSUB *, PING, COMMIT) wrapped
//     into the single blocking call All
//
// Usage Example:
//
//	conf := common.ClientConfig{}
//	c, err := client.NewInfoClient(conf, unix.NewUnixClientTransport())
//	if err != nil {
//	  return err
//	}
//	defer c.Close()
//
//	c.Write("foo", []byte("bar"))
//	c.Ping() // wait until the write is applied
//	value, ok, err := c.Read("foo")
//	entries, err := c.All()
//
// Error Handling:
//
//	ErrProtocol, ErrServer and ErrInvalidKey are sentinel errors; use
//	errors.Is to test for them. Transport failures are returned wrapped.
//
// Thread Safety:
//
//	An InfoClient owns one connection and must be used from one goroutine.
package client
