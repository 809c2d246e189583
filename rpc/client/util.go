package client

import (
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

var (
	// ErrProtocol marks every response that does not have the expected shape.
	// The client and the server are out of step once this is returned.
	ErrProtocol = errors.New("protocol violation")

	// ErrServer marks an ERROR message received from the server
	ErrServer = errors.New("server error")

	// ErrInvalidKey is returned for keys that cannot be encoded (empty or containing NUL)
	ErrInvalidKey = errors.New("invalid key")
)

// protocolErrorf returns an error marked with ErrProtocol
func protocolErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrProtocol, format, args...)
}

// serverError converts an ERROR frame into an error marked with ErrServer
func serverError(op string, f common.Frame) error {
	return errors.Wrapf(ErrServer, "%s: %q", op, f.Payload)
}

// expectCode checks the code of a response frame.
// An ERROR frame is reported as ErrServer, any other unexpected code as ErrProtocol.
func expectCode(op string, f common.Frame, expected common.Code) error {
	if f.Code == expected {
		return nil
	}
	if f.Code == common.MsgError {
		return serverError(op, f)
	}
	return protocolErrorf("%s: unexpected message %s, expected %s", op, f, expected)
}

// checkKey validates a key before it is put on the wire
func checkKey(key string) error {
	if !common.ValidKey(key) {
		return errors.Wrapf(ErrInvalidKey, "%s", common.Abbrev([]byte(key), 32))
	}
	return nil
}
