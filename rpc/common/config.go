package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds settings that only apply to the tcp transport
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig describes how to reach the infod server
type ClientTransportConfig struct {
	// Endpoint is the server address. An empty endpoint selects the
	// transport's default (the abstract INFOD socket or localhost:26931).
	Endpoint string
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of a client connection.
type ClientConfig struct {
	// TimeoutSecond bounds every send and receive. Zero blocks forever.
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	endpoint := c.Transport.Endpoint
	if endpoint == "" {
		endpoint = "(default)"
	}
	addField("Endpoint", endpoint)
	if c.TimeoutSecond > 0 {
		addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Timeout", "none")
	}

	addSection("Socket")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	return sb.String()
}
