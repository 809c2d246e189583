package kv

import (
	"github.com/ValentinKolb/infostress/cmd/util"
	"github.com/ValentinKolb/infostress/rpc/client"
	"github.com/spf13/cobra"
)

var (
	infoClient *client.InfoClient

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform single operations on an infod server",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(allCmd)
	KeyValueCommands.AddCommand(helloCmd)
	KeyValueCommands.AddCommand(subCmd)
	KeyValueCommands.AddCommand(pingCmd)
}

// setupKVClient binds the flags, initializes logging and connects the client
func setupKVClient(cmd *cobra.Command, args []string) error {
	if err := util.PrepareCommand(cmd, args); err != nil {
		return err
	}

	var err error
	infoClient, err = util.NewClient()
	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if infoClient == nil {
		return nil
	}
	return infoClient.Close()
}
