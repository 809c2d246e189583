package kv

import (
	"fmt"

	"github.com/ValentinKolb/infostress/cmd/util"
	"github.com/ValentinKolb/infostress/rpc/common"
	"github.com/spf13/cobra"
)

// maxPrint limits how many bytes of a value are printed
const maxPrint = 64

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := infoClient.Write(key, []byte(value)); err != nil {
				return err
			}
			// a ping makes sure the write was processed
			if err := infoClient.Ping(); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := infoClient.Read(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, size=%d, resp=%s\n", key, ok, len(resp), common.Abbrev(resp, maxPrint))
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := infoClient.Delete(key); err != nil {
				return err
			}
			if err := infoClient.Ping(); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	allCmd = &cobra.Command{
		Use:   "all",
		Short: "Lists all key value pairs of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := infoClient.All()
			if err != nil {
				return err
			}
			for _, kv := range entries {
				fmt.Printf("%s (%d) = %s (%d)\n",
					common.Abbrev([]byte(kv.Key), maxPrint), len(kv.Key),
					common.Abbrev(kv.Value, maxPrint), len(kv.Value))
			}
			fmt.Printf("%d keys\n", len(entries))
			return nil
		},
	}
	helloCmd = &cobra.Command{
		Use:   "hello",
		Short: "Prints the version string of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := infoClient.Hello()
			if err != nil {
				return err
			}
			fmt.Printf("server version: %s\n", version)
			return nil
		},
	}
	subCmd = &cobra.Command{
		Use:   "sub [pattern]",
		Short: "Prints the matching keys and every change to them until interrupted",
		Long: util.WrapString("Subscribes to all keys matching the pattern ('*' matches anything). " +
			"The current values are printed first, then every write and delete as it happens."),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return infoClient.Subscribe(args[0], func(key string, value []byte, ok bool) error {
				if !ok {
					fmt.Printf("%s deleted\n", common.Abbrev([]byte(key), maxPrint))
					return nil
				}
				fmt.Printf("%s = %s (%d)\n",
					common.Abbrev([]byte(key), maxPrint), common.Abbrev(value, maxPrint), len(value))
				return nil
			})
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := infoClient.Ping(); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}
)
