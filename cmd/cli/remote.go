package main

import (
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"mangashelf/internal/grpcserver"
)

var remoteFilters = newFilters()

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Browse through a running grpc-server",
	RunE: func(cmd *cobra.Command, args []string) error {
		actions, err := remoteFilters.actions()
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		locale, _ := cmd.Flags().GetString("locale")

		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx := cmd.Context()
		client := grpcserver.NewClient(conn)
		opened, err := client.OpenSession(ctx, locale)
		if err != nil {
			return err
		}
		defer func() { _ = client.CloseSession(ctx, opened.SessionID) }()

		for _, a := range actions {
			if _, err := client.Dispatch(ctx, opened.SessionID, a); err != nil {
				return err
			}
		}
		op, page := remoteFilters.pageOp()
		reply, err := client.Page(ctx, opened.SessionID, op, page)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), reply.View)
		}
		return printView(cmd.OutOrStdout(), reply.View)
	},
}

func init() {
	remoteFilters.register(remoteCmd)
	remoteCmd.Flags().String("addr", "localhost:9090", "grpc-server address")
	remoteCmd.Flags().String("locale", "", "collation locale for the session")
	remoteCmd.Flags().Bool("json", false, "print the page as JSON")
	rootCmd.AddCommand(remoteCmd)
}
