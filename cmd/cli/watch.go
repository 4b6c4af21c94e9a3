package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"mangashelf/internal/browse"
	"mangashelf/internal/live"
)

// viewEvent is live.Event with the view payload decoded.
type viewEvent struct {
	live.Event
	Data browse.View `json:"data"`
}

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Print view updates of an HTTP session as they happen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _ := cmd.Flags().GetString("api")
		target, err := wsURL(api, "/sessions/"+args[0]+"/ws")
		if err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), target, nil)
		if err != nil {
			return fmt.Errorf("connect %s: %w", target, err)
		}
		defer conn.Close()

		out := cmd.OutOrStdout()
		var last uint64
		for {
			var ev viewEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			}
			if ev.Type != "view" {
				fmt.Fprintf(out, "%s %s\n", ev.At.Format("15:04:05"), ev.Type)
				if ev.Type == "session.closed" {
					return nil
				}
				continue
			}
			v := ev.Data
			if v.Seq < last {
				continue
			}
			last = v.Seq
			fmt.Fprintf(out, "%s %s: %d titles, page %d of %d\n",
				ev.At.Format("15:04:05"), v.Status, v.Total, v.Page, v.TotalPages)
		}
	},
}

func init() {
	watchCmd.Flags().String("api", "http://localhost:8080", "api-server base URL")
	rootCmd.AddCommand(watchCmd)
}

func wsURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid api url scheme %q", u.Scheme)
	}
	u.Path += path
	return u.String(), nil
}
