package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dkeye/Office/internal/core"
	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List rooms on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		api, err := apiBase(cfg.ServerURL)
		if err != nil {
			return err
		}
		rooms, err := listRooms(cmd.Context(), api)
		if err != nil {
			return err
		}
		renderRooms(cmd.OutOrStdout(), rooms)
		return nil
	},
}

var createRoomCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		api, err := apiBase(cfg.ServerURL)
		if err != nil {
			return err
		}
		room, err := createRoom(cmd.Context(), api, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s room %s created\n", successStyle.Render("ok"), room.ID)
		return nil
	},
}

func init() {
	roomsCmd.AddCommand(createRoomCmd)
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// apiBase derives the http base url from the signal websocket url.
func apiBase(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("bad server url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("bad server url scheme %q", u.Scheme)
	}
	u.Path, u.RawQuery = "/api", ""
	return u.String(), nil
}

func listRooms(ctx context.Context, api string) ([]core.RoomInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api+"/rooms", nil)
	if err != nil {
		return nil, err
	}
	var rooms []core.RoomInfo
	if err := doJSON(req, http.StatusOK, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

type createdRoom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func createRoom(ctx context.Context, api, name string) (createdRoom, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return createdRoom{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api+"/rooms", bytes.NewReader(body))
	if err != nil {
		return createdRoom{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out createdRoom
	err = doJSON(req, http.StatusCreated, &out)
	return out, err
}

func doJSON(req *http.Request, want int, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return fmt.Errorf("server: %s", e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
