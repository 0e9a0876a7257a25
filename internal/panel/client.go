package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/utils"
)

// API is the request/response contract the reconciler depends on.
type API interface {
	FetchDetails(ctx context.Context, serverID string) (domain.ServerDetails, error)
	FetchUsage(ctx context.Context, serverID string) (domain.ResourceUsage, error)
}

// Compile-time check that Client satisfies API.
var _ API = (*Client)(nil)

// Client talks to the client API of a Pterodactyl or Pelican panel.
// It holds no state besides connection settings; deadlines come from ctx.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the panel at baseURL authenticated with a
// client API key.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
	}
}

// ManageURL returns the panel page for a server under baseURL.
func ManageURL(baseURL, ref string) string {
	return strings.TrimRight(baseURL, "/") + "/server/" + url.PathEscape(ref)
}

// FetchDetails returns the name and limits of a server.
func (c *Client) FetchDetails(ctx context.Context, serverID string) (domain.ServerDetails, error) {
	var out detailsEnvelope
	if err := c.get(ctx, "details", serverID, "/api/client/servers/"+url.PathEscape(serverID), &out); err != nil {
		return domain.ServerDetails{}, err
	}
	return out.toDomain(serverID), nil
}

// FetchUsage returns the live state and resource usage of a server.
func (c *Client) FetchUsage(ctx context.Context, serverID string) (domain.ResourceUsage, error) {
	var out resourcesEnvelope
	if err := c.get(ctx, "resources", serverID, "/api/client/servers/"+url.PathEscape(serverID)+"/resources", &out); err != nil {
		return domain.ResourceUsage{}, err
	}
	return out.toDomain(), nil
}

// get issues one authenticated GET and decodes the JSON body into out.
// Every failure is returned as *Error.
func (c *Client) get(ctx context.Context, op, serverID, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return &Error{Kind: KindUnknown, Op: op, ServerID: serverID, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: classifyTransport(err), Op: op, ServerID: serverID, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &Error{
			Kind:     classifyStatus(resp.StatusCode),
			Op:       op,
			ServerID: serverID,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		kind := classifyTransport(err)
		return &Error{Kind: kind, Op: op, ServerID: serverID, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
