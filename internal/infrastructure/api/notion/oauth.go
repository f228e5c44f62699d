// internal/infrastructure/api/notion/oauth.go
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// AuthorizeURL строит ссылку привязки Notion для пользователя.
// identity уходит в state и возвращается в callback.
func AuthorizeURL(authorizeBase, clientID, redirectURI, identity string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("response_type", "code")
	q.Set("owner", "user")
	q.Set("redirect_uri", redirectURI)
	q.Set("state", identity)
	return authorizeBase + "?" + q.Encode()
}

// ExchangeCode меняет OAuth код на access token пользователя
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	payload := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.redirectURI,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth/token", bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		if tr.Error != "" {
			return "", fmt.Errorf("notion oauth: %s", tr.Error)
		}
		return "", fmt.Errorf("notion oauth: статус %d", resp.StatusCode)
	}
	return tr.AccessToken, nil
}
