// internal/infrastructure/api/notion/client.go
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/pkg/logger"
)

// Имена служебных свойств базы журнала
const (
	propTitle = "Name"
	propSeq   = "№"
	propScore = "Score"
	propClass = "Class"
	propRisk  = "Risk"
)

// Client - клиент Notion API. Токен передается в каждый вызов:
// у каждого пользователя свой привязанный workspace.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiVersion   string
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewClient создает клиента Notion
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      cfg.Notion.APIBaseURL,
		apiVersion:   cfg.Notion.APIVersion,
		clientID:     cfg.Notion.ClientID,
		clientSecret: cfg.Notion.ClientSecret,
		redirectURI:  cfg.Notion.RedirectURI,
	}
}

// CreatePage создает запись трейда и возвращает id страницы
func (c *Client) CreatePage(ctx context.Context, token, databaseID string, fields map[string]journal.FieldValue, seq int) (string, error) {
	properties := map[string]interface{}{
		propTitle: map[string]interface{}{
			"title": []richText{{Text: textContent{Content: pageTitle(fields, seq)}}},
		},
		propSeq: map[string]interface{}{"number": seq},
	}
	for field, fv := range fields {
		properties[field] = propertyPayload(fv)
	}

	payload := map[string]interface{}{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
	}

	var resp createPageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/pages", token, payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// MaxSequence возвращает наибольший номер записи в базе; 0 для пустой базы
func (c *Client) MaxSequence(ctx context.Context, token, databaseID string) (int, error) {
	payload := map[string]interface{}{
		"sorts":     []map[string]string{{"property": propSeq, "direction": "descending"}},
		"page_size": 1,
	}

	var resp queryResponse
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, token, payload, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, nil
	}
	if pv, ok := resp.Results[0].Properties[propSeq]; ok && pv.Number != nil {
		return int(*pv.Number), nil
	}
	return 0, nil
}

// ComputedFields возвращает досчитанные формулами поля страницы.
// Пока формулы не досчитаны, возвращается nil без ошибки.
func (c *Client) ComputedFields(ctx context.Context, token, pageID string) (*journal.ComputedFields, error) {
	var resp page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, token, nil, &resp); err != nil {
		return nil, err
	}

	cf := &journal.ComputedFields{}
	found := false
	if pv, ok := resp.Properties[propScore]; ok && pv.Formula != nil && pv.Formula.Number != nil {
		cf.Score = pv.Formula.Number
		found = true
	}
	if pv, ok := resp.Properties[propClass]; ok && pv.Formula != nil && pv.Formula.String != nil {
		cf.Class = *pv.Formula.String
		found = true
	}
	if pv, ok := resp.Properties[propRisk]; ok && pv.Formula != nil && pv.Formula.Number != nil {
		cf.SuggestedRisk = pv.Formula.Number
		found = true
	}
	if !found {
		return nil, nil
	}
	return cf, nil
}

// ListRecent возвращает последние записи базы, новые первыми
func (c *Client) ListRecent(ctx context.Context, token, databaseID string, limit int) ([]journal.RecordSummary, error) {
	payload := map[string]interface{}{
		"sorts":     []map[string]string{{"property": propSeq, "direction": "descending"}},
		"page_size": limit,
	}

	var resp queryResponse
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, token, payload, &resp); err != nil {
		return nil, err
	}

	summaries := make([]journal.RecordSummary, 0, len(resp.Results))
	for _, pg := range resp.Results {
		s := journal.RecordSummary{PageID: pg.ID}
		if pv, ok := pg.Properties[propSeq]; ok && pv.Number != nil {
			s.Seq = int(*pv.Number)
		}
		if pv, ok := pg.Properties["Pair"]; ok && pv.Select != nil {
			s.Pair = pv.Select.Name
		}
		if pv, ok := pg.Properties["RR"]; ok && pv.Number != nil {
			s.RR = fmt.Sprintf("%g", *pv.Number)
		}
		if pv, ok := pg.Properties[propScore]; ok && pv.Formula != nil {
			s.Score = pv.Formula.Number
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Discover ищет базу журнала, к которой пользователь дал доступ
func (c *Client) Discover(ctx context.Context, token string) (string, string, error) {
	payload := map[string]interface{}{
		"filter":    map[string]string{"value": "database", "property": "object"},
		"page_size": 1,
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", token, payload, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Results) == 0 {
		return "", "", fmt.Errorf("интеграции не открыта ни одна база")
	}
	db := resp.Results[0]
	return db.Parent.PageID, db.ID, nil
}

// do выполняет запрос к Notion API и разбирает ответ
func (c *Client) do(ctx context.Context, method, path, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Notion-Version", c.apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		raw, _ := io.ReadAll(resp.Body)
		if jerr := json.Unmarshal(raw, &apiErr); jerr == nil && apiErr.Message != "" {
			logger.Debug("Notion API %s %s: %s", method, path, apiErr.Message)
			return fmt.Errorf("notion api: %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("notion api: статус %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// propertyPayload переводит значение поля черновика в форму свойства Notion
func propertyPayload(fv journal.FieldValue) interface{} {
	switch fv.Kind {
	case journal.KindMulti:
		options := make([]selectOption, 0, len(fv.Set))
		for _, v := range fv.Set {
			options = append(options, selectOption{Name: v})
		}
		return map[string]interface{}{"multi_select": options}
	case journal.KindNumber:
		n, _ := fv.Number.Float64()
		return map[string]interface{}{"number": n}
	default:
		return map[string]interface{}{"select": selectOption{Name: fv.Option}}
	}
}

func pageTitle(fields map[string]journal.FieldValue, seq int) string {
	pair := ""
	if fv, ok := fields["Pair"]; ok {
		pair = fv.Option
	}
	return fmt.Sprintf("Trade #%d %s", seq, pair)
}
