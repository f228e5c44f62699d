// internal/infrastructure/api/notion/types.go
package notion

// Типы полезной нагрузки Notion API. Покрыты только используемые
// ботом формы свойств: select, multi_select, number, title, formula.

type selectOption struct {
	Name string `json:"name"`
}

type formulaValue struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number,omitempty"`
	String *string  `json:"string,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

// propertyValue - одно свойство страницы в ответе API
type propertyValue struct {
	Type        string         `json:"type"`
	Number      *float64       `json:"number,omitempty"`
	Select      *selectOption  `json:"select,omitempty"`
	MultiSelect []selectOption `json:"multi_select,omitempty"`
	Formula     *formulaValue  `json:"formula,omitempty"`
	Title       []richText     `json:"title,omitempty"`
}

// page - страница Notion в ответе API
type page struct {
	ID         string                   `json:"id"`
	Properties map[string]propertyValue `json:"properties"`
}

// queryResponse - ответ на запрос выборки из базы
type queryResponse struct {
	Results []page `json:"results"`
}

// createPageResponse - ответ на создание страницы
type createPageResponse struct {
	ID string `json:"id"`
}

// searchResult - результат поиска базы журнала
type searchResult struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Parent struct {
		Type   string `json:"type"`
		PageID string `json:"page_id"`
	} `json:"parent"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// apiError - тело ошибки Notion API
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// tokenResponse - ответ обмена OAuth кода на токен
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}
