package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// LimitValue is the raw result cap. JSON strings and numbers are both
// accepted; the value is parsed later so that a non-numeric cap yields an
// empty result instead of a 400.
type LimitValue string

// UnmarshalJSON accepts "5", 5 and null.
func (l *LimitValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*l = LimitValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("limit must be a string or a number: %w", err)
		}

		*l = LimitValue(n.String())
	}

	return nil
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Keyword      string     `json:"keyword"       validate:"max=1024"`
	Author       string     `json:"author"        validate:"max=256"`
	Strategy     string     `json:"strategy"      validate:"omitempty,strategy"`
	MatchCase    bool       `json:"match_case"`
	LimitEnabled bool       `json:"limit_enabled"`
	Limit        LimitValue `json:"limit"`
}

// ToRequest converts the body into a search.Request.
func (r *SearchRequest) ToRequest() (search.Request, error) {
	strategy, err := search.ParseStrategy(r.Strategy)
	if err != nil {
		return search.Request{}, err
	}

	return search.Request{
		Keyword:      r.Keyword,
		Author:       r.Author,
		Strategy:     strategy,
		MatchCase:    r.MatchCase,
		LimitEnabled: r.LimitEnabled,
		LimitValue:   string(r.Limit),
	}, nil
}

// QuotationResponse is a quotation as served by the API.
type QuotationResponse struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Source    string `json:"source,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Text      string `json:"text"`
}

// NewQuotationResponse converts a domain quotation.
func NewQuotationResponse(q *domain.Quotation) QuotationResponse {
	return QuotationResponse{
		ID:        q.ID,
		Author:    q.DisplayName(),
		FirstName: q.FirstName,
		LastName:  q.LastName,
		Bio:       q.Bio,
		Source:    q.Source,
		Topic:     q.Topic,
		Text:      q.Text,
	}
}

// NewQuotationResponses converts quotations, keeping their order.
func NewQuotationResponses(qs []*domain.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, NewQuotationResponse(q))
	}

	return out
}

// SearchResponse is the result of a search.
type SearchResponse struct {
	Items []QuotationResponse `json:"items"`
	Count int                 `json:"count"`

	// Limit is the cap in effect; omitted when capping is off.
	Limit *int `json:"limit,omitempty"`

	// Capped reports that the cap was reached.
	Capped bool `json:"capped"`
}

// NewSearchResponse converts a search result.
func NewSearchResponse(res search.Result) SearchResponse {
	resp := SearchResponse{
		Items:  NewQuotationResponses(res.Records),
		Count:  res.Len(),
		Capped: res.Capped,
	}

	if res.Limit >= 0 {
		limit := res.Limit
		resp.Limit = &limit
	}

	return resp
}

// SoundexQuery is bound from GET /api/v1/tools/soundex.
type SoundexQuery struct {
	Words []string `form:"word" json:"word" validate:"required,min=1,max=50,dive,notempty"`
}

// SoundexEntry is one word and its code.
type SoundexEntry struct {
	Word string `json:"word"`
	Code string `json:"code"`
}

// SoundexResponse lists codes in query order.
type SoundexResponse struct {
	Codes []SoundexEntry `json:"codes"`
}

// DistanceQuery is bound from GET /api/v1/tools/distance.
type DistanceQuery struct {
	A string `form:"a" json:"a" validate:"max=1024"`
	B string `form:"b" json:"b" validate:"max=1024"`
}

// DistanceResponse is the edit distance between A and B.
type DistanceResponse struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

// TextQuery is bound from GET /api/v1/tools/normalize.
type TextQuery struct {
	Text string `form:"text" json:"text" validate:"max=4096"`
}

// NormalizeResponse is the folded form of Text.
type NormalizeResponse struct {
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
}

// PhrasesQuery is bound from GET /api/v1/tools/phrases.
type PhrasesQuery struct {
	Query string `form:"q" json:"q" validate:"max=1024"`
}

// PhrasesResponse lists the phrases of Query in order.
type PhrasesResponse struct {
	Query   string   `json:"q"`
	Phrases []string `json:"phrases"`
}
