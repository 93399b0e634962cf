package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

const accessEndpoint = "/consulta_acesso/"

// QueryAccess fetches the server-side access log for a credential code.
func (c *Client) QueryAccess(ctx context.Context, code string) ([]domain.AccessRecord, error) {
	q := url.Values{}
	q.Set("codigo", code)
	q.Set("modo", "json")

	body, err := c.get(ctx, c.Station().BaseURL+accessEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var rows []accessRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode access log: %w", err)
	}

	records := make([]domain.AccessRecord, len(rows))
	for i, r := range rows {
		records[i] = domain.AccessRecord{
			Granted:     r.Realizado == "S",
			Description: r.Descricao,
			At:          r.DataHora,
			Reader:      r.Leitor,
			Sector:      r.Setor,
		}
	}
	return records, nil
}

type accessRow struct {
	Realizado string `json:"realizado"`
	Descricao string `json:"descricao"`
	DataHora  string `json:"data_hora"`
	Leitor    string `json:"leitor"`
	Setor     string `json:"setor"`
}
