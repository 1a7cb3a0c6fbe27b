package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	domrec "github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/registry"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	"github.com/kailas-cloud/searchsync/internal/usecase/rebuild"
)

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

type typeResponse struct {
	Name            string   `json:"name"`
	IndexType       string   `json:"index_type"`
	TitleField      string   `json:"title_field"`
	AliasField      string   `json:"alias_field,omitempty"`
	ExtFields       []string `json:"ext_fields"`
	ScoreField      string   `json:"score_field"`
	ConditionFields []string `json:"condition_fields"`
}

type typeListResponse struct {
	Items []typeResponse `json:"items"`
}

type documentResponse struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Aliases []string       `json:"aliases"`
	Type    string         `json:"type"`
	Exts    map[string]any `json:"exts,omitempty"`
	Score   int64          `json:"score"`
}

type completeResponse struct {
	Items []documentResponse `json:"items"`
}

type rebuildResponse struct {
	Type       string  `json:"type"`
	Indexed    int     `json:"indexed"`
	Supported  bool    `json:"supported"`
	DurationMS float64 `json:"duration_ms"`
}

type rebuildStatusResponse struct {
	Type      string     `json:"type"`
	RebuiltAt *time.Time `json:"rebuilt_at"`
}

type recordResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

type recordRequest struct {
	Attributes map[string]any `json:"attributes"`
}

func typeToResponse(c registry.Config) typeResponse {
	return typeResponse{
		Name:            c.TypeName(),
		IndexType:       c.IndexType(),
		TitleField:      c.TitleField(),
		AliasField:      c.AliasField(),
		ExtFields:       c.ExtFields(),
		ScoreField:      c.ScoreField(),
		ConditionFields: c.ConditionFields(),
	}
}

func documentToResponse(d *domdoc.Document) documentResponse {
	aliases := d.Aliases()
	if aliases == nil {
		aliases = []string{}
	}
	return documentResponse{
		ID:      d.ID(),
		Title:   d.Title(),
		Aliases: aliases,
		Type:    d.Type(),
		Exts:    d.Exts(),
		Score:   d.Score(),
	}
}

func summaryToResponse(s rebuild.Summary) rebuildResponse {
	return rebuildResponse{
		Type:       s.Type,
		Indexed:    s.Indexed,
		Supported:  s.Supported,
		DurationMS: float64(s.Duration.Microseconds()) / 1000,
	}
}

func rowToResponse(r *domrec.Row) recordResponse {
	return recordResponse{
		ID:         r.RecordID(),
		Type:       r.TypeName(),
		Attributes: r.Values(),
	}
}
