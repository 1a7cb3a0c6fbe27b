package searchindex

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/codec"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
)

// jsonDoc is the stored shape of an index document. Conds holds the condition
// set keys written at save time, so later removals hit exactly those sets.
type jsonDoc struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Aliases         []string          `json:"aliases"`
	Type            string            `json:"type"`
	Exts            map[string]any    `json:"exts,omitempty"`
	ConditionFields []string          `json:"condition_fields,omitempty"`
	Score           int64             `json:"score"`
	Conds           map[string]string `json:"conds,omitempty"`
}

// storedDoc is a decoded hash entry.
type storedDoc struct {
	doc   domdoc.Document
	conds map[string]string
}

func encodeDoc(doc *domdoc.Document) ([]byte, error) {
	aliases := doc.Aliases()
	if aliases == nil {
		aliases = []string{}
	}
	data, err := json.Marshal(jsonDoc{
		ID:              doc.ID(),
		Title:           doc.Title(),
		Aliases:         aliases,
		Type:            doc.Type(),
		Exts:            doc.Exts(),
		ConditionFields: doc.ConditionFields(),
		Score:           doc.Score(),
		Conds:           doc.Conditions(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", doc.ID(), err)
	}
	return data, nil
}

func decodeDoc(data []byte) (storedDoc, error) {
	var d jsonDoc
	if err := codec.DecodeJSON(data, &d); err != nil {
		return storedDoc{}, fmt.Errorf("document: %w", err)
	}
	for k, v := range d.Exts {
		d.Exts[k] = codec.Numbers(v)
	}

	doc := domdoc.Reconstruct(d.ID, d.Title, d.Aliases, d.Type, d.Exts, d.ConditionFields, d.Score)
	conds := d.Conds
	if conds == nil {
		conds = doc.Conditions()
	}
	return storedDoc{doc: doc, conds: conds}, nil
}
