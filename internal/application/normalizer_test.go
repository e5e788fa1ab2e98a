package application

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tableroapp/tablero/internal/domain/entity"
)

func sampleMessages() []entity.Message {
	return []entity.Message{
		{
			ID:       "5f3759df0000000000000001",
			Author:   entity.Author{InternalID: "x", Email: "al@example.com", Name: "Al"},
			Text:     "hi",
			Revision: 3,
		},
		{
			ID:     "5f3759e00000000000000002",
			Author: entity.Author{InternalID: "y", Email: "bea@example.com", Name: "Bea"},
			Text:   "hola",
		},
		{
			ID:     "5f3759e10000000000000003",
			Author: entity.Author{InternalID: "x", Email: "al@example.com", Name: "Al"},
			Text:   "again",
		},
	}
}

func TestNormalizeStripsInternalFields(t *testing.T) {
	req := require.New(t)

	view := Normalize(sampleMessages())

	raw, err := json.Marshal(view)
	req.NoError(err)
	req.False(strings.Contains(string(raw), `"_id"`), "internal author id leaked: %s", raw)
	req.False(strings.Contains(string(raw), `"__v"`), "store revision leaked: %s", raw)
	req.False(strings.Contains(string(raw), "Dropped"))
}

func TestNormalizeDerivesDateTimeFromID(t *testing.T) {
	req := require.New(t)

	view := Normalize(sampleMessages())

	entry, ok := view.Entities.Messages["5f3759df0000000000000001"]
	req.True(ok)
	req.Equal(time.Unix(0x5f3759df, 0).UTC(), entry.DateTime)
}

func TestNormalizeGroupsByAuthor(t *testing.T) {
	req := require.New(t)

	view := Normalize(sampleMessages())

	req.Len(view.Entities.Authors, 2)
	req.Equal("Al", view.Entities.Authors["al@example.com"].Name)
	req.Equal("al@example.com", view.Entities.Messages["5f3759e10000000000000003"].Author)
}

func TestNormalizePreservesRetrievalOrder(t *testing.T) {
	req := require.New(t)

	view := Normalize(sampleMessages())

	req.Equal([]string{
		"5f3759df0000000000000001",
		"5f3759e00000000000000002",
		"5f3759e10000000000000003",
	}, view.Result)
}

func TestNormalizeEmptyCollection(t *testing.T) {
	req := require.New(t)

	view := Normalize(nil)

	req.Equal("mensajes", view.ID)
	req.Empty(view.Result)
	req.Empty(view.Entities.Messages)
	req.Zero(view.Dropped)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	req := require.New(t)
	msgs := sampleMessages()

	first := Normalize(msgs)
	second := Normalize(msgs)

	req.Equal(first, second)
}

func TestNormalizeDropsMalformedRecords(t *testing.T) {
	req := require.New(t)
	msgs := append(sampleMessages(),
		entity.Message{ID: "", Text: "no id"},
		entity.Message{ID: "abc", Text: "short id"},
	)

	view := Normalize(msgs)

	req.Equal(2, view.Dropped)
	req.Len(view.Result, 3)
}
