package application

import (
	"time"

	"github.com/samber/lo"

	"github.com/tableroapp/tablero/internal/domain/entity"
)

// NormalizedAuthor is the client-facing author record. The store-internal
// author id never appears here.
type NormalizedAuthor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NormalizedMessage is one display-ready message entry. Author holds the key
// of the corresponding entry in the view's author map.
type NormalizedMessage struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	DateTime time.Time `json:"dateTime"`
}

// NormalizedView is the grouped, deduplicated shape broadcast to clients as
// the "mensajes" payload. Result preserves the original retrieval order.
type NormalizedView struct {
	ID       string `json:"id"`
	Entities struct {
		Authors  map[string]NormalizedAuthor  `json:"authors"`
		Messages map[string]NormalizedMessage `json:"mensajes"`
	} `json:"entities"`
	Result []string `json:"result"`

	// Dropped counts malformed records excluded from the view. Callers log
	// it; clients never see it.
	Dropped int `json:"-"`
}

func authorKey(a entity.Author) string {
	if a.Email != "" {
		return a.Email
	}
	return a.Name
}

// Normalize transforms the raw stored message collection into the
// client-ready view: each record is decorated with a dateTime derived from
// its id's leading 8 hex characters, stripped of the internal author id and
// the store revision marker, then grouped by author. The function is pure
// and deterministic; calling it twice on the same input yields structurally
// identical views.
//
// Records with a missing or malformed id are dropped from the view and
// counted in Dropped; they never abort the batch.
func Normalize(raw []entity.Message) NormalizedView {
	view := NormalizedView{ID: "mensajes"}
	view.Entities.Authors = make(map[string]NormalizedAuthor)
	view.Entities.Messages = make(map[string]NormalizedMessage, len(raw))
	view.Result = make([]string, 0, len(raw))

	valid := lo.Filter(raw, func(m entity.Message, _ int) bool {
		_, err := entity.MessageTime(m.ID)
		return err == nil
	})
	view.Dropped = len(raw) - len(valid)

	for _, m := range valid {
		at, _ := entity.MessageTime(m.ID)
		key := authorKey(m.Author)
		if _, seen := view.Entities.Authors[key]; !seen {
			view.Entities.Authors[key] = NormalizedAuthor{Email: m.Author.Email, Name: m.Author.Name}
		}
		view.Entities.Messages[m.ID] = NormalizedMessage{
			ID:       m.ID,
			Author:   key,
			Text:     m.Text,
			DateTime: at,
		}
	}
	view.Result = lo.Map(valid, func(m entity.Message, _ int) string { return m.ID })
	return view
}
