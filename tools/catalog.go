package tools

import (
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/httpclient"
	"github.com/citadelhq/citadel-go/nepse"
	"github.com/citadelhq/citadel-go/paper"
	"github.com/citadelhq/citadel-go/store"
)

// Deps carries the shared clients the tool catalog is built against.
type Deps struct {
	HTTP   *httpclient.Client
	Nepse  *nepse.Client
	Store  *store.Store
	Ledger *paper.Ledger

	UserAgent       string
	AlphaVantageKey string

	Log zerolog.Logger
}

// Catalog returns every tool the assistant exposes to the model.
func Catalog(d Deps) []core.Tool {
	var out []core.Tool
	out = append(out, WebTools(d)...)
	out = append(out, MarketTools(d)...)
	out = append(out, NepseTools(d)...)
	out = append(out, CalcTools()...)
	out = append(out, SentimentTools()...)
	out = append(out, MemoryTools(d)...)
	out = append(out, PaperTools(d)...)
	return out
}
