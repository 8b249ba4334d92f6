package llm

import "context"

type Turn struct {
	Role    string // "user" | "assistant"
	Content string
}

// LookupFunc is the capability callback a Provider may invoke at most once
// while generating, when the model decides it needs external data. The result
// string is fed back to the model verbatim.
type LookupFunc func(ctx context.Context, name string, args map[string]any) (string, error)

type Request struct {
	System   string
	History  []Turn
	UserText string

	// Lookup may be nil, in which case the provider must not advertise any
	// capability to the model.
	Lookup LookupFunc
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// SearchWelfareTool is the one capability the assistant exposes to the model.
const SearchWelfareTool = "search_welfare_services"
