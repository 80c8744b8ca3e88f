package board

import "sync"

// Form is the signup form's field values.
type Form struct {
	Activity string
	Email    string
}

// PageData is a point-in-time copy of what a Page shows.
type PageData struct {
	Cards       []Card
	LoadFailure string
	Options     []Option
	Form        Form
	// Loaded is false until the list area has rendered once.
	Loaded bool
}

// Page is an in-memory View. Concurrent renders are serialized and the
// last one wins.
type Page struct {
	mu   sync.Mutex
	data PageData
}

// NewPage returns a page whose selection control holds only the placeholder.
func NewPage() *Page {
	return &Page{data: PageData{
		Options: []Option{{Value: "", Label: SelectPlaceholder}},
	}}
}

func (p *Page) RenderCards(cards []Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Cards = append([]Card(nil), cards...)
	p.data.LoadFailure = ""
	p.data.Loaded = true
}

func (p *Page) RenderLoadFailure(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Cards = nil
	p.data.LoadFailure = text
	p.data.Loaded = true
}

func (p *Page) RenderOptions(options []Option) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Options = append([]Option(nil), options...)
}

func (p *Page) ResetForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Form = Form{}
}

// SetForm records the values the user submitted.
func (p *Page) SetForm(form Form) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Form = form
}

// Snapshot copies the current page state.
func (p *Page) Snapshot() PageData {
	p.mu.Lock()
	defer p.mu.Unlock()
	data := p.data
	data.Cards = append([]Card(nil), p.data.Cards...)
	data.Options = append([]Option(nil), p.data.Options...)
	return data
}
