// Package browsertest provides an in-memory browser.Page for tests.
// Elements are registered under the exact selector strings the code queries.
package browsertest

import (
	"context"
	"strings"

	"github.com/jonathan/apply-agent/internal/browser"
)

// Page is a scripted browser.Page
type Page struct {
	CurrentURL  string
	Document    string
	Height      int
	Elements    map[string][]*Element
	Navigations []string
	Scripts     []string
	Scrolls     []int

	// OnNavigate, when set, runs after CurrentURL is updated
	OnNavigate func(url string)
	// Errors makes Find and FindAll fail for a selector
	Errors map[string]error
}

var _ browser.Page = (*Page)(nil)

// NewPage creates an empty page at url
func NewPage(url string) *Page {
	return &Page{CurrentURL: url, Elements: make(map[string][]*Element)}
}

// Add registers elements under selector and returns the page
func (p *Page) Add(selector string, els ...*Element) *Page {
	p.Elements[selector] = append(p.Elements[selector], els...)
	return p
}

// Remove drops everything registered under selector
func (p *Page) Remove(selector string) {
	delete(p.Elements, selector)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Navigations = append(p.Navigations, url)
	p.CurrentURL = url
	if p.OnNavigate != nil {
		p.OnNavigate(url)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	return p.CurrentURL, ctx.Err()
}

func (p *Page) Find(ctx context.Context, selector string) (browser.Element, error) {
	if err := p.Errors[selector]; err != nil {
		return nil, err
	}
	return first(ctx, p.Elements[selector])
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := p.Errors[selector]; err != nil {
		return nil, err
	}
	return all(ctx, p.Elements[selector])
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.Document, ctx.Err()
}

func (p *Page) Eval(ctx context.Context, script string) error {
	p.Scripts = append(p.Scripts, script)
	return ctx.Err()
}

func (p *Page) ScrollTo(ctx context.Context, y int) error {
	p.Scrolls = append(p.Scrolls, y)
	return ctx.Err()
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	return p.Height, ctx.Err()
}

// Element is a scripted browser.Element
type Element struct {
	Label      string // Rendered text
	Attrs      map[string]string
	Children   map[string][]*Element
	ParentElem *Element
	Hidden     bool
	Disabled   bool

	// Select state
	OptionTexts  []string
	SelectedText string

	// Recorded interactions
	Clicks   int
	Cleared  int
	Keys     []string
	Files    []string
	Scripts  []string
	Scrolled int

	// OnClick, when set, runs after each click
	OnClick func()
}

var _ browser.Element = (*Element)(nil)

// NewElement creates a visible, enabled element with the given text
func NewElement(text string) *Element {
	return &Element{Label: text, Attrs: make(map[string]string), Children: make(map[string][]*Element)}
}

// Attr sets an attribute and returns the element
func (e *Element) Attr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// Add registers children under selector, sets their parent, and returns e
func (e *Element) Add(selector string, children ...*Element) *Element {
	for _, c := range children {
		if c.ParentElem == nil {
			c.ParentElem = e
		}
	}
	e.Children[selector] = append(e.Children[selector], children...)
	return e
}

// Select configures the element as a select with options and a current selection
func (e *Element) Select(selected string, options ...string) *Element {
	e.OptionTexts = options
	e.SelectedText = selected
	return e
}

// Typed returns every key sequence sent to the element joined together
func (e *Element) Typed() string {
	return strings.Join(e.Keys, "")
}

func (e *Element) Find(ctx context.Context, selector string) (browser.Element, error) {
	return first(ctx, e.Children[selector])
}

func (e *Element) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	return all(ctx, e.Children[selector])
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.Label, ctx.Err()
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.Attrs[name], ctx.Err()
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Clear(ctx context.Context) error {
	e.Cleared++
	e.Keys = nil
	return ctx.Err()
}

func (e *Element) SendKeys(ctx context.Context, keys string) error {
	e.Keys = append(e.Keys, keys)
	return ctx.Err()
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	e.Scrolled++
	return ctx.Err()
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	return !e.Hidden, ctx.Err()
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	return !e.Disabled, ctx.Err()
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	e.Files = append(e.Files, paths...)
	return ctx.Err()
}

func (e *Element) Parent(ctx context.Context) (browser.Element, error) {
	if e.ParentElem == nil {
		return nil, browser.ErrNotFound
	}
	return e.ParentElem, ctx.Err()
}

func (e *Element) Options(ctx context.Context) ([]string, error) {
	return e.OptionTexts, ctx.Err()
}

func (e *Element) Selected(ctx context.Context) (string, error) {
	return e.SelectedText, ctx.Err()
}

func (e *Element) SelectOption(ctx context.Context, text string) error {
	for _, o := range e.OptionTexts {
		if o == text {
			e.SelectedText = text
			return ctx.Err()
		}
	}
	return browser.ErrNotFound
}

func (e *Element) Eval(ctx context.Context, function string) error {
	e.Scripts = append(e.Scripts, function)
	return ctx.Err()
}

func first(ctx context.Context, els []*Element) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, browser.ErrNotFound
	}
	return els[0], nil
}

func all(ctx context.Context, els []*Element) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}
