package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Options configures the launched browser
type Options struct {
	Headless    bool
	UserDataDir string // Profile directory, reused across runs to keep the session
	Width       int
	Height      int
}

// Chrome drives a single tab of a locally launched Chrome.
// Element handles are runtime remote objects and become stale after navigation.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         *zap.Logger
}

var _ Page = (*Chrome)(nil)

// Launch starts Chrome and opens a tab. Close releases both.
func Launch(ctx context.Context, opts Options, log *zap.Logger) (*Chrome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1366, 900
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	// The browser outlives individual calls; ctx only bounds the launch
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Warnf),
	)

	c := &Chrome{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel, log: log}
	if err := c.run(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info("Browser launched", zap.Bool("headless", opts.Headless))
	return c, nil
}

// Close shuts down the tab and the browser process
func (c *Chrome) Close() {
	c.cancel()
	c.allocCancel()
}

// run executes actions on the tab, aborting when the caller's ctx ends
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the body
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// URL returns the current location
func (c *Chrome) URL(ctx context.Context) (string, error) {
	var url string
	err := c.run(ctx, chromedp.Location(&url))
	return url, err
}

// Find returns the first element matching selector
func (c *Chrome) Find(ctx context.Context, selector string) (Element, error) {
	var obj *runtime.RemoteObject
	if err := c.run(ctx, chromedp.Evaluate("document.querySelector("+jsString(selector)+")", &obj)); err != nil {
		return nil, err
	}
	return c.element(obj)
}

// FindAll returns every element matching selector
func (c *Chrome) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var obj *runtime.RemoteObject
	if err := c.run(ctx, chromedp.Evaluate("Array.from(document.querySelectorAll("+jsString(selector)+"))", &obj)); err != nil {
		return nil, err
	}
	return c.elements(ctx, obj)
}

// HTML returns the serialized document
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, chromedp.Evaluate("document.documentElement.outerHTML", &html))
	return html, err
}

// Eval runs script for its side effects
func (c *Chrome) Eval(ctx context.Context, script string) error {
	return c.run(ctx, chromedp.Evaluate(script, nil))
}

// ScrollTo scrolls the window to vertical offset y
func (c *Chrome) ScrollTo(ctx context.Context, y int) error {
	return c.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", y), nil))
}

// ScrollHeight returns the document scroll height
func (c *Chrome) ScrollHeight(ctx context.Context) (int, error) {
	var h int
	err := c.run(ctx, chromedp.Evaluate("document.body.scrollHeight", &h))
	return h, err
}

// element wraps obj, mapping null to ErrNotFound
func (c *Chrome) element(obj *runtime.RemoteObject) (Element, error) {
	if obj == nil || obj.ObjectID == "" {
		return nil, ErrNotFound
	}
	return &remoteElement{c: c, id: obj.ObjectID}, nil
}

// elements expands a remote array into element handles in index order
func (c *Chrome) elements(ctx context.Context, array *runtime.RemoteObject) ([]Element, error) {
	if array == nil || array.ObjectID == "" {
		return nil, nil
	}

	type indexed struct {
		index int
		id    runtime.RemoteObjectID
	}
	var items []indexed

	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		props, _, _, exp, err := runtime.GetProperties(array.ObjectID).WithOwnProperties(true).Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		for _, p := range props {
			i, err := strconv.Atoi(p.Name)
			if err != nil || p.Value == nil || p.Value.ObjectID == "" {
				continue
			}
			items = append(items, indexed{index: i, id: p.Value.ObjectID})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool { return items[a].index < items[b].index })
	out := make([]Element, len(items))
	for i, item := range items {
		out[i] = &remoteElement{c: c, id: item.id}
	}
	return out, nil
}

// remoteElement is an Element backed by a runtime object id
type remoteElement struct {
	c  *Chrome
	id runtime.RemoteObjectID
}

// call invokes function with this bound to the element
func (e *remoteElement) call(ctx context.Context, function string, res any, args ...any) error {
	return e.c.run(ctx, chromedp.CallFunctionOn(function, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(e.id)
	}, args...))
}

func (e *remoteElement) Find(ctx context.Context, selector string) (Element, error) {
	var obj *runtime.RemoteObject
	if err := e.call(ctx, `function(s) { return this.querySelector(s); }`, &obj, selector); err != nil {
		return nil, err
	}
	return e.c.element(obj)
}

func (e *remoteElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var obj *runtime.RemoteObject
	if err := e.call(ctx, `function(s) { return Array.from(this.querySelectorAll(s)); }`, &obj, selector); err != nil {
		return nil, err
	}
	return e.c.elements(ctx, obj)
}

func (e *remoteElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, `function() { return this.innerText || this.textContent || ""; }`, &text)
	return text, err
}

func (e *remoteElement) Attribute(ctx context.Context, name string) (string, error) {
	var value string
	err := e.call(ctx, `function(n) { const v = this.getAttribute(n); return v === null ? "" : v; }`, &value, name)
	return value, err
}

func (e *remoteElement) Click(ctx context.Context) error {
	return e.call(ctx, `function() { this.scrollIntoView({block: "center"}); this.click(); }`, nil)
}

func (e *remoteElement) Clear(ctx context.Context) error {
	return e.call(ctx, `function() {
		if (!("value" in this)) return;
		this.value = "";
		this.dispatchEvent(new Event("input", {bubbles: true}));
		this.dispatchEvent(new Event("change", {bubbles: true}));
	}`, nil)
}

func (e *remoteElement) SendKeys(ctx context.Context, keys string) error {
	return e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.Focus().WithObjectID(e.id).Do(ctx); err != nil {
			return err
		}
		return chromedp.KeyEvent(keys).Do(ctx)
	}))
}

func (e *remoteElement) ScrollIntoView(ctx context.Context) error {
	return e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithObjectID(e.id).Do(ctx)
	}))
}

func (e *remoteElement) Visible(ctx context.Context) (bool, error) {
	var visible bool
	err := e.call(ctx, `function() {
		const r = this.getBoundingClientRect();
		const s = window.getComputedStyle(this);
		return (r.width > 0 || r.height > 0) && s.visibility !== "hidden" && s.display !== "none";
	}`, &visible)
	return visible, err
}

func (e *remoteElement) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.call(ctx, `function() { return !this.disabled && this.getAttribute("aria-disabled") !== "true"; }`, &enabled)
	return enabled, err
}

func (e *remoteElement) SetFiles(ctx context.Context, paths ...string) error {
	return e.c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.SetFileInputFiles(paths).WithObjectID(e.id).Do(ctx)
	}))
}

func (e *remoteElement) Parent(ctx context.Context) (Element, error) {
	var obj *runtime.RemoteObject
	if err := e.call(ctx, `function() { return this.parentElement; }`, &obj); err != nil {
		return nil, err
	}
	return e.c.element(obj)
}

func (e *remoteElement) Options(ctx context.Context) ([]string, error) {
	var options []string
	err := e.call(ctx, `function() { return Array.from(this.options || []).map(o => o.text.trim()); }`, &options)
	return options, err
}

func (e *remoteElement) Selected(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, `function() {
		const o = this.options && this.options[this.selectedIndex];
		return o ? o.text.trim() : "";
	}`, &text)
	return text, err
}

func (e *remoteElement) SelectOption(ctx context.Context, text string) error {
	var ok bool
	err := e.call(ctx, `function(t) {
		const o = Array.from(this.options || []).find(o => o.text.trim() === t);
		if (!o) return false;
		this.value = o.value;
		o.selected = true;
		this.dispatchEvent(new Event("change", {bubbles: true}));
		return true;
	}`, &ok, text)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (e *remoteElement) Eval(ctx context.Context, function string) error {
	return e.call(ctx, "function() { "+function+" }", nil)
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
