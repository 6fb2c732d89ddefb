// Package browsertest provides an in-memory Playwright driver for testing
// code built on package browser without launching a real browser.
//
// Each fake embeds the corresponding playwright interface and implements
// only the methods package browser calls; anything else panics.
package browsertest

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/config"
)

// Stack is a complete fake driver tree. One Page is shared by every
// launch so tests can configure elements up front.
type Stack struct {
	Driver      *Driver
	BrowserType *BrowserType
	Browser     *Browser
	Context     *Context
	Tracing     *Tracing
	Page        *Page

	mu          sync.Mutex
	driverStart int
	FactoryErr  error
}

// NewStack builds a fake driver tree with an about:blank page.
func NewStack() *Stack {
	page := NewPage()
	tracing := &Tracing{}
	context := &Context{page: page, tracing: tracing}
	b := &Browser{context: context}
	bt := &BrowserType{browser: b}
	return &Stack{
		Driver:      &Driver{browserType: bt},
		BrowserType: bt,
		Browser:     b,
		Context:     context,
		Tracing:     tracing,
		Page:        page,
	}
}

// Factory returns a DriverFactory yielding the stack's driver.
func (s *Stack) Factory() browser.DriverFactory {
	return func() (browser.Driver, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.driverStart++
		if s.FactoryErr != nil {
			return nil, s.FactoryErr
		}
		return s.Driver, nil
	}
}

// DriverStarts reports how many times the factory was called.
func (s *Stack) DriverStarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driverStart
}

// Driver is a fake browser.Driver.
type Driver struct {
	browserType *BrowserType
	Stops       int
}

func (d *Driver) BrowserType(name config.BrowserName) (playwright.BrowserType, error) {
	return d.browserType, nil
}

func (d *Driver) Stop() error {
	d.Stops++
	return nil
}

// BrowserType records launch options.
type BrowserType struct {
	playwright.BrowserType
	browser   *Browser
	Launches  []playwright.BrowserTypeLaunchOptions
	LaunchErr error
}

func (b *BrowserType) Launch(options ...playwright.BrowserTypeLaunchOptions) (playwright.Browser, error) {
	if len(options) > 0 {
		b.Launches = append(b.Launches, options[0])
	}
	if b.LaunchErr != nil {
		return nil, b.LaunchErr
	}
	return b.browser, nil
}

// Browser is a fake playwright.Browser.
type Browser struct {
	playwright.Browser
	context *Context
	Closes  int
}

func (b *Browser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	return b.context, nil
}

func (b *Browser) Close(options ...playwright.BrowserCloseOptions) error {
	b.Closes++
	return nil
}

// Context is a fake playwright.BrowserContext.
type Context struct {
	playwright.BrowserContext
	page    *Page
	tracing *Tracing
	Closes  int
}

func (c *Context) NewPage() (playwright.Page, error) {
	return c.page, nil
}

func (c *Context) Tracing() playwright.Tracing {
	return c.tracing
}

func (c *Context) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.Closes++
	return nil
}

// Tracing records start and stop calls.
type Tracing struct {
	playwright.Tracing
	Starts    int
	StopPaths []string
}

func (t *Tracing) Start(options ...playwright.TracingStartOptions) error {
	t.Starts++
	return nil
}

func (t *Tracing) Stop(path ...string) error {
	t.StopPaths = append(t.StopPaths, path...)
	return nil
}

// Page is a fake playwright.Page holding a set of elements keyed by
// selector.
type Page struct {
	playwright.Page

	mu            sync.Mutex
	url           string
	elements      map[string]*Element
	dialogHandler func(playwright.Dialog)

	// NavigationErrors maps a URL to the error every Goto to it returns.
	NavigationErrors map[string]error

	// Visited lists every URL passed to Goto.
	Visited []string

	Closes        int
	Screenshots   int
	ScreenshotErr error
}

// NewPage returns an empty page at about:blank.
func NewPage() *Page {
	return &Page{
		url:              "about:blank",
		elements:         make(map[string]*Element),
		NavigationErrors: make(map[string]error),
	}
}

// Element returns the element for selector, creating a hidden, empty one
// if needed.
func (p *Page) Element(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.elements[selector]
	if !ok {
		e = &Element{page: p, Attributes: make(map[string]string)}
		p.elements[selector] = e
	}
	return e
}

// SetURL moves the page without recording a navigation.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// OpenDialog delivers a dialog to the registered listener and reports
// whether it was accepted.
func (p *Page) OpenDialog(kind, message string) bool {
	p.mu.Lock()
	handler := p.dialogHandler
	p.mu.Unlock()
	if handler == nil {
		return false
	}
	d := &Dialog{kind: kind, message: message}
	handler(d)
	return d.Accepted
}

func (p *Page) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visited = append(p.Visited, url)
	if err := p.NavigationErrors[url]; err != nil {
		return nil, err
	}
	p.url = url
	return nil, nil
}

func (p *Page) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return p.Element(selector)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) SetDefaultTimeout(timeout float64) {}

func (p *Page) SetDefaultNavigationTimeout(timeout float64) {}

func (p *Page) OnDialog(fn func(playwright.Dialog)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialogHandler = fn
}

func (p *Page) Close(options ...playwright.PageCloseOptions) error {
	p.Closes++
	return nil
}

func (p *Page) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	p.Screenshots++
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return []byte("\x89PNG"), nil
}

func (p *Page) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	return nil
}

func (p *Page) WaitForTimeout(timeout float64) {}

// pwLocator keeps the embedded field from shadowing Locator.Locator.
type pwLocator = playwright.Locator

var (
	_ playwright.BrowserType    = (*BrowserType)(nil)
	_ playwright.Browser        = (*Browser)(nil)
	_ playwright.BrowserContext = (*Context)(nil)
	_ playwright.Tracing        = (*Tracing)(nil)
	_ playwright.Page           = (*Page)(nil)
	_ playwright.Locator        = (*Element)(nil)
	_ playwright.Dialog         = (*Dialog)(nil)
)

// Element is a fake playwright.Locator with directly settable state.
type Element struct {
	pwLocator
	page *Page

	mu         sync.Mutex
	Visible    bool
	Text       string
	Value      string
	Attributes map[string]string
	Selected   []string
	Files      []string
	Keys       []string
	Clicks     int

	// FailErr fails every action on the element.
	FailErr error

	// OnClick runs after a successful click, e.g. to navigate.
	OnClick func()
}

// SetVisible changes visibility.
func (e *Element) SetVisible(v bool) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Visible = v
	return e
}

// SetText changes the text content and makes the element visible.
func (e *Element) SetText(text string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Text = text
	e.Visible = true
	return e
}

func (e *Element) Click(options ...playwright.LocatorClickOptions) error {
	e.mu.Lock()
	if e.FailErr != nil {
		e.mu.Unlock()
		return e.FailErr
	}
	e.Clicks++
	onClick := e.OnClick
	e.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *Element) Dblclick(options ...playwright.LocatorDblclickOptions) error {
	return e.Click()
}

func (e *Element) Fill(value string, options ...playwright.LocatorFillOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return e.FailErr
	}
	e.Value = value
	return nil
}

func (e *Element) Clear(options ...playwright.LocatorClearOptions) error {
	return e.Fill("")
}

func (e *Element) PressSequentially(text string, options ...playwright.LocatorPressSequentiallyOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return e.FailErr
	}
	e.Value += text
	return nil
}

func (e *Element) Press(key string, options ...playwright.LocatorPressOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return e.FailErr
	}
	e.Keys = append(e.Keys, key)
	return nil
}

func (e *Element) SelectOption(values playwright.SelectOptionValues, options ...playwright.LocatorSelectOptionOptions) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return nil, e.FailErr
	}
	if values.Values != nil {
		e.Selected = append(e.Selected, *values.Values...)
	}
	return e.Selected, nil
}

func (e *Element) SetInputFiles(files interface{}, options ...playwright.LocatorSetInputFilesOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return e.FailErr
	}
	switch f := files.(type) {
	case string:
		e.Files = append(e.Files, f)
	case []string:
		e.Files = append(e.Files, f...)
	default:
		return fmt.Errorf("unsupported files value %T", files)
	}
	return nil
}

func (e *Element) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Visible, nil
}

func (e *Element) TextContent(options ...playwright.LocatorTextContentOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return "", e.FailErr
	}
	return e.Text, nil
}

func (e *Element) GetAttribute(name string, options ...playwright.LocatorGetAttributeOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailErr != nil {
		return "", e.FailErr
	}
	return e.Attributes[name], nil
}

// WaitFor resolves immediately: it succeeds when the element is already
// in the requested state and otherwise fails with playwright.ErrTimeout.
func (e *Element) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(options) == 0 || options[0].State == nil {
		return nil
	}
	switch *options[0].State {
	case *playwright.WaitForSelectorStateVisible:
		if !e.Visible {
			return fmt.Errorf("%w: element not visible", playwright.ErrTimeout)
		}
	case *playwright.WaitForSelectorStateHidden:
		if e.Visible {
			return fmt.Errorf("%w: element still visible", playwright.ErrTimeout)
		}
	}
	return nil
}

// Dialog is a fake playwright.Dialog.
type Dialog struct {
	playwright.Dialog
	kind     string
	message  string
	Accepted bool
}

func (d *Dialog) Type() string {
	return d.kind
}

func (d *Dialog) Message() string {
	return d.message
}

func (d *Dialog) Accept(promptText ...string) error {
	d.Accepted = true
	return nil
}
