package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/config"
)

// The fakes embed the playwright interfaces and override only the methods
// the package calls. Calling anything else panics on the nil embedded value.

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf(format, v...))
}

func (c *callLog) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fakeDriver struct {
	log         *callLog
	browserType *fakeBrowserType
	typeErr     error
	requested   []config.BrowserName
	stops       int
	stopErr     error
}

func (d *fakeDriver) BrowserType(name config.BrowserName) (playwright.BrowserType, error) {
	d.requested = append(d.requested, name)
	if d.typeErr != nil {
		return nil, d.typeErr
	}
	return d.browserType, nil
}

func (d *fakeDriver) Stop() error {
	d.stops++
	d.log.add("driver.stop")
	return d.stopErr
}

type fakeBrowserType struct {
	playwright.BrowserType
	log       *callLog
	launchErr error
	launches  []playwright.BrowserTypeLaunchOptions
	browser   *fakeBrowser
}

func (b *fakeBrowserType) Launch(options ...playwright.BrowserTypeLaunchOptions) (playwright.Browser, error) {
	if len(options) > 0 {
		b.launches = append(b.launches, options[0])
	}
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	b.log.add("browser.launch")
	return b.browser, nil
}

type fakeBrowser struct {
	playwright.Browser
	log         *callLog
	contextErr  error
	contextOpts []playwright.BrowserNewContextOptions
	context     *fakeContext
	closes      int
	closeErr    error
}

func (b *fakeBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	if len(options) > 0 {
		b.contextOpts = append(b.contextOpts, options[0])
	}
	if b.contextErr != nil {
		return nil, b.contextErr
	}
	b.log.add("context.new")
	return b.context, nil
}

func (b *fakeBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.closes++
	b.log.add("browser.close")
	return b.closeErr
}

type fakeContext struct {
	playwright.BrowserContext
	log        *callLog
	page       *fakePage
	pageErr    error
	tracing    *fakeTracing
	closes     int
	closePanic bool
}

func (c *fakeContext) NewPage() (playwright.Page, error) {
	if c.pageErr != nil {
		return nil, c.pageErr
	}
	c.log.add("page.new")
	return c.page, nil
}

func (c *fakeContext) Tracing() playwright.Tracing {
	return c.tracing
}

func (c *fakeContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.closes++
	c.log.add("context.close")
	if c.closePanic {
		panic("context already gone")
	}
	return nil
}

type fakeTracing struct {
	playwright.Tracing
	startErr  error
	started   []playwright.TracingStartOptions
	stopPaths []string
}

func (t *fakeTracing) Start(options ...playwright.TracingStartOptions) error {
	if len(options) > 0 {
		t.started = append(t.started, options[0])
	}
	return t.startErr
}

func (t *fakeTracing) Stop(path ...string) error {
	t.stopPaths = append(t.stopPaths, path...)
	return nil
}

type fakePage struct {
	playwright.Page
	log *callLog

	mu             sync.Mutex
	url            string
	gotoErrs       []error
	gotoURLs       []string
	gotoOpts       []playwright.PageGotoOptions
	locators       map[string]*fakeLocator
	defaultTimeout float64
	navTimeout     float64
	dialogHandler  func(playwright.Dialog)
	closes         int
	closeErr       error
	screenshotErr  error
	screenshots    []playwright.PageScreenshotOptions
	loadStates     []string
	loadStateErr   error
	pauses         []float64
}

func newFakePage(log *callLog) *fakePage {
	return &fakePage{log: log, url: "about:blank", locators: make(map[string]*fakeLocator)}
}

func (p *fakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotoURLs = append(p.gotoURLs, url)
	if len(options) > 0 {
		p.gotoOpts = append(p.gotoOpts, options[0])
	}
	if len(p.gotoErrs) > 0 {
		err := p.gotoErrs[0]
		p.gotoErrs = p.gotoErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	p.url = url
	return nil, nil
}

func (p *fakePage) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return p.locator(selector)
}

func (p *fakePage) locator(selector string) *fakeLocator {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locators[selector]
	if !ok {
		l = &fakeLocator{attrs: make(map[string]string)}
		p.locators[selector] = l
	}
	return l
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) SetDefaultTimeout(timeout float64) {
	p.defaultTimeout = timeout
}

func (p *fakePage) SetDefaultNavigationTimeout(timeout float64) {
	p.navTimeout = timeout
}

func (p *fakePage) OnDialog(fn func(playwright.Dialog)) {
	p.dialogHandler = fn
}

func (p *fakePage) Close(options ...playwright.PageCloseOptions) error {
	p.closes++
	p.log.add("page.close")
	return p.closeErr
}

func (p *fakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	if len(options) > 0 {
		p.screenshots = append(p.screenshots, options[0])
	}
	if p.screenshotErr != nil {
		return nil, p.screenshotErr
	}
	return []byte("png"), nil
}

func (p *fakePage) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	if len(options) > 0 && options[0].State != nil {
		p.loadStates = append(p.loadStates, string(*options[0].State))
	}
	return p.loadStateErr
}

func (p *fakePage) WaitForTimeout(timeout float64) {
	p.pauses = append(p.pauses, timeout)
}

type pwLocator = playwright.Locator

var _ playwright.Locator = (*fakeLocator)(nil)

type fakeLocator struct {
	pwLocator

	mu         sync.Mutex
	actionErr  error
	clicks     []playwright.LocatorClickOptions
	dblclicks  int
	filled     []string
	clears     int
	typed      []string
	typeOpts   []playwright.LocatorPressSequentiallyOptions
	pressed    []string
	selected   []playwright.SelectOptionValues
	files      []interface{}
	visible    bool
	visibleErr error
	texts      []string
	textErr    error
	attrs      map[string]string
	attrErr    error
	waitErr    error
	waits      []playwright.LocatorWaitForOptions
	textCalls  int
	textOpts   []playwright.LocatorTextContentOptions
	// textStall makes TextContent block like a missing element: for the
	// option timeout when one is passed, otherwise for textStall.
	textStall time.Duration
}

func (l *fakeLocator) Click(options ...playwright.LocatorClickOptions) error {
	opts := playwright.LocatorClickOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	l.clicks = append(l.clicks, opts)
	return l.actionErr
}

func (l *fakeLocator) Dblclick(options ...playwright.LocatorDblclickOptions) error {
	l.dblclicks++
	return l.actionErr
}

func (l *fakeLocator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	if l.actionErr != nil {
		return l.actionErr
	}
	l.filled = append(l.filled, value)
	return nil
}

func (l *fakeLocator) Clear(options ...playwright.LocatorClearOptions) error {
	l.clears++
	return l.actionErr
}

func (l *fakeLocator) PressSequentially(text string, options ...playwright.LocatorPressSequentiallyOptions) error {
	l.typed = append(l.typed, text)
	if len(options) > 0 {
		l.typeOpts = append(l.typeOpts, options[0])
	}
	return l.actionErr
}

func (l *fakeLocator) Press(key string, options ...playwright.LocatorPressOptions) error {
	l.pressed = append(l.pressed, key)
	return l.actionErr
}

func (l *fakeLocator) SelectOption(values playwright.SelectOptionValues, options ...playwright.LocatorSelectOptionOptions) ([]string, error) {
	l.selected = append(l.selected, values)
	if l.actionErr != nil {
		return nil, l.actionErr
	}
	return *values.Values, nil
}

func (l *fakeLocator) SetInputFiles(files interface{}, options ...playwright.LocatorSetInputFilesOptions) error {
	l.files = append(l.files, files)
	return l.actionErr
}

func (l *fakeLocator) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.visibleErr != nil {
		return false, l.visibleErr
	}
	return l.visible, nil
}

func (l *fakeLocator) setVisible(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = v
}

// TextContent returns texts in order; the last entry repeats.
func (l *fakeLocator) TextContent(options ...playwright.LocatorTextContentOptions) (string, error) {
	l.mu.Lock()
	l.textCalls++
	opts := playwright.LocatorTextContentOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	l.textOpts = append(l.textOpts, opts)
	stall := l.textStall
	l.mu.Unlock()

	if stall > 0 {
		if opts.Timeout != nil {
			stall = time.Duration(*opts.Timeout * float64(time.Millisecond))
		}
		time.Sleep(stall)
		return "", fmt.Errorf("%w: waiting for locator", playwright.ErrTimeout)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.textErr != nil {
		return "", l.textErr
	}
	if len(l.texts) == 0 {
		return "", nil
	}
	text := l.texts[0]
	if len(l.texts) > 1 {
		l.texts = l.texts[1:]
	}
	return text, nil
}

func (l *fakeLocator) GetAttribute(name string, options ...playwright.LocatorGetAttributeOptions) (string, error) {
	if l.attrErr != nil {
		return "", l.attrErr
	}
	return l.attrs[name], nil
}

func (l *fakeLocator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	opts := playwright.LocatorWaitForOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	l.waits = append(l.waits, opts)
	if l.waitErr != nil {
		return l.waitErr
	}
	if opts.State == nil {
		return nil
	}
	switch *opts.State {
	case *playwright.WaitForSelectorStateVisible:
		if !l.visible {
			return timeoutErr("waiting for locator to be visible")
		}
	case *playwright.WaitForSelectorStateHidden:
		if l.visible {
			return timeoutErr("waiting for locator to be hidden")
		}
	}
	return nil
}

type fakeDialog struct {
	playwright.Dialog
	kind      string
	message   string
	accepted  int
	acceptErr error
}

func (d *fakeDialog) Type() string {
	return d.kind
}

func (d *fakeDialog) Message() string {
	return d.message
}

func (d *fakeDialog) Accept(promptText ...string) error {
	d.accepted++
	return d.acceptErr
}

// pageStub is a PageSource over a fixed page or error.
type pageStub struct {
	page  playwright.Page
	err   error
	calls int
}

func (s *pageStub) Page() (playwright.Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func timeoutErr(msg string) error {
	return fmt.Errorf("%w: %s", playwright.ErrTimeout, msg)
}

var errBoom = errors.New("boom")

// fakeStack wires a fake driver tree and counts driver acquisitions.
type fakeStack struct {
	log         *callLog
	driver      *fakeDriver
	browserType *fakeBrowserType
	browser     *fakeBrowser
	context     *fakeContext
	page        *fakePage
	tracing     *fakeTracing
	factoryErr  error
	factoryRuns int
}

func newFakeStack() *fakeStack {
	log := &callLog{}
	page := newFakePage(log)
	tracing := &fakeTracing{}
	context := &fakeContext{log: log, page: page, tracing: tracing}
	browser := &fakeBrowser{log: log, context: context}
	browserType := &fakeBrowserType{log: log, browser: browser}
	driver := &fakeDriver{log: log, browserType: browserType}
	return &fakeStack{
		log:         log,
		driver:      driver,
		browserType: browserType,
		browser:     browser,
		context:     context,
		page:        page,
		tracing:     tracing,
	}
}

func (s *fakeStack) factory() (Driver, error) {
	s.factoryRuns++
	if s.factoryErr != nil {
		return nil, s.factoryErr
	}
	return s.driver, nil
}
