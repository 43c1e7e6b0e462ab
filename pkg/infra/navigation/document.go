package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
)

var (
	_ platform.Navigator = (*Document)(nil)
	_ platform.Window    = (*Document)(nil)

	ErrEmptyHistory = errors.New("navigation history is empty")

	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)
)

type Options struct {
	Origin    string
	UserAgent string
	Referrer  string
	StartPath string
}

// Document is the in-process navigation context of one host session: the
// current URL, the referrer it was reached from, its history and the window
// signals. Listeners always run after the document lock is released.
type Document struct {
	mu        sync.RWMutex
	origin    string
	userAgent string
	referrer  string
	current   string
	history   []string

	visible bool
	focused bool

	nextID             int
	navigateListeners  map[int]func(string)
	visibilityHandlers map[int]func(bool)
	focusHandlers      map[int]func(bool)
	resizeHandlers     map[int]func(platform.Viewport)
}

func NewDocument(opts Options) (*Document, error) {
	origin, err := normalizeOrigin(opts.Origin)
	if err != nil {
		return nil, err
	}
	start := opts.StartPath
	if start == "" {
		start = "/"
	}
	current, err := resolve(origin, start)
	if err != nil {
		return nil, err
	}
	return &Document{
		origin:             origin,
		userAgent:          opts.UserAgent,
		referrer:           opts.Referrer,
		current:            current,
		visible:            true,
		focused:            true,
		navigateListeners:  make(map[int]func(string)),
		visibilityHandlers: make(map[int]func(bool)),
		focusHandlers:      make(map[int]func(bool)),
		resizeHandlers:     make(map[int]func(platform.Viewport)),
	}, nil
}

func (d *Document) CurrentURL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

func (d *Document) Referrer() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.referrer
}

func (d *Document) Origin() string {
	return d.origin
}

func (d *Document) UserAgent() string {
	return d.userAgent
}

// SetReferrer records the URL the document was reached from.
func (d *Document) SetReferrer(referrer string) {
	d.mu.Lock()
	d.referrer = referrer
	d.mu.Unlock()
}

// Navigate pushes a new history entry. Relative targets resolve against the
// origin; absolute targets are kept as given.
func (d *Document) Navigate(target string) error {
	next, err := resolve(d.origin, target)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.history = append(d.history, d.current)
	d.current = next
	listeners := sortedHandlers(d.navigateListeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// Back pops the previous history entry.
func (d *Document) Back() error {
	d.mu.Lock()
	if len(d.history) == 0 {
		d.mu.Unlock()
		return ErrEmptyHistory
	}
	prev := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	d.current = prev
	listeners := sortedHandlers(d.navigateListeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(prev)
	}
	return nil
}

func (d *Document) OnNavigate(fn func(url string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.register()
	d.navigateListeners[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.navigateListeners, id)
		d.mu.Unlock()
	}
}

func (d *Document) OnVisibilityChange(fn func(visible bool)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.register()
	d.visibilityHandlers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.visibilityHandlers, id)
		d.mu.Unlock()
	}
}

func (d *Document) OnFocusChange(fn func(focused bool)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.register()
	d.focusHandlers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.focusHandlers, id)
		d.mu.Unlock()
	}
}

func (d *Document) OnResize(fn func(v platform.Viewport)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.register()
	d.resizeHandlers[id] = fn
	return func() {
		d.mu.Lock()
		delete(d.resizeHandlers, id)
		d.mu.Unlock()
	}
}

// SetVisible notifies visibility listeners when the state changes.
func (d *Document) SetVisible(visible bool) {
	d.mu.Lock()
	if d.visible == visible {
		d.mu.Unlock()
		return
	}
	d.visible = visible
	handlers := sortedHandlers(d.visibilityHandlers)
	d.mu.Unlock()

	for _, fn := range handlers {
		fn(visible)
	}
}

// SetFocused notifies focus listeners when the state changes.
func (d *Document) SetFocused(focused bool) {
	d.mu.Lock()
	if d.focused == focused {
		d.mu.Unlock()
		return
	}
	d.focused = focused
	handlers := sortedHandlers(d.focusHandlers)
	d.mu.Unlock()

	for _, fn := range handlers {
		fn(focused)
	}
}

func (d *Document) Resize(v platform.Viewport) {
	d.mu.RLock()
	handlers := sortedHandlers(d.resizeHandlers)
	d.mu.RUnlock()

	for _, fn := range handlers {
		fn(v)
	}
}

func (d *Document) register() int {
	d.nextID++
	return d.nextID
}

func sortedHandlers[T any](handlers map[int]T) []T {
	ids := make([]int, 0, len(handlers))
	for id := range handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, handlers[id])
	}
	return out
}

func normalizeOrigin(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid origin %q: scheme and host are required", origin)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func resolve(origin, target string) (string, error) {
	switch {
	case target == "":
		return "", errors.New("navigation target is empty")
	case strings.HasPrefix(target, "//"):
		scheme := origin[:strings.Index(origin, ":")]
		return scheme + ":" + target, nil
	case strings.HasPrefix(target, "/"):
		return origin + target, nil
	case schemePattern.MatchString(target):
		// absolute targets, including non-http schemes, are kept verbatim
		return target, nil
	default:
		return origin + "/" + target, nil
	}
}
