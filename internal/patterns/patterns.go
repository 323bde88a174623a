// Package patterns holds user-defined filename patterns that take priority
// over built-in timestamp detection.
package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

var (
	ErrNotFound       = errors.New("pattern not found")
	ErrInvalidPattern = errors.New("invalid pattern")
)

// TypePrefix is prepended to the pattern name in Timestamp.Type.
const TypePrefix = "custom:"

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Pattern is a user-supplied regular expression that extracts a timestamp.
//
// Either Expr names its components with the groups year, month, day, hour,
// minute, second and ms, or Layout is set and Expr captures a single
// "stamp" group parsed with that Go time layout.
type Pattern struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Expr        string `json:"expr" yaml:"expr" toml:"expr"`
	Layout      string `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Priority    int    `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
}

var componentGroups = map[string]bool{
	"year": true, "month": true, "day": true,
	"hour": true, "minute": true, "second": true, "ms": true,
}

// compiled is a validated pattern ready for matching.
type compiled struct {
	Pattern
	re       *regexp.Regexp
	groups   map[string]int
	datePart timestamp.Precision
	timePart timestamp.Precision
}

func invalid(name, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidPattern, name, fmt.Sprintf(format, args...))
}

// compile validates p and prepares it for matching.
func compile(p Pattern) (*compiled, error) {
	if !nameRegex.MatchString(p.Name) {
		return nil, invalid(p.Name, "name must match %s", nameRegex.String())
	}
	if p.Expr == "" {
		return nil, invalid(p.Name, "expr is empty")
	}
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return nil, invalid(p.Name, "%v", err)
	}

	c := &compiled{Pattern: p, re: re, groups: make(map[string]int)}
	for i, g := range re.SubexpNames() {
		if g == "" {
			continue
		}
		if g != "stamp" && !componentGroups[g] {
			return nil, invalid(p.Name, "unknown group %q", g)
		}
		c.groups[g] = i
	}

	if p.Layout != "" {
		if _, ok := c.groups["stamp"]; !ok {
			return nil, invalid(p.Name, "layout requires a (?P<stamp>...) group")
		}
		if len(c.groups) > 1 {
			return nil, invalid(p.Name, "layout patterns take only the stamp group")
		}
		c.datePart, c.timePart = layoutPrecision(p.Layout)
	} else {
		if _, ok := c.groups["stamp"]; ok {
			return nil, invalid(p.Name, "stamp group requires a layout")
		}
		c.datePart, c.timePart = groupPrecision(c.groups)
	}

	if err := c.checkPrecision(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *compiled) checkPrecision() error {
	if c.datePart == timestamp.PrecisionNone && c.timePart == timestamp.PrecisionNone {
		return invalid(c.Name, "needs at least a year or an hour and minute")
	}
	if c.Layout != "" {
		return nil
	}
	has := func(g string) bool { _, ok := c.groups[g]; return ok }
	switch {
	case has("month") && !has("year"):
		return invalid(c.Name, "month group requires year")
	case has("day") && !has("month"):
		return invalid(c.Name, "day group requires month")
	case has("hour") != has("minute"):
		return invalid(c.Name, "hour and minute groups go together")
	case has("second") && !has("minute"):
		return invalid(c.Name, "second group requires minute")
	case has("ms") && !has("second"):
		return invalid(c.Name, "ms group requires second")
	}
	return nil
}

func groupPrecision(groups map[string]int) (date, clock timestamp.Precision) {
	has := func(g string) bool { _, ok := groups[g]; return ok }
	switch {
	case has("day"):
		date = timestamp.PrecisionDay
	case has("month"):
		date = timestamp.PrecisionMonth
	case has("year"):
		date = timestamp.PrecisionYear
	}
	switch {
	case has("ms"):
		clock = timestamp.PrecisionMillisecond
	case has("second"):
		clock = timestamp.PrecisionSecond
	case has("minute"):
		clock = timestamp.PrecisionMinute
	}
	return date, clock
}

// layoutPrecision finds which components a Go layout renders by formatting
// reference times that differ in exactly one component.
func layoutPrecision(layout string) (date, clock timestamp.Precision) {
	ref := time.Date(2001, 2, 3, 4, 5, 6, 7*int(time.Millisecond), time.UTC)
	renders := func(other time.Time) bool {
		return ref.Format(layout) != other.Format(layout)
	}

	if renders(ref.AddDate(1, 0, 0)) {
		date = timestamp.PrecisionYear
		if renders(ref.AddDate(0, 1, 0)) {
			date = timestamp.PrecisionMonth
			if renders(ref.AddDate(0, 0, 1)) {
				date = timestamp.PrecisionDay
			}
		}
	}

	hour, minute := renders(ref.Add(time.Hour)), renders(ref.Add(time.Minute))
	switch {
	case !hour || !minute:
	case renders(ref.Add(time.Millisecond)):
		clock = timestamp.PrecisionMillisecond
	case renders(ref.Add(time.Second)):
		clock = timestamp.PrecisionSecond
	default:
		clock = timestamp.PrecisionMinute
	}
	return date, clock
}

// match applies the pattern to filename and returns the first reading that
// forms a valid timestamp.
func (c *compiled) match(filename string) (timestamp.Timestamp, bool) {
	loc := c.re.FindStringSubmatchIndex(filename)
	if loc == nil || loc[1] <= loc[0] {
		return timestamp.Timestamp{}, false
	}
	group := func(name string) string {
		i, ok := c.groups[name]
		if !ok || loc[2*i] < 0 {
			return ""
		}
		return filename[loc[2*i]:loc[2*i+1]]
	}

	ts := timestamp.Timestamp{
		Type:       TypePrefix + c.Name,
		DatePart:   c.datePart,
		TimePart:   c.timePart,
		Start:      loc[0],
		End:        loc[1],
		Confidence: 1,
	}

	var ok bool
	if c.Layout != "" {
		ok = c.fillFromLayout(&ts, group("stamp"))
	} else {
		ok = c.fillFromGroups(&ts, group)
	}
	if !ok || ts.Validate() != nil {
		return timestamp.Timestamp{}, false
	}
	return ts, true
}

func (c *compiled) fillFromLayout(ts *timestamp.Timestamp, stamp string) bool {
	t, err := time.Parse(c.Layout, stamp)
	if err != nil {
		return false
	}
	if ts.DatePart >= timestamp.PrecisionYear {
		ts.Year = t.Year()
	}
	if ts.DatePart >= timestamp.PrecisionMonth {
		ts.Month = int(t.Month())
	}
	if ts.DatePart >= timestamp.PrecisionDay {
		ts.Day = t.Day()
	}
	if ts.TimePart >= timestamp.PrecisionMinute {
		ts.Hour, ts.Minute = t.Hour(), t.Minute()
	}
	if ts.TimePart >= timestamp.PrecisionSecond {
		ts.Second = t.Second()
	}
	if ts.TimePart >= timestamp.PrecisionMillisecond {
		ts.Millisecond = t.Nanosecond() / int(time.Millisecond)
	}
	return true
}

func (c *compiled) fillFromGroups(ts *timestamp.Timestamp, group func(string) string) bool {
	num := func(name string, dst *int) bool {
		if _, ok := c.groups[name]; !ok {
			return true
		}
		v, err := strconv.Atoi(group(name))
		if err != nil {
			return false
		}
		*dst = v
		return true
	}

	if !num("year", &ts.Year) || !num("month", &ts.Month) || !num("day", &ts.Day) ||
		!num("hour", &ts.Hour) || !num("minute", &ts.Minute) || !num("second", &ts.Second) {
		return false
	}
	if _, ok := c.groups["year"]; ok && len(group("year")) == 2 {
		ts.Year = timestamp.ExpandYear(ts.Year)
	}
	if _, ok := c.groups["ms"]; ok {
		ms := group("ms")
		if ms == "" || len(ms) > 3 {
			return false
		}
		v, err := strconv.Atoi(ms)
		if err != nil {
			return false
		}
		for i := len(ms); i < 3; i++ {
			v *= 10
		}
		ts.Millisecond = v
	}

	if ts.HasTime() && !(timestamp.IsValidHours(ts.Hour) && timestamp.IsValidMinutes(ts.Minute) && timestamp.IsValidSeconds(ts.Second)) {
		return false
	}
	if ts.DatePart >= timestamp.PrecisionMonth && !timestamp.IsValidMonth(ts.Month) {
		return false
	}
	return true
}

// Store persists patterns across runs.
type Store interface {
	SavePattern(p Pattern) error
	DeletePattern(name string) error
	ClearPatterns() error
	LoadPatterns() ([]Pattern, error)
}

// Registry is a concurrency-safe set of compiled patterns, optionally
// backed by a Store. It implements timestamp.CustomMatcher.
type Registry struct {
	mu      sync.RWMutex
	store   Store
	byName  map[string]*compiled
	ordered []*compiled
}

// NewRegistry creates a registry and loads any patterns held by store.
// A nil store keeps patterns in memory only.
func NewRegistry(store Store) (*Registry, error) {
	r := &Registry{store: store, byName: make(map[string]*compiled)}
	if store == nil {
		return r, nil
	}

	saved, err := store.LoadPatterns()
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	for _, p := range saved {
		c, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("stored pattern: %w", err)
		}
		r.byName[p.Name] = c
	}
	r.reorder()
	return r, nil
}

// reorder sorts by priority (highest first) then name. Callers hold mu.
func (r *Registry) reorder() {
	r.ordered = r.ordered[:0]
	for _, c := range r.byName {
		r.ordered = append(r.ordered, c)
	}
	sort.Slice(r.ordered, func(i, j int) bool {
		if r.ordered[i].Priority != r.ordered[j].Priority {
			return r.ordered[i].Priority > r.ordered[j].Priority
		}
		return r.ordered[i].Name < r.ordered[j].Name
	})
}

// Register validates p and adds it, replacing any pattern of the same name.
func (r *Registry) Register(p Pattern) error {
	c, err := compile(p)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SavePattern(p); err != nil {
			return fmt.Errorf("failed to save pattern %q: %w", p.Name, err)
		}
	}
	r.byName[p.Name] = c
	r.reorder()
	return nil
}

// Unregister removes the named pattern.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if r.store != nil {
		if err := r.store.DeletePattern(name); err != nil {
			return fmt.Errorf("failed to delete pattern %q: %w", name, err)
		}
	}
	delete(r.byName, name)
	r.reorder()
	return nil
}

// Clear removes every pattern.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		if err := r.store.ClearPatterns(); err != nil {
			return fmt.Errorf("failed to clear patterns: %w", err)
		}
	}
	r.byName = make(map[string]*compiled)
	r.ordered = nil
	return nil
}

// Get returns the named pattern.
func (r *Registry) Get(name string) (Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c.Pattern, nil
}

// List returns the patterns in match order.
func (r *Registry) List() []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Pattern, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, c.Pattern)
	}
	return out
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Match returns the reading of the first pattern, in List order, that
// matches filename.
func (r *Registry) Match(filename string) (timestamp.Timestamp, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.ordered {
		if ts, ok := c.match(filename); ok {
			return ts, true
		}
	}
	return timestamp.Timestamp{}, false
}

// MatchPattern applies a single pattern without registering it.
func MatchPattern(p Pattern, filename string) (timestamp.Timestamp, bool, error) {
	c, err := compile(p)
	if err != nil {
		return timestamp.Timestamp{}, false, err
	}
	ts, ok := c.match(filename)
	return ts, ok, nil
}
