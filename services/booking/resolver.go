package booking

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Resolution is a resolved instant plus whatever words of the input the
// parser could not place.
type Resolution struct {
	Time   time.Time
	Unread []string
}

// Resolver turns free-text date/time into an instant relative to base.
type Resolver interface {
	Resolve(text string, base time.Time) (Resolution, bool)
}

// connectives are skipped when reporting unread words.
var connectives = map[string]bool{
	"at": true, "on": true, "in": true, "the": true, "by": true, "around": true, "of": true,
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NaturalResolver accepts ISO-8601 input first and otherwise defers to the
// English rule set of github.com/olebedev/when.
type NaturalResolver struct {
	parser *when.Parser
	loc    *time.Location
}

func NewNaturalResolver(loc *time.Location) *NaturalResolver {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalResolver{parser: w, loc: loc}
}

func (r *NaturalResolver) Resolve(text string, base time.Time) (Resolution, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Resolution{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, text, r.loc); err == nil {
			return Resolution{Time: t}, true
		}
	}
	res, err := r.parser.Parse(text, base.In(r.loc))
	if err != nil || res == nil {
		return Resolution{}, false
	}
	rest := text[:res.Index] + " " + text[res.Index+len(res.Text):]
	return Resolution{Time: res.Time, Unread: unread(rest)}, true
}

func unread(rest string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(rest)) {
		w = strings.Trim(w, ",.;:!?")
		if w != "" && !connectives[w] {
			out = append(out, w)
		}
	}
	return out
}
