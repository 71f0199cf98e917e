// BYZRA ⸻ internal/resolve/dates.go
// capture time resolution: oldest offset-anchored candidate wins

package resolve

import (
	"time"

	"tempora/internal/config"
	"tempora/internal/tags"
)

// DatePolicy is the ordered tag list plus the data the offset rules need.
type DatePolicy struct {
	Tags         []string
	OffsetTags   map[string]string
	UTCTags      []string
	TimeZoneTags []string
	UseGPS       bool
}

func PolicyFromConfig(c config.DatesConfig) DatePolicy {
	return DatePolicy{
		Tags:         append([]string{}, c.Tags...),
		OffsetTags:   c.OffsetTags,
		UTCTags:      append([]string{}, c.UTCTags...),
		TimeZoneTags: append([]string{}, c.TimeZoneTags...),
		UseGPS:       c.UseGPS,
	}
}

// Candidate is one date tag present in a dictionary.
type Candidate struct {
	Tag string
	Raw string

	// anchored time when Resolved, naive wall clock otherwise
	Time     time.Time
	Resolved bool

	// RuleExplicit or the name of the offset rule that anchored it
	Rule string

	// parse failure, the candidate is skipped
	Err error
}

type DateResolver struct {
	tags  []string
	rules []OffsetRule
}

type DateOption func(*dateOptions)

type dateOptions struct {
	finder     ZoneFinder
	finderSet  bool
	extraRules []OffsetRule
}

// finder used by the gps rule; nil disables it
func WithZoneFinder(f ZoneFinder) DateOption {
	return func(o *dateOptions) {
		o.finder = f
		o.finderSet = true
	}
}

// rules tried after the built-in ones
func WithOffsetRules(rules ...OffsetRule) DateOption {
	return func(o *dateOptions) {
		o.extraRules = append(o.extraRules, rules...)
	}
}

func NewDateResolver(p DatePolicy, opts ...DateOption) (*DateResolver, error) {
	var o dateOptions
	for _, opt := range opts {
		opt(&o)
	}

	rules := []OffsetRule{
		CompanionOffsetRule(p.OffsetTags),
		SiblingTagRule(),
		ContainerUTCRule(p.UTCTags),
		TimeZoneTagRule(p.TimeZoneTags),
	}
	if p.UseGPS {
		finder := o.finder
		if !o.finderSet {
			f, err := DefaultZoneFinder()
			if err != nil {
				return nil, err
			}
			finder = f
		}
		rules = append(rules, GPSRule(finder))
	}
	rules = append(rules, o.extraRules...)

	return &DateResolver{
		tags:  append([]string{}, p.Tags...),
		rules: rules,
	}, nil
}

// names of the offset rules in the order they are tried
func (r *DateResolver) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// every configured tag present in d, in priority order
func (r *DateResolver) Candidates(d tags.Dictionary) []Candidate {
	var out []Candidate
	for _, tag := range r.tags {
		raw, ok := d.Get(tag)
		if !ok {
			continue
		}
		out = append(out, r.candidate(d, tag, raw))
	}
	return out
}

func (r *DateResolver) candidate(d tags.Dictionary, tag, raw string) Candidate {
	c := Candidate{Tag: tag, Raw: raw}

	ts, err := ParseTimestamp(raw)
	if err != nil {
		c.Err = err
		return c
	}
	c.Time = ts.Time

	if ts.HasOffset {
		c.Resolved = true
		c.Rule = RuleExplicit
		return c
	}

	for _, rule := range r.rules {
		if loc, ok := rule.Find(d, tag, ts.Time); ok {
			c.Time = anchor(ts.Time, loc)
			c.Resolved = true
			c.Rule = rule.Name
			return c
		}
	}
	return c
}

// oldest anchored candidate, in UTC; false when none could be anchored
func (r *DateResolver) Resolve(d tags.Dictionary) (time.Time, bool) {
	var best time.Time
	found := false
	for _, c := range r.Candidates(d) {
		if !c.Resolved {
			continue
		}
		if !found || c.Time.Before(best) {
			best = c.Time
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return best.UTC(), true
}
