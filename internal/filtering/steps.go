package filtering

import (
	"strconv"
	"strings"

	"github.com/spigell/scheme-navigator/internal/catalog"
)

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type regionFilter struct {
	toggle
	region string
}

// NewRegion keeps entries that are unrestricted by region or list the given region.
func NewRegion(region string) Filter {
	return &regionFilter{region: strings.TrimSpace(region)}
}

func (f *regionFilter) Name() string { return "region" }

func (f *regionFilter) Match(e *catalog.Entry) bool {
	if f.region == "" {
		return true
	}
	return e.Eligibility.AllowsRegion(f.region)
}

func (f *regionFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"region": f.region}}
}

type ageFilter struct {
	toggle
	minAge *int
	maxAge *int
}

// NewAge drops entries whose age range excludes age.
func NewAge(age int) Filter {
	return NewAgeBounds(&age, &age)
}

// NewAgeBounds drops entries whose minimum age is above minAge or whose
// maximum age is below maxAge. A nil bound is not checked.
func NewAgeBounds(minAge, maxAge *int) Filter {
	return &ageFilter{minAge: minAge, maxAge: maxAge}
}

func (f *ageFilter) Name() string { return "age" }

func (f *ageFilter) Match(e *catalog.Entry) bool {
	r := e.Eligibility
	if f.minAge != nil && r.MinAge != nil && *r.MinAge > *f.minAge {
		return false
	}
	if f.maxAge != nil && r.MaxAge != nil && *r.MaxAge < *f.maxAge {
		return false
	}
	return true
}

func (f *ageFilter) Status() Status {
	details := map[string]string{}
	if f.minAge != nil {
		details["min_age"] = strconv.Itoa(*f.minAge)
	}
	if f.maxAge != nil {
		details["max_age"] = strconv.Itoa(*f.maxAge)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type topicFilter struct {
	toggle
	topic string
}

// NewTopic keeps entries whose derived category equals topic.
func NewTopic(topic string) Filter {
	return &topicFilter{topic: strings.TrimSpace(topic)}
}

func (f *topicFilter) Name() string { return "topic" }

func (f *topicFilter) Match(e *catalog.Entry) bool {
	if f.topic == "" {
		return true
	}
	return strings.EqualFold(e.Category(), f.topic)
}

func (f *topicFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"topic": f.topic}}
}
