package store

import (
	"sort"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Criteria selects events by group, region and an inclusive time interval.
// A nil label slice matches every label; a zero Start or End leaves that side open.
type Criteria struct {
	Groups  []string
	Regions []string
	Start   time.Time
	End     time.Time
}

// CriteriaFromParams extracts the filter part of the analysis parameters.
func CriteriaFromParams(p domain.Params) Criteria {
	return Criteria{Groups: p.Groups, Regions: p.Regions, Start: p.Start, End: p.End}
}

// FilteredSet is the ordered result of one filter application.
// It is never mutated after Filter returns it.
type FilteredSet struct {
	events []domain.Event
}

// Events returns the matching events in their original relative order.
func (s FilteredSet) Events() []domain.Event { return s.events }

// Len is the number of matching events.
func (s FilteredSet) Len() int { return len(s.events) }

// Empty reports that nothing matched. Callers must check it before clustering
// or summarizing.
func (s FilteredSet) Empty() bool { return len(s.events) == 0 }

// Filter returns the subsequence of events matching every predicate in c.
func Filter(events []domain.Event, c Criteria) FilteredSet {
	groups := labelSet(c.Groups)
	regions := labelSet(c.Regions)

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if groups != nil && !groups[e.Group] {
			continue
		}
		if regions != nil && !regions[e.Region] {
			continue
		}
		if !c.Start.IsZero() && e.Timestamp.Before(c.Start) {
			continue
		}
		if !c.End.IsZero() && e.Timestamp.After(c.End) {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return FilteredSet{}
	}
	return FilteredSet{events: out}
}

// labelSet returns nil for a nil selection so that "no selection" means all labels.
// An empty, non-nil selection matches nothing.
func labelSet(labels []string) map[string]bool {
	if labels == nil {
		return nil
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

// Replay returns the events of s that fall inside the most recent days,
// measured back from the domain clock. It feeds timeline display only.
func Replay(s FilteredSet, days int) []domain.Event {
	if days < 1 || s.Empty() {
		return nil
	}
	return since(s.events, domain.Now().Add(-time.Duration(days)*24*time.Hour))
}

// ReplayFrames splits the replay window into steps progressively longer
// frames. Frame f (1-based) covers the most recent days*f/steps whole days,
// so the last frame equals Replay(s, days). All frames share one clock reading.
func ReplayFrames(s FilteredSet, days, steps int) [][]domain.Event {
	if days < 1 || steps < 1 || s.Empty() {
		return nil
	}
	now := domain.Now()
	frames := make([][]domain.Event, steps)
	for f := 1; f <= steps; f++ {
		shown := days * f / steps
		frames[f-1] = since(s.events, now.Add(-time.Duration(shown)*24*time.Hour))
	}
	return frames
}

// since returns the events at or after cutoff, in order.
func since(events []domain.Event, cutoff time.Time) []domain.Event {
	var out []domain.Event
	for _, e := range events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Observed describes the labels and time bounds present in a dataset; it
// supplies the defaults for an unrestricted filter.
type Observed struct {
	Groups  []string
	Regions []string
	First   time.Time
	Last    time.Time
}

// Labels scans events for their distinct sorted labels and time bounds.
func Labels(events []domain.Event) Observed {
	var obs Observed
	groups := make(map[string]struct{})
	regions := make(map[string]struct{})

	for i, e := range events {
		groups[e.Group] = struct{}{}
		regions[e.Region] = struct{}{}
		if i == 0 || e.Timestamp.Before(obs.First) {
			obs.First = e.Timestamp
		}
		if i == 0 || e.Timestamp.After(obs.Last) {
			obs.Last = e.Timestamp
		}
	}

	obs.Groups = sortedKeys(groups)
	obs.Regions = sortedKeys(regions)
	return obs
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
