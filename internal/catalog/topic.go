package catalog

import (
	"encoding/json"
	"strings"
)

// Topic is a named filter bucket resolving to one or more literal search
// terms. Both supported payload shapes (object with synonyms, bare label)
// normalise into this one form at decode time, so matching code has exactly
// one path: Terms is never empty for a well-formed topic.
type Topic struct {
	Label string   `json:"label"`
	Terms []string `json:"terms"`
}

// rawTopic accepts either a bare string or a {label, any[]} object.
type rawTopic struct {
	Label string
	Any   []string
}

func (t *rawTopic) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		t.Label = label
		return nil
	}
	var obj struct {
		Label string   `json:"label"`
		Any   []string `json:"any"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Label = obj.Label
	t.Any = obj.Any
	return nil
}

// canonical lower-cases the synonym terms; a topic without synonyms uses its
// own label as the sole term.
func (t rawTopic) canonical() Topic {
	topic := Topic{Label: t.Label}
	for _, term := range t.Any {
		if term = strings.TrimSpace(term); term != "" {
			topic.Terms = append(topic.Terms, strings.ToLower(term))
		}
	}
	if len(topic.Terms) == 0 {
		topic.Terms = []string{strings.ToLower(t.Label)}
	}
	return topic
}

// NewTopic builds a canonical Topic from a label and optional synonym terms.
func NewTopic(label string, synonyms []string) Topic {
	return rawTopic{Label: label, Any: synonyms}.canonical()
}

// TopicSet is an ordered topic list with label lookup. Labels are unique;
// later duplicates are dropped.
type TopicSet struct {
	Topics  []Topic
	byLabel map[string]Topic
}

// NewTopicSet builds a TopicSet from canonical topics.
func NewTopicSet(topics []Topic) TopicSet {
	set := TopicSet{byLabel: make(map[string]Topic, len(topics))}
	for _, t := range topics {
		if t.Label == "" {
			continue
		}
		if _, dup := set.byLabel[t.Label]; dup {
			continue
		}
		set.Topics = append(set.Topics, t)
		set.byLabel[t.Label] = t
	}
	return set
}

// Lookup resolves a label to its topic. Selection state holds labels, not
// topic objects, so a stale label simply fails the lookup.
func (s TopicSet) Lookup(label string) (Topic, bool) {
	t, ok := s.byLabel[label]
	return t, ok
}

// Len returns the number of topics in the set.
func (s TopicSet) Len() int {
	return len(s.Topics)
}

// DecodeTopics parses a topics payload in either supported shape. Malformed
// payloads yield an empty set.
func DecodeTopics(data []byte) TopicSet {
	var raw []rawTopic
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewTopicSet(nil)
	}
	topics := make([]Topic, 0, len(raw))
	for _, r := range raw {
		topics = append(topics, r.canonical())
	}
	return NewTopicSet(topics)
}
